package engine

import (
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	rejectedCacheSize       = 1024
	rejectedCacheExpiration = 10 * time.Minute
)

// ErrUnknownNID is returned when a closed Lnet sees a network id it has no
// mapping for.
var ErrUnknownNID = errors.New("unknown nid")

// Lnet maps network ids to hosts.
type Lnet struct {
	name   string
	create bool

	names map[string]string // nid -> host name, from the mapping files
	hosts map[string]*Host  // nid -> resolved host

	// nids recently rejected, so each is only logged once per expiry
	rejected gcache.Cache
}

func newLnet(name string, create bool, hint int) *Lnet {
	return &Lnet{
		name:     name,
		create:   create,
		names:    make(map[string]string, hint),
		hosts:    make(map[string]*Host, hint),
		rejected: gcache.New(rejectedCacheSize).LRU().Expiration(rejectedCacheExpiration).Build(),
	}
}

// Name of the Lnet.
func (l *Lnet) Name() string { return l.name }

// Open is true when unknown nids create new hosts.
func (l *Lnet) Open() bool { return l.create }

// read loads `<nid> <hostname>` lines. Blank lines and # comments are
// ignored; a later mapping of the same nid replaces an earlier one.
func (l *Lnet) read(r io.Reader, path string) error {
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
			continue
		case 2:
			l.names[fields[0]] = fields[1]
		default:
			return errors.Errorf("%s:%d: expected `<nid> <hostname>'", path, lineno)
		}
	}
	return errors.Wrap(scanner.Err(), path)
}

func (l *Lnet) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "cannot read lnet file")
	}
	defer f.Close()
	return l.read(f, path)
}

// AddLnet creates an Lnet and loads its mapping files.
func (e *Engine) AddLnet(name string, create bool, files ...string) (*Lnet, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if name == "" {
		return nil, errors.New("lnet: empty name")
	}
	if _, ok := e.lnets[name]; ok {
		return nil, errors.Wrapf(ErrDuplicateName, "lnet %q", name)
	}
	l := newLnet(name, create, e.cfg.Hints[TypeHost])
	for _, path := range files {
		if err := l.readFile(path); err != nil {
			return nil, errors.Wrapf(err, "lnet %q", name)
		}
	}
	e.lnets[name] = l
	return l, nil
}

// LoadLnet adds mappings from r to an existing Lnet.
func (e *Engine) LoadLnet(name string, r io.Reader) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	l, ok := e.lnets[name]
	if !ok {
		return errors.Wrapf(ErrNotFound, "lnet %q", name)
	}
	return l.read(r, name)
}

// Lnet returns the Lnet named name.
func (e *Engine) Lnet(name string) (*Lnet, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	l, ok := e.lnets[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "lnet %q", name)
	}
	return l, nil
}

// resolve maps nid to its host, creating the host on first sighting.
func (e *Engine) resolve(l *Lnet, nid string) (*Host, error) {
	if h, ok := l.hosts[nid]; ok {
		return h, nil
	}
	name, known := l.names[nid]
	if !known {
		if !l.create {
			if _, err := l.rejected.Get(nid); err != nil {
				log.Warnf("lnet %s: rejecting unknown nid %s", l.name, nid)
				l.rejected.Set(nid, struct{}{})
			}
			return nil, errors.Wrapf(ErrUnknownNID, "lnet %s: %s", l.name, nid)
		}
		name = nid
	}
	x, created := e.lookupOrCreate(TypeHost, name, &e.classify(name).Node)
	h := x.(*Host)
	if created {
		h.NID = nid
		log.Debugf("lnet %s: nid %s is host %s in cluster %s", l.name, nid, name, h.parent.name)
	}
	l.hosts[nid] = h
	return h, nil
}
