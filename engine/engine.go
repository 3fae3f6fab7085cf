package engine

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/weaveworks/xltop/report"
)

// Defaults for Config.
const (
	DefaultTick   = 10 * time.Second
	DefaultWindow = 30 * time.Second
	DefaultHint   = 64
)

// Config holds the engine-wide settings. Window must be a positive multiple
// of Tick.
type Config struct {
	Tick      time.Duration
	Window    time.Duration
	Hints     [NrTypes]int
	TopMax    int
	EvictIdle time.Duration // 0 keeps every cell for the life of the process
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() Config {
	cfg := Config{
		Tick:   DefaultTick,
		Window: DefaultWindow,
		TopMax: DefaultTopMax,
	}
	for i := range cfg.Hints {
		cfg.Hints[i] = DefaultHint
	}
	return cfg
}

// Validate checks the window arithmetic.
func (c Config) Validate() error {
	if c.Tick <= 0 {
		return errors.Errorf("invalid tick %v", c.Tick)
	}
	if c.Window <= 0 {
		return errors.Errorf("invalid window %v", c.Window)
	}
	if c.Window%c.Tick != 0 {
		return errors.Errorf("window %v is not a multiple of tick %v", c.Window, c.Tick)
	}
	if c.TopMax < 0 {
		return errors.Errorf("invalid top max %d", c.TopMax)
	}
	if c.EvictIdle < 0 {
		return errors.Errorf("invalid evict idle time %v", c.EvictIdle)
	}
	return nil
}

// Engine owns every table, node, rate cell and subscription. All methods are
// safe for concurrent use; each holds the engine lock for the full effect of
// one event.
type Engine struct {
	mtx sync.Mutex

	cfg       Config
	nrBuckets int
	tick      int64

	tables         [NrTypes]table
	roots          [2]*Node
	defaultCluster *Cluster
	domains        domains
	lnets          map[string]*Lnet
	cells          map[*KNode]struct{}
}

// New creates an engine with the two axis roots and the default cluster.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TopMax == 0 {
		cfg.TopMax = DefaultTopMax
	}
	e := &Engine{
		cfg:       cfg,
		nrBuckets: int(cfg.Window / cfg.Tick),
		roots:     [2]*Node{newRoot(0), newRoot(1)},
		domains:   newDomains(),
		lnets:     map[string]*Lnet{},
		cells:     map[*KNode]struct{}{},
	}
	for t := range e.tables {
		e.tables[t] = newTable(cfg.Hints[t])
	}
	x, _ := e.lookupOrCreate(TypeCluster, DefaultClusterName, e.roots[0])
	e.defaultCluster = x.(*Cluster)
	return e, nil
}

// Config returns the settings the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// Root returns the root of the job axis (0) or the filesystem axis (1).
func (e *Engine) Root(axis int) *Node { return e.roots[axis] }

// DefaultCluster holds every host no configured domain matches.
func (e *Engine) DefaultCluster() *Cluster { return e.defaultCluster }

func (e *Engine) tickOf(now time.Time) int64 {
	return now.UnixNano() / int64(e.cfg.Tick)
}

func (e *Engine) windowSeconds() float64 {
	return e.cfg.Window.Seconds()
}

// seen records t as observed and returns its tick.
func (e *Engine) seen(t time.Time) int64 {
	tick := e.tickOf(t)
	if tick > e.tick {
		e.tick = tick
	}
	return tick
}

// AddFilesystem creates a filesystem and its servers. Servers are spread
// evenly over the polling interval.
func (e *Engine) AddFilesystem(name, lnetName string, servers []string, interval time.Duration) (*Filesystem, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if name == "" {
		return nil, errors.New("filesystem: empty name")
	}
	if interval <= 0 {
		return nil, errors.Errorf("filesystem %q: invalid interval %v", name, interval)
	}
	if len(servers) == 0 {
		return nil, errors.Errorf("filesystem %q: no servers", name)
	}
	l, ok := e.lnets[lnetName]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "filesystem %q: lnet %q", name, lnetName)
	}
	for i, s := range servers {
		if _, err := e.lookup(TypeServer, s); err == nil {
			return nil, errors.Wrapf(ErrDuplicateName, "filesystem %q: server %q", name, s)
		}
		for _, t := range servers[:i] {
			if s == t {
				return nil, errors.Wrapf(ErrDuplicateName, "filesystem %q: server %q", name, s)
			}
		}
	}
	x, err := e.create(TypeFilesystem, name, e.roots[1])
	if err != nil {
		return nil, err
	}
	fs := x.(*Filesystem)
	n := time.Duration(len(servers))
	for i, s := range servers {
		x, _ := e.lookupOrCreate(TypeServer, s, &fs.Node)
		serv := x.(*Server)
		serv.Interval = interval
		serv.Offset = time.Duration(i) * interval / n
		serv.Lnet = l
		fs.Servers = append(fs.Servers, serv)
	}
	return fs, nil
}

// cell returns the rate cell of (x0, x1), creating it on first use.
func (e *Engine) cell(x0, x1 *Node, tick int64) *KNode {
	if k, ok := x0.cells[x1]; ok {
		return k
	}
	k := newKNode(x0, x1, e.nrBuckets, tick)
	if x0.cells == nil {
		x0.cells = map[*Node]*KNode{}
	}
	if x1.cells == nil {
		x1.cells = map[*Node]*KNode{}
	}
	x0.cells[x1] = k
	x1.cells[x0] = k
	e.cells[k] = struct{}{}
	cellsGauge.Set(float64(len(e.cells)))
	return k
}

// Cell returns the rate cell of (x0, x1) if it exists.
func (e *Engine) Cell(x0, x1 XNode) (*KNode, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	k, ok := x0.X().cells[x1.X()]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "cell %s %s", x0.X().Ref(), x1.X().Ref())
	}
	return k, nil
}

// NrCells is the number of live rate cells.
func (e *Engine) NrCells() int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return len(e.cells)
}

// ErrNotFinite is returned for records carrying NaN or infinite stats.
var ErrNotFinite = errors.New("non-finite stats")

// update charges one delta to the cell of (host's job or cluster, server's
// filesystem) and notifies subscribers. The caller holds the lock.
func (e *Engine) update(serv *Server, host *Host, jobName string, d report.Vector, now time.Time) error {
	if !d.IsFinite() {
		return errors.Wrapf(ErrNotFinite, "%v", d)
	}
	fs := serv.Filesystem()
	if fs == nil {
		return errors.Errorf("server %q has no filesystem", serv.name)
	}
	x0 := &host.Cluster().Node
	if jobName != "" {
		x0 = &e.jobOf(host, jobName).Node
	}
	tick := e.seen(now)
	k := e.cell(x0, &fs.Node, tick)
	k.add(tick, d)
	k.modified = now
	k.refresh(tick, e.windowSeconds())
	e.notify(Event{K: k, X0: x0, X1: &fs.Node, Host: host, Server: serv, Delta: d, Rate: k.rate, Time: now})
	return nil
}

// jobOf finds the job named name, creating it in the host's cluster.
func (e *Engine) jobOf(host *Host, name string) *Job {
	x, _ := e.lookupOrCreate(TypeJob, name, &host.Cluster().Node)
	j := x.(*Job)
	j.addHost(host)
	return j
}

// Update applies a single record received by the named server.
func (e *Engine) Update(servName string, rec report.Record, now time.Time) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	serv, err := e.server(servName)
	if err != nil {
		return err
	}
	if !rec.Stats.IsFinite() {
		return errors.Wrapf(ErrNotFinite, "serv %s: %s", servName, rec.NID)
	}
	host, err := e.resolve(serv.Lnet, rec.NID)
	if err != nil {
		return err
	}
	if err := e.update(serv, host, rec.Job, rec.Stats, now); err != nil {
		return err
	}
	serv.Modified = now
	return nil
}

// IngestResult counts the outcome of one batch.
type IngestResult struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// Ingest applies a batch of records received by the named server. Records
// that cannot be attributed are dropped; only an unknown server fails the
// whole batch.
func (e *Engine) Ingest(servName string, recs []report.Record, now time.Time) (IngestResult, error) {
	var res IngestResult
	e.mtx.Lock()
	defer e.mtx.Unlock()
	serv, err := e.server(servName)
	if err != nil {
		return res, err
	}
	for _, rec := range recs {
		if !rec.Stats.IsFinite() {
			recordsDropped.WithLabelValues("not_finite").Inc()
			res.Dropped++
			continue
		}
		host, err := e.resolve(serv.Lnet, rec.NID)
		if err != nil {
			recordsDropped.WithLabelValues("unknown_nid").Inc()
			res.Dropped++
			continue
		}
		if err := e.update(serv, host, rec.Job, rec.Stats, now); err != nil {
			log.Debugf("serv %s: dropping %q: %v", servName, rec, err)
			recordsDropped.WithLabelValues("update").Inc()
			res.Dropped++
			continue
		}
		res.Accepted++
	}
	recordsIngested.Add(float64(res.Accepted))
	serv.Modified = now
	return res, nil
}

func (e *Engine) server(name string) (*Server, error) {
	x, err := e.lookup(TypeServer, name)
	if err != nil {
		return nil, err
	}
	return x.(*Server), nil
}

// SetJob records that host runs job in cluster clusName, creating the job if
// needed and refreshing its owner and title.
func (e *Engine) SetJob(clusName, hostName, jobName, owner, title string) (*Job, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	x, err := e.lookup(TypeCluster, clusName)
	if err != nil {
		return nil, err
	}
	clus := x.(*Cluster)
	if hostName == "" || jobName == "" {
		return nil, errors.New("empty host or job name")
	}
	hx, _ := e.lookupOrCreate(TypeHost, hostName, &clus.Node)
	host := hx.(*Host)
	if host.NID == "" {
		host.NID = hostName
	}
	jx, _ := e.lookupOrCreate(TypeJob, jobName, &clus.Node)
	j := jx.(*Job)
	j.addHost(host)
	j.Owner = owner
	j.Title = title
	return j, nil
}
