package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/armon/go-radix"
	"github.com/pkg/errors"
)

// DefaultClusterName is the cluster of hosts no configured domain matches.
const DefaultClusterName = "NONE"

// domains maps domain suffixes to clusters. Keys are the domain labels in
// reverse order, dot terminated, so that a suffix match on a host name is a
// prefix match in the tree.
type domains struct {
	tree *radix.Tree
	seq  int
}

type domainEntry struct {
	domain string
	clus   *Cluster
	seq    int
}

// Domain is one entry of the classification table.
type Domain struct {
	Domain  string `json:"domain"`
	Cluster string `json:"clus"`
}

func newDomains() domains {
	return domains{tree: radix.New()}
}

func domainKey(name string) string {
	labels := strings.Split(strings.Trim(strings.ToLower(name), "."), ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return strings.Join(labels, ".") + "."
}

// check reports why domain cannot be added.
func (d *domains) check(domain string) error {
	if strings.Trim(domain, ".") == "" {
		return errors.New("empty domain")
	}
	if v, ok := d.tree.Get(domainKey(domain)); ok {
		return errors.Errorf("domain %q already belongs to cluster %q", domain, v.(domainEntry).clus.name)
	}
	return nil
}

func (d *domains) add(domain string, c *Cluster) {
	d.tree.Insert(domainKey(domain), domainEntry{domain: domain, clus: c, seq: d.seq})
	d.seq++
}

// match returns the first configured cluster with a domain that is a suffix
// of hostname, or nil.
func (d *domains) match(hostname string) *Cluster {
	var best *domainEntry
	d.tree.WalkPath(domainKey(hostname), func(_ string, v interface{}) bool {
		e := v.(domainEntry)
		if best == nil || e.seq < best.seq {
			best = &e
		}
		return false
	})
	if best == nil {
		return nil
	}
	return best.clus
}

func (d *domains) list() []Domain {
	var entries []domainEntry
	d.tree.Walk(func(_ string, v interface{}) bool {
		entries = append(entries, v.(domainEntry))
		return false
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]Domain, 0, len(entries))
	for _, e := range entries {
		out = append(out, Domain{Domain: e.domain, Cluster: e.clus.name})
	}
	return out
}

func (e *Engine) classify(hostname string) *Cluster {
	if c := e.domains.match(hostname); c != nil {
		return c
	}
	return e.defaultCluster
}

// AddCluster creates a cluster owning the given domain suffixes. Names and
// domains must be unique.
func (e *Engine) AddCluster(name string, interval time.Duration, domains []string) (*Cluster, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if interval <= 0 {
		return nil, errors.Errorf("cluster %q: invalid interval %s", name, interval)
	}
	seen := map[string]bool{}
	for _, domain := range domains {
		if err := e.domains.check(domain); err != nil {
			return nil, errors.Wrapf(err, "cluster %q", name)
		}
		if seen[domainKey(domain)] {
			return nil, errors.Errorf("cluster %q: domain %q given twice", name, domain)
		}
		seen[domainKey(domain)] = true
	}
	x, err := e.create(TypeCluster, name, e.roots[0])
	if err != nil {
		return nil, errors.Wrap(err, "cannot create cluster")
	}
	c := x.(*Cluster)
	c.Interval = interval
	for _, domain := range domains {
		e.domains.add(domain, c)
		c.Domains = append(c.Domains, domain)
	}
	return c, nil
}

// Domains lists the classification table in configuration order.
func (e *Engine) Domains() []Domain {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.domains.list()
}
