package engine

import (
	"sort"
	"time"
)

// NodeView is a snapshot of a node's descriptive state. Fields that do not
// apply to the node's type are left empty.
type NodeView struct {
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Parent   string   `json:"parent,omitempty"`
	Children int      `json:"children"`
	Cells    int      `json:"cells"`
	Subs     int      `json:"subs"`
	Domains  []string `json:"domains,omitempty"`
	Servers  []string `json:"servers,omitempty"`

	Interval time.Duration `json:"interval,omitempty"`
	Offset   time.Duration `json:"offset,omitempty"`
	Modified time.Time     `json:"modified,omitempty"`
	Lnet     string        `json:"lnet,omitempty"`

	NID     string `json:"nid,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Title   string `json:"title,omitempty"`
	NrHosts int    `json:"hosts,omitempty"`
}

func view(n *Node) NodeView {
	v := NodeView{
		Type:     n.typ.String(),
		Name:     n.name,
		Children: len(n.children),
		Cells:    len(n.cells),
		Subs:     len(n.subs),
	}
	if n.parent != nil {
		v.Parent = n.parent.Ref()
	}
	switch x := n.self.(type) {
	case *Host:
		v.NID = x.NID
	case *Job:
		v.Owner, v.Title, v.NrHosts = x.Owner, x.Title, x.NrHosts()
	case *Cluster:
		v.Interval = x.Interval
		v.Domains = x.Domains
	case *Server:
		v.Interval, v.Offset, v.Modified = x.Interval, x.Offset, x.Modified
		if x.Lnet != nil {
			v.Lnet = x.Lnet.name
		}
	case *Filesystem:
		for _, s := range x.Servers {
			v.Servers = append(v.Servers, s.name)
		}
	}
	return v
}

// Describe returns the state of the node of type t named name. TypeAll
// describes the root of the axis given by name ("0" or "1"), or the job axis
// root when name is empty.
func (e *Engine) Describe(t Type, name string) (NodeView, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if t == TypeAll {
		if name == "1" {
			return view(e.roots[1]), nil
		}
		return view(e.roots[0]), nil
	}
	x, err := e.lookup(t, name)
	if err != nil {
		return NodeView{}, err
	}
	return view(x.X()), nil
}

// List returns the names of every node of type t, sorted.
func (e *Engine) List(t Type) []string {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if t < 0 || t >= NrTypes {
		return nil
	}
	names := make([]string, 0, len(e.tables[t]))
	for name := range e.tables[t] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
