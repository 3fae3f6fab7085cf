package engine

import (
	"github.com/pkg/errors"
)

// Errors returned by identity table operations. Compare with errors.Cause.
var (
	ErrDuplicateName = errors.New("duplicate name")
	ErrNotFound      = errors.New("not found")
)

// table is the identity table of one node type.
type table map[string]XNode

func newTable(hint int) table {
	if hint < 0 {
		hint = 0
	}
	return make(table, hint)
}

func (e *Engine) lookup(t Type, name string) (XNode, error) {
	if t < 0 || t >= NrTypes {
		return nil, errors.Wrapf(ErrNotFound, "%s %q", t, name)
	}
	x, ok := e.tables[t][name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s %q", t, name)
	}
	return x, nil
}

// lookupOrCreate returns the node named name, creating it below parent if it
// does not exist yet.
func (e *Engine) lookupOrCreate(t Type, name string, parent *Node) (XNode, bool) {
	if x, ok := e.tables[t][name]; ok {
		return x, false
	}
	x := newXNode(t, name)
	x.X().attach(parent)
	e.tables[t][name] = x
	nodesGauge.WithLabelValues(t.String()).Set(float64(len(e.tables[t])))
	return x, true
}

// create is lookupOrCreate for call sites that require exclusivity.
func (e *Engine) create(t Type, name string, parent *Node) (XNode, error) {
	x, created := e.lookupOrCreate(t, name, parent)
	if !created {
		return nil, errors.Wrapf(ErrDuplicateName, "%s %q", t, name)
	}
	return x, nil
}

// defaultParent is where a node created without an explicit parent goes.
func (e *Engine) defaultParent(t Type, name string) *Node {
	switch t {
	case TypeHost:
		return &e.classify(name).Node
	case TypeJob:
		return &e.defaultCluster.Node
	case TypeCluster:
		return e.roots[0]
	case TypeFilesystem:
		return e.roots[1]
	}
	return nil
}

func validParent(t Type, p *Node) bool {
	switch t {
	case TypeHost, TypeJob:
		return p.typ == TypeCluster
	case TypeCluster:
		return p.typ == TypeAll && p.axis == 0
	case TypeFilesystem:
		return p.typ == TypeAll && p.axis == 1
	case TypeServer:
		return p.typ == TypeFilesystem
	}
	return false
}

// Lookup returns the node of type t named name.
func (e *Engine) Lookup(t Type, name string) (XNode, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.lookup(t, name)
}

// LookupOrCreate returns the node of type t named name, creating it below
// parent when missing. A nil parent selects the default for the type (the
// default cluster for hosts and jobs, the axis root for clusters and
// filesystems); servers always need their filesystem.
func (e *Engine) LookupOrCreate(t Type, name string, parent XNode) (XNode, bool, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.lookupOrCreateBelow(t, name, parent)
}

// Create is LookupOrCreate failing with ErrDuplicateName when the name is
// already taken.
func (e *Engine) Create(t Type, name string, parent XNode) (XNode, error) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	x, created, err := e.lookupOrCreateBelow(t, name, parent)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, errors.Wrapf(ErrDuplicateName, "%s %q", t, name)
	}
	return x, nil
}

func (e *Engine) lookupOrCreateBelow(t Type, name string, parent XNode) (XNode, bool, error) {
	if t < 0 || t >= NrTypes {
		return nil, false, errors.Errorf("cannot create nodes of type %s", t)
	}
	if name == "" {
		return nil, false, errors.Errorf("%s: empty name", t)
	}
	var p *Node
	if parent != nil {
		p = parent.X()
	} else {
		p = e.defaultParent(t, name)
	}
	if p == nil || !validParent(t, p) {
		return nil, false, errors.Errorf("%s %q: invalid parent", t, name)
	}
	x, created := e.lookupOrCreate(t, name, p)
	if created && t == TypeHost {
		x.(*Host).NID = name
	}
	return x, created, nil
}

// NrNodes is the number of live nodes of type t.
func (e *Engine) NrNodes(t Type) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	if t < 0 || t >= NrTypes {
		return 0
	}
	return len(e.tables[t])
}
