package engine

import (
	"time"
)

// XNode is implemented by every node of the hierarchy. X returns the
// embedded base node.
type XNode interface {
	X() *Node
	targetSubs() *subList
}

// Node is the part every hierarchy node has in common. The identity table
// owns the node; parent is only a back reference.
type Node struct {
	name     string
	typ      Type
	axis     int
	parent   *Node
	children []*Node
	self     XNode

	// Rate cells this node takes part in, keyed by the node on the other axis.
	cells map[*Node]*KNode
	subs  subList
}

// X implements XNode.
func (n *Node) X() *Node { return n }

// Name is unique within the node's type.
func (n *Node) Name() string { return n.name }

// Type of the node.
func (n *Node) Type() Type { return n.typ }

// Axis is 0 for the job axis, 1 for the filesystem axis.
func (n *Node) Axis() int { return n.axis }

// Parent returns the owning node, or nil for an axis root.
func (n *Node) Parent() *Node { return n.parent }

// NrChild is the number of nodes directly attached below n.
func (n *Node) NrChild() int { return len(n.children) }

// Self returns the specialised node (*Host, *Job, ...) embedding n.
func (n *Node) Self() XNode { return n.self }

// Ref renders n as "type:name", or "all" for a root.
func (n *Node) Ref() string {
	if n.typ == TypeAll {
		return TypeAll.String()
	}
	return n.typ.String() + ":" + n.name
}

// NodeRef names n by type and name.
func (n *Node) NodeRef() NodeRef {
	return NodeRef{Type: n.typ.String(), Name: n.name}
}

func (n *Node) attach(parent *Node) {
	n.parent = parent
	if parent != nil {
		parent.children = append(parent.children, n)
	}
}

func (n *Node) targetSubs() *subList { return &n.subs }

// Host is a machine originating I/O, resolved from a network id.
type Host struct {
	Node
	NID string
}

// Cluster the host was classified into.
func (h *Host) Cluster() *Cluster {
	c, _ := h.parent.self.(*Cluster)
	return c
}

// Job is a workload; it hangs off the cluster of the first host seen
// running it.
type Job struct {
	Node
	Owner string
	Title string
	hosts map[*Host]struct{}
}

// NrHosts is the number of distinct hosts attributed to the job.
func (j *Job) NrHosts() int { return len(j.hosts) }

func (j *Job) addHost(h *Host) {
	j.hosts[h] = struct{}{}
}

// Cluster groups hosts by network domain.
type Cluster struct {
	Node
	Interval time.Duration
	Domains  []string
}

// Server is a reporting endpoint of one filesystem.
type Server struct {
	Node
	Interval time.Duration
	Offset   time.Duration
	Modified time.Time
	Lnet     *Lnet
}

// Filesystem returns the filesystem the server backs.
func (s *Server) Filesystem() *Filesystem {
	f, _ := s.parent.self.(*Filesystem)
	return f
}

// Filesystem aggregates its servers.
type Filesystem struct {
	Node
	Servers []*Server
}

func newXNode(t Type, name string) XNode {
	var x XNode
	switch t {
	case TypeHost:
		x = &Host{}
	case TypeJob:
		x = &Job{hosts: map[*Host]struct{}{}}
	case TypeCluster:
		x = &Cluster{}
	case TypeServer:
		x = &Server{}
	case TypeFilesystem:
		x = &Filesystem{}
	default:
		panic("newXNode: bad type " + t.String())
	}
	n := x.X()
	n.name = name
	n.typ = t
	n.axis = t.Axis()
	n.self = x
	return x
}

func newRoot(axis int) *Node {
	n := &Node{name: "ALL", typ: TypeAll, axis: axis}
	n.self = n
	return n
}
