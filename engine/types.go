package engine

import "fmt"

// Type tags every node in the hierarchy.
type Type int

// Node types. Host, Job and Cluster live on the job axis; Server and
// Filesystem on the filesystem axis. TypeAll tags the two axis roots and has
// no identity table.
const (
	TypeHost Type = iota
	TypeJob
	TypeCluster
	TypeServer
	TypeFilesystem

	NrTypes = 5

	TypeAll Type = NrTypes
)

var typeNames = [...]string{
	TypeHost:       "host",
	TypeJob:        "job",
	TypeCluster:    "clus",
	TypeServer:     "serv",
	TypeFilesystem: "fs",
	TypeAll:        "all",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// Axis returns 0 for the job axis and 1 for the filesystem axis. The axis of
// TypeAll depends on the root and is carried by the node itself.
func (t Type) Axis() int {
	switch t {
	case TypeServer, TypeFilesystem:
		return 1
	}
	return 0
}

// ParseType maps a type name (host, job, clus, serv, fs, all) to its Type.
func ParseType(s string) (Type, error) {
	for i, n := range typeNames {
		if n == s {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}
