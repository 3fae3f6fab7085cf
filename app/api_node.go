package app

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/weaveworks/xltop/common/xfer"
	"github.com/weaveworks/xltop/engine"
)

var nodeTypes = []engine.Type{
	engine.TypeHost,
	engine.TypeJob,
	engine.TypeCluster,
	engine.TypeServer,
	engine.TypeFilesystem,
}

// APINode is returned by the /{type}/{name} handler.
type APINode struct {
	Node engine.NodeView `json:"node"`
}

// APINodeList is returned by the /{type} handler.
type APINodeList struct {
	Type  string   `json:"type"`
	Names []string `json:"names"`
}

func (s *Server) handleNode(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	t, err := engine.ParseType(vars["type"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	v, err := s.e.Describe(t, vars["name"])
	if err != nil {
		respondWith(w, http.StatusNotFound, err)
		return
	}
	respondWith(w, http.StatusOK, APINode{Node: v})
}

func (s *Server) handleList(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	t, err := engine.ParseType(mux.Vars(r)["type"])
	if err != nil || t == engine.TypeAll {
		http.NotFound(w, r)
		return
	}
	respondWith(w, http.StatusOK, APINodeList{Type: t.String(), Names: s.e.List(t)})
}

func (s *Server) handleDomains(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	respondWith(w, http.StatusOK, s.e.Domains())
}

func (s *Server) handleAPI(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()
	cfg := s.e.Config()
	nodes := map[string]int{}
	for _, t := range nodeTypes {
		nodes[t.String()] = s.e.NrNodes(t)
	}
	respondWith(w, http.StatusOK, xfer.Details{
		Version:  Version,
		Hostname: hostname,
		Tick:     cfg.Tick.String(),
		Window:   cfg.Window.String(),
		Nodes:    nodes,
		Cells:    s.e.NrCells(),
	})
}
