package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vk/audiograph/internal/graph"
	"github.com/vk/audiograph/internal/layout"
	"github.com/vk/audiograph/internal/nodeid"
)

// seqHeader carries the sequence number of the last change-set the response
// reflects. A subscriber can line a GET up against its stream with it.
const seqHeader = "X-Graph-Seq"

type graphList struct {
	Graphs []graph.Info `json:"graphs"`
}

// listGraphs returns the metadata of every known context, in creation order.
func (s *Server) listGraphs(c *gin.Context) {
	var out graphList
	seq := s.view(func() {
		all := s.rec.Registry().All()
		out.Graphs = make([]graph.Info, 0, len(all))
		for _, g := range all {
			out.Graphs = append(out.Graphs, g.Info())
		}
	})
	c.Header(seqHeader, strconv.FormatUint(seq, 10))
	c.JSON(http.StatusOK, out)
}

func (s *Server) getGraph(c *gin.Context) {
	snap, seq, ok := s.snapshot(nodeid.ContextID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "graph not found"})
		return
	}
	c.Header(seqHeader, strconv.FormatUint(seq, 10))
	c.JSON(http.StatusOK, snap)
}

type layoutResponse struct {
	Context   nodeid.ContextID                    `json:"context"`
	Positions map[nodeid.ObjectID]layout.Position `json:"positions"`
}

func (s *Server) getLayout(c *gin.Context) {
	id := nodeid.ContextID(c.Param("id"))
	snap, seq, ok := s.snapshot(id)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "graph not found"})
		return
	}
	c.Header(seqHeader, strconv.FormatUint(seq, 10))
	c.JSON(http.StatusOK, layoutResponse{
		Context:   id,
		Positions: s.layouter.Layout(snap.Graph),
	})
}

// snapshot copies one context between two applied events. Apply touches the
// context metadata and its store under separate locks, so reading the
// registry directly could observe half of an event.
func (s *Server) snapshot(id nodeid.ContextID) (graph.ContextSnapshot, uint64, bool) {
	var (
		snap graph.ContextSnapshot
		ok   bool
	)
	seq := s.view(func() {
		var g *graph.Context
		if g, ok = s.rec.Registry().Get(id); ok {
			snap = g.Snapshot()
		}
	})
	return snap, seq, ok
}

func (s *Server) view(fn func()) uint64 {
	var seq uint64
	s.rec.View(func(n uint64) {
		seq = n
		fn()
	})
	return seq
}
