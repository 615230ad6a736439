// Package layout places the nodes of a graph snapshot for rendering.
//
// Layered is a small Sugiyama-style placement: cycles are broken by dropping
// DFS back edges, nodes are ranked by longest path from a source, and each
// rank is ordered by the mean position of its predecessors. It is good enough
// for audio graphs, which are shallow and mostly feed-forward.
package layout

import (
	"sort"

	"github.com/vk/audiograph/internal/nodeid"
	"github.com/vk/audiograph/internal/topologystore"
)

// Position is where a node goes. Layer and Order are the grid cell; X and Y
// are the same cell scaled by the layouter's gaps.
type Position struct {
	Layer int     `json:"layer" yaml:"layer"`
	Order int     `json:"order" yaml:"order"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
}

// Layouter computes positions for every node of a snapshot.
type Layouter interface {
	Layout(snap topologystore.Snapshot) map[nodeid.ObjectID]Position
}

// Layered is the default Layouter.
type Layered struct {
	LayerGap float64
	NodeGap  float64
}

// NewLayered returns a Layered layouter with the default spacing.
func NewLayered() *Layered {
	return &Layered{LayerGap: 240, NodeGap: 120}
}

// Layout implements Layouter. Output is deterministic for a given snapshot.
func (l *Layered) Layout(snap topologystore.Snapshot) map[nodeid.ObjectID]Position {
	g := buildAdjacency(snap)
	rank := g.longestPathRanks()

	layers := make(map[int][]nodeid.ObjectID)
	maxRank := 0
	for _, id := range g.ids {
		r := rank[id]
		layers[r] = append(layers[r], id)
		if r > maxRank {
			maxRank = r
		}
	}

	order := make(map[nodeid.ObjectID]int, len(g.ids))
	out := make(map[nodeid.ObjectID]Position, len(g.ids))
	for r := 0; r <= maxRank; r++ {
		layer := layers[r]
		bary := make(map[nodeid.ObjectID]float64, len(layer))
		for _, id := range layer {
			bary[id] = g.barycenter(id, order)
		}
		sort.SliceStable(layer, func(i, j int) bool {
			return bary[layer[i]] < bary[layer[j]]
		})
		for i, id := range layer {
			order[id] = i
			out[id] = Position{
				Layer: r,
				Order: i,
				X:     float64(r) * l.LayerGap,
				Y:     float64(i) * l.NodeGap,
			}
		}
	}
	return out
}

type adjacency struct {
	ids   []nodeid.ObjectID // sorted
	succ  map[nodeid.ObjectID][]nodeid.ObjectID
	pred  map[nodeid.ObjectID][]nodeid.ObjectID
	isDAG map[[2]nodeid.ObjectID]bool // edges kept after cycle breaking
}

// buildAdjacency collapses the snapshot to node-level edges. A connection
// into a param counts as an edge into the param's owner.
func buildAdjacency(snap topologystore.Snapshot) *adjacency {
	g := &adjacency{
		succ:  make(map[nodeid.ObjectID][]nodeid.ObjectID),
		pred:  make(map[nodeid.ObjectID][]nodeid.ObjectID),
		isDAG: make(map[[2]nodeid.ObjectID]bool),
	}
	known := make(map[nodeid.ObjectID]bool, len(snap.Nodes))
	for _, n := range snap.Nodes {
		g.ids = append(g.ids, n.ID)
		known[n.ID] = true
	}
	sort.Slice(g.ids, func(i, j int) bool { return g.ids[i] < g.ids[j] })

	owner := make(map[nodeid.ObjectID]nodeid.ObjectID, len(snap.Params))
	for _, p := range snap.Params {
		owner[p.ID] = p.Owner
	}

	seen := make(map[[2]nodeid.ObjectID]bool)
	for _, e := range snap.Edges {
		target := e.Target
		if e.Kind == nodeid.NodeToParam {
			target = owner[e.Target]
		}
		if !known[e.Source] || !known[target] || e.Source == target {
			continue
		}
		key := [2]nodeid.ObjectID{e.Source, target}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.succ[e.Source] = append(g.succ[e.Source], target)
	}
	for _, id := range g.ids {
		sort.Slice(g.succ[id], func(i, j int) bool { return g.succ[id][i] < g.succ[id][j] })
	}
	g.breakCycles()
	return g
}

// breakCycles marks every edge that is not a DFS back edge as kept and
// records predecessors along kept edges only.
func (g *adjacency) breakCycles() {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[nodeid.ObjectID]int, len(g.ids))

	var visit func(id nodeid.ObjectID)
	visit = func(id nodeid.ObjectID) {
		state[id] = active
		for _, next := range g.succ[id] {
			switch state[next] {
			case active:
				// back edge: dropped
			case unvisited:
				g.keep(id, next)
				visit(next)
			default:
				g.keep(id, next)
			}
		}
		state[id] = done
	}
	for _, id := range g.ids {
		if state[id] == unvisited {
			visit(id)
		}
	}
}

func (g *adjacency) keep(from, to nodeid.ObjectID) {
	g.isDAG[[2]nodeid.ObjectID{from, to}] = true
	g.pred[to] = append(g.pred[to], from)
}

// longestPathRanks assigns each node the length of the longest kept path
// that reaches it.
func (g *adjacency) longestPathRanks() map[nodeid.ObjectID]int {
	indeg := make(map[nodeid.ObjectID]int, len(g.ids))
	for _, id := range g.ids {
		indeg[id] = len(g.pred[id])
	}

	rank := make(map[nodeid.ObjectID]int, len(g.ids))
	var queue []nodeid.ObjectID
	for _, id := range g.ids {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range g.succ[id] {
			if !g.isDAG[[2]nodeid.ObjectID{id, next}] {
				continue
			}
			if rank[id]+1 > rank[next] {
				rank[next] = rank[id] + 1
			}
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return rank
}

// barycenter is the mean order of the already placed predecessors of id,
// or -1 for nodes with none so that sources stay on top.
func (g *adjacency) barycenter(id nodeid.ObjectID, order map[nodeid.ObjectID]int) float64 {
	sum, n := 0, 0
	for _, p := range g.pred[id] {
		if o, ok := order[p]; ok {
			sum += o
			n++
		}
	}
	if n == 0 {
		return -1
	}
	return float64(sum) / float64(n)
}
