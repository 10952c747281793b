package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/encodeous/routesim/perf"
	"github.com/encodeous/routesim/state"
)

// DVTable holds one distance vector per node. DVTable[i][j] is node i's best known
// distance to node j, with Via being i's next hop. Unknown destinations carry
// Unreached.
type DVTable [][]Distance

func initialVectors(m state.Matrix) DVTable {
	n := m.Size()
	t := make(DVTable, n)
	for i := range n {
		t[i] = make([]Distance, n)
		for j := range n {
			switch {
			case i == j:
				t[i][j] = Distance{Via: state.NodeFromIndex(i), Cost: 0}
			case m[i][j] != state.NoEdge:
				t[i][j] = Distance{Via: state.NodeFromIndex(j), Cost: m[i][j]}
			default:
				t[i][j] = Distance{Via: state.NodeFromIndex(i), Cost: Unreached}
			}
		}
	}
	return t
}

// DistanceVectors relaxes every node's vector against its neighbours' until a full
// pass changes nothing. Each pass reads only the previous pass's table. It returns
// the converged table and the number of passes, the last of which changed nothing.
func DistanceVectors(m state.Matrix) (DVTable, int) {
	n := m.Size()
	neighbours := make([][]int, n)
	for i := range n {
		for k := range n {
			if i != k && m[i][k] != state.NoEdge {
				neighbours[i] = append(neighbours[i], k)
			}
		}
	}

	cur := initialVectors(m)
	passes := 0
	for changed := true; changed; {
		changed = false
		passes++
		next := make(DVTable, n)
		for i := range n {
			next[i] = make([]Distance, n)
			for j := range n {
				best := cur.relax(m, i, j, neighbours[i])
				if best != cur[i][j] {
					changed = true
				}
				next[i][j] = best
			}
		}
		cur = next
	}
	cur.settleFirstHops(m, neighbours)
	return cur, passes
}

// settleFirstHops fixes every converged entry on the smallest neighbour f with
// m[i][f] + D[f][j] == D[i][j]. The chain walk during relaxation only sees the paths
// recorded so far, so an equal-cost path through a smaller first hop can be missed.
func (t DVTable) settleFirstHops(m state.Matrix, neighbours [][]int) {
	for i := range t {
		for j := range t[i] {
			d := t[i][j]
			if i == j || d.Cost == Unreached {
				continue
			}
			for _, f := range neighbours[i] {
				dfj := t[f][j].Cost
				if dfj != Unreached && m[i][f]+dfj == d.Cost {
					t[i][j].Via = state.NodeFromIndex(f)
					break
				}
			}
		}
	}
}

// relax computes i's best distance to j through its neighbours. A neighbour that
// cannot reach j yet is skipped. Equal-cost candidates are settled by comparing the
// first hop each would give i.
func (t DVTable) relax(m state.Matrix, i, j int, neighbours []int) Distance {
	best := t[i][j]
	for _, k := range neighbours {
		dkj := t[k][j].Cost
		if dkj == Unreached {
			continue
		}
		cand := t[i][k].Cost + dkj
		switch {
		case best.Cost == Unreached || cand < best.Cost:
			best = Distance{Via: t.firstHop(m, i, k), Cost: cand}
		case cand == best.Cost:
			if fh := t.firstHop(m, i, k); fh < best.Via {
				best.Via = fh
			}
		}
	}
	return best
}

// firstHop finds the node adjacent to i on the path through neighbour k, by walking
// k's next-hop chain back towards i. The node found must reach k within i's recorded
// cost to k; if it does not, or the chain is broken or longer than len(t), i's own
// next hop towards k is used instead.
func (t DVTable) firstHop(m state.Matrix, i, k int) state.NodeId {
	fallback := t[i][k].Via
	last := state.NodeFromIndex(k)
	d := t[k][i]
	for steps := 0; d.Via.Index() != i; steps++ {
		if d.Cost == Unreached || steps >= len(t) {
			return fallback
		}
		last = d.Via
		d = t[d.Via.Index()][i]
	}
	f := last.Index()
	dfk := t[f][k].Cost
	if m[i][f] == state.NoEdge || dfk == Unreached || m[i][f]+dfk > t[i][k].Cost {
		return fallback
	}
	return last
}

func (t DVTable) contains(n state.NodeId) bool {
	return n >= 1 && int(n) <= len(t)
}

func (t DVTable) ForwardingTable(node state.NodeId) (ForwardingTable, error) {
	if !t.contains(node) {
		return ForwardingTable{}, fmt.Errorf("%w: %d not in [1, %d]", ErrSourceOutOfRange, node, len(t))
	}
	row := t[node.Index()]
	table := ForwardingTable{Node: node, Entries: make([]ForwardingEntry, 0, len(row))}
	for j, d := range row {
		dest := state.NodeFromIndex(j)
		if d.Cost == Unreached {
			table.Entries = append(table.Entries, unreachableEntry(dest))
			continue
		}
		table.Entries = append(table.Entries, ForwardingEntry{Destination: dest, NextHop: d.Via, Cost: d.Cost, Reachable: true})
	}
	return table, nil
}

// Path follows next hops forward from src until dest is reached.
func (t DVTable) Path(src, dest state.NodeId) ([]state.NodeId, int, error) {
	if !t.contains(src) {
		return nil, Unreached, fmt.Errorf("%w: %d not in [1, %d]", ErrSourceOutOfRange, src, len(t))
	}
	if !t.contains(dest) {
		return nil, Unreached, fmt.Errorf("%w: destination %d not in [1, %d]", state.ErrOutOfRange, dest, len(t))
	}
	total := t[src.Index()][dest.Index()].Cost
	if total == Unreached {
		return nil, Unreached, fmt.Errorf("%w: %d from %d", ErrUnreachable, dest, src)
	}
	hops := []state.NodeId{src}
	for cur := src; cur != dest; {
		d := t[cur.Index()][dest.Index()]
		if d.Cost == Unreached {
			return nil, Unreached, fmt.Errorf("%w: %d from %d, dropped at %d", ErrUnreachable, dest, src, cur)
		}
		if len(hops) >= len(t) {
			return nil, Unreached, fmt.Errorf("%w: next hops from %d to %d", ErrRoutingLoop, src, dest)
		}
		cur = d.Via
		hops = append(hops, cur)
	}
	return hops, total, nil
}

func (t DVTable) String() string {
	sb := strings.Builder{}
	for i, row := range t {
		sb.WriteString(fmt.Sprintf("%d <", state.NodeFromIndex(i)))
		for _, d := range row {
			sb.WriteString(fmt.Sprintf(" (%d, %d)", d.Cost, d.Via))
		}
		sb.WriteString(" >\n")
	}
	return sb.String()
}

type DistanceVector struct{}

func (DistanceVector) Name() state.Algorithm {
	return state.AlgoDistanceVector
}

func (DistanceVector) Solve(m state.Matrix) (Solution, error) {
	start := time.Now()
	table, passes := DistanceVectors(m)
	perf.EngineLatency.Add(float64(time.Since(start).Microseconds()))
	perf.RelaxationPasses.Add(float64(passes))
	return &DistanceVectorSolution{Table: table, Passes: passes}, nil
}

type DistanceVectorSolution struct {
	Table  DVTable
	Passes int
}

func (s *DistanceVectorSolution) ForwardingTable(node state.NodeId) (ForwardingTable, error) {
	return s.Table.ForwardingTable(node)
}

func (s *DistanceVectorSolution) Path(src, dest state.NodeId) ([]state.NodeId, int, error) {
	return s.Table.Path(src, dest)
}

func (s *DistanceVectorSolution) LogAttrs() []any {
	return []any{"passes", s.Passes}
}
