package core

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/encodeous/routesim/perf"
	"github.com/encodeous/routesim/state"
	"github.com/jellydator/ttlcache/v3"
)

// TreeEntry is a node accepted into a shortest-path tree, with its predecessor and
// its cost from the source.
type TreeEntry struct {
	Pred state.NodeId `yaml:"pred"`
	Node state.NodeId `yaml:"node"`
	Cost int          `yaml:"cost"`
}

// Tree is the least-cost tree from Source, in acceptance order. The first entry is
// the source itself. Nodes unreachable from the source are absent.
type Tree struct {
	Source  state.NodeId
	Entries []TreeEntry
	size    int
	pos     map[state.NodeId]int
}

// ShortestPathTree runs Dijkstra from source over m. Among candidates of equal cost
// the one reached through the smaller predecessor is accepted first, then the one
// with the smaller id.
func ShortestPathTree(m state.Matrix, source state.NodeId) (*Tree, error) {
	if !m.Contains(source) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrSourceOutOfRange, source, m.Size())
	}
	n := m.Size()
	t := &Tree{
		Source:  source,
		Entries: make([]TreeEntry, 0, n),
		size:    n,
		pos:     make(map[state.NodeId]int, n),
	}

	accepted := make([]bool, n)
	reached := make([]bool, n)
	tentative := make([]Distance, n)

	accept := func(v int, d Distance) {
		accepted[v] = true
		node := state.NodeFromIndex(v)
		t.pos[node] = len(t.Entries)
		t.Entries = append(t.Entries, TreeEntry{Pred: d.Via, Node: node, Cost: d.Cost})
	}

	relax := func(u int) {
		base := tentative[u].Cost
		via := state.NodeFromIndex(u)
		for v, w := range m[u] {
			if accepted[v] || w == state.NoEdge {
				continue
			}
			cand := Distance{Via: via, Cost: base + w}
			cur := tentative[v]
			if !reached[v] || cand.Cost < cur.Cost || (cand.Cost == cur.Cost && cand.Via < cur.Via) {
				tentative[v] = cand
				reached[v] = true
			}
		}
	}

	src := source.Index()
	tentative[src] = Distance{Via: source, Cost: 0}
	reached[src] = true
	accept(src, tentative[src])
	relax(src)

	for {
		best := -1
		for v := range n {
			if accepted[v] || !reached[v] {
				continue
			}
			if best == -1 || tentative[v].Cost < tentative[best].Cost ||
				(tentative[v].Cost == tentative[best].Cost && tentative[v].Via < tentative[best].Via) {
				best = v
			}
		}
		if best == -1 {
			break // everything left is disconnected from the source
		}
		accept(best, tentative[best])
		relax(best)
	}
	return t, nil
}

// Lookup returns the tree entry for node, if it was reached.
func (t *Tree) Lookup(node state.NodeId) (TreeEntry, bool) {
	i, ok := t.pos[node]
	if !ok {
		return TreeEntry{}, false
	}
	return t.Entries[i], true
}

// Path walks the predecessor chain from dest back to the source and returns it in
// source-to-destination order.
func (t *Tree) Path(dest state.NodeId) ([]state.NodeId, int, error) {
	entry, ok := t.Lookup(dest)
	if !ok {
		return nil, Unreached, fmt.Errorf("%w: %d from %d", ErrUnreachable, dest, t.Source)
	}
	hops := []state.NodeId{dest}
	cur := entry
	for cur.Node != t.Source {
		if len(hops) > len(t.Entries) {
			return nil, Unreached, fmt.Errorf("%w: predecessor chain from %d to %d", ErrRoutingLoop, t.Source, dest)
		}
		cur, _ = t.Lookup(cur.Pred)
		hops = append(hops, cur.Node)
	}
	slices.Reverse(hops)
	return hops, entry.Cost, nil
}

// NextHop returns the first node after the source on the way to dest. The source is
// its own next hop.
func (t *Tree) NextHop(dest state.NodeId) (state.NodeId, int, error) {
	entry, ok := t.Lookup(dest)
	if !ok {
		return 0, Unreached, fmt.Errorf("%w: %d from %d", ErrUnreachable, dest, t.Source)
	}
	cur := entry
	for steps := 0; cur.Pred != t.Source; steps++ {
		if steps > len(t.Entries) {
			return 0, Unreached, fmt.Errorf("%w: predecessor chain from %d to %d", ErrRoutingLoop, t.Source, dest)
		}
		cur, _ = t.Lookup(cur.Pred)
	}
	return cur.Node, entry.Cost, nil
}

func (t *Tree) ForwardingTable() ForwardingTable {
	table := ForwardingTable{Node: t.Source, Entries: make([]ForwardingEntry, 0, t.size)}
	for i := range t.size {
		dest := state.NodeFromIndex(i)
		nh, cost, err := t.NextHop(dest)
		if err != nil {
			table.Entries = append(table.Entries, unreachableEntry(dest))
			continue
		}
		table.Entries = append(table.Entries, ForwardingEntry{Destination: dest, NextHop: nh, Cost: cost, Reachable: true})
	}
	return table
}

// String renders the tree edges in acceptance order, skipping the source.
func (t *Tree) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("%d:", t.Source))
	for _, e := range t.Entries[1:] {
		sb.WriteString(fmt.Sprintf(" %d->%d(%d)", e.Pred, e.Node, e.Cost))
	}
	return sb.String()
}

type LinkState struct{}

func (LinkState) Name() state.Algorithm {
	return state.AlgoLinkState
}

func (LinkState) Solve(m state.Matrix) (Solution, error) {
	return NewLinkStateSolution(m), nil
}

// LinkStateSolution computes shortest-path trees lazily, at most once per source.
type LinkStateSolution struct {
	m       state.Matrix
	trees   *ttlcache.Cache[state.NodeId, *Tree]
	loadErr error // error of the last failed load
}

func NewLinkStateSolution(m state.Matrix) *LinkStateSolution {
	s := &LinkStateSolution{m: m}
	loader := ttlcache.LoaderFunc[state.NodeId, *Tree](
		func(c *ttlcache.Cache[state.NodeId, *Tree], src state.NodeId) *ttlcache.Item[state.NodeId, *Tree] {
			start := time.Now()
			tree, err := ShortestPathTree(s.m, src)
			if err != nil {
				s.loadErr = err
				return nil
			}
			perf.EngineLatency.Add(float64(time.Since(start).Microseconds()))
			perf.TreesComputed.Add(1)
			return c.Set(src, tree, ttlcache.NoTTL)
		})
	s.trees = ttlcache.New[state.NodeId, *Tree](
		ttlcache.WithCapacity[state.NodeId, *Tree](uint64(max(m.Size(), 1))),
		ttlcache.WithDisableTouchOnHit[state.NodeId, *Tree](),
		ttlcache.WithLoader[state.NodeId, *Tree](loader),
	)
	return s
}

// Tree returns the shortest-path tree rooted at src.
func (s *LinkStateSolution) Tree(src state.NodeId) (*Tree, error) {
	s.loadErr = nil
	item := s.trees.Get(src)
	if item == nil {
		return nil, fmt.Errorf("no tree for %d: %w", src, s.loadErr)
	}
	return item.Value(), nil
}

func (s *LinkStateSolution) ForwardingTable(node state.NodeId) (ForwardingTable, error) {
	tree, err := s.Tree(node)
	if err != nil {
		return ForwardingTable{}, err
	}
	return tree.ForwardingTable(), nil
}

func (s *LinkStateSolution) Path(src, dest state.NodeId) ([]state.NodeId, int, error) {
	if err := checkEndpoints(s.m, src, dest); err != nil {
		return nil, Unreached, err
	}
	tree, err := s.Tree(src)
	if err != nil {
		return nil, Unreached, err
	}
	return tree.Path(dest)
}

func (s *LinkStateSolution) LogAttrs() []any {
	return []any{"trees", s.trees.Len()}
}
