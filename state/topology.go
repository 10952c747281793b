package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidTopology = errors.New("invalid topology")
	ErrOutOfRange      = errors.New("node id out of range")
)

// NodeId is the 1-based identifier of a router, as it appears in input and output files.
type NodeId int

// Index returns the 0-based matrix index of the node.
func (n NodeId) Index() int {
	return int(n) - 1
}

// NodeFromIndex converts a 0-based matrix index back to a NodeId.
func NodeFromIndex(i int) NodeId {
	return NodeId(i + 1)
}

// Link is an undirected edge between two routers, or a change to one.
type Link struct {
	Src  NodeId `yaml:"src"`
	Dest NodeId `yaml:"dest"`
	Cost int    `yaml:"cost"`
}

func (l Link) IsRemoval() bool {
	return l.Cost == RemovalSentinel
}

// IsSelfLoop reports whether the link joins a node to itself. Such links never
// change the matrix, every node reaches itself at cost zero.
func (l Link) IsSelfLoop() bool {
	return l.Src == l.Dest
}

func (l Link) String() string {
	return fmt.Sprintf("%d %d %d", l.Src, l.Dest, l.Cost)
}

// Matrix is a read-only snapshot of the link costs. Matrix[i][j] is the cost of the
// link between NodeFromIndex(i) and NodeFromIndex(j), or NoEdge.
type Matrix [][]int

func (m Matrix) Size() int {
	return len(m)
}

// Contains reports whether the node lies in [1, N].
func (m Matrix) Contains(n NodeId) bool {
	return n >= 1 && int(n) <= len(m)
}

func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = slices.Clone(row)
	}
	return out
}

// UpperHalf renders the upper triangle of the matrix, the lower half being its mirror.
func (m Matrix) UpperHalf() string {
	sb := strings.Builder{}
	for i := range m {
		for j := range m {
			if j >= i {
				sb.WriteString(fmt.Sprintf("%d ", m[i][j]))
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Topology holds the symmetric link-cost matrix of the network. Its dimension is
// fixed at build time. Only the owner of the Topology may apply changes; engines
// work on a Snapshot.
type Topology struct {
	m Matrix
}

// BuildTopology creates the topology from the initial link list. The node count is
// the number of distinct ids across all links, and every id must lie in [1, N].
// Self-loops count towards the node set but leave the diagonal at zero.
func BuildTopology(links []Link) (*Topology, error) {
	if len(links) == 0 {
		return nil, fmt.Errorf("%w: no links", ErrInvalidTopology)
	}
	seen := make(map[NodeId]struct{})
	for i, l := range links {
		if l.Src <= 0 || l.Dest <= 0 {
			return nil, fmt.Errorf("%w: link %d (%s) has a non-positive node id", ErrInvalidTopology, i+1, l)
		}
		if l.Cost < 0 {
			return nil, fmt.Errorf("%w: link %d (%s) has a negative cost", ErrInvalidTopology, i+1, l)
		}
		seen[l.Src] = struct{}{}
		seen[l.Dest] = struct{}{}
	}
	n := len(seen)
	for id := range seen {
		if int(id) > n {
			return nil, fmt.Errorf("%w: node %d exceeds the node count %d, ids must be contiguous from 1", ErrInvalidTopology, id, n)
		}
	}

	t := &Topology{m: make(Matrix, n)}
	for i := range t.m {
		t.m[i] = make([]int, n)
	}
	for _, l := range links {
		if l.IsSelfLoop() {
			continue
		}
		t.set(l.Src, l.Dest, l.Cost)
	}
	return t, nil
}

func (t *Topology) set(a, b NodeId, cost int) {
	t.m[a.Index()][b.Index()] = cost
	t.m[b.Index()][a.Index()] = cost
}

// NodeCount returns the number of routers, fixed for the lifetime of the topology.
func (t *Topology) NodeCount() int {
	return len(t.m)
}

// Cost returns the direct link cost between a and b, NoEdge if there is none.
func (t *Topology) Cost(a, b NodeId) (int, error) {
	if !t.m.Contains(a) || !t.m.Contains(b) {
		return 0, fmt.Errorf("%w: %d-%d not in [1, %d]", ErrOutOfRange, a, b, len(t.m))
	}
	return t.m[a.Index()][b.Index()], nil
}

// ApplyChange reweights or removes a single link. Applying the same change twice
// leaves the matrix as applying it once. A self-loop change is a no-op.
func (t *Topology) ApplyChange(change Link) error {
	if !t.m.Contains(change.Src) || !t.m.Contains(change.Dest) {
		return fmt.Errorf("%w: change %s references a node outside [1, %d]", ErrOutOfRange, change, len(t.m))
	}
	if change.IsSelfLoop() {
		return nil
	}
	if change.IsRemoval() {
		t.set(change.Src, change.Dest, NoEdge)
		return nil
	}
	if change.Cost < 0 {
		return fmt.Errorf("%w: change %s has a negative cost", ErrInvalidTopology, change)
	}
	t.set(change.Src, change.Dest, change.Cost)
	return nil
}

// Snapshot returns an independent copy of the current matrix.
func (t *Topology) Snapshot() Matrix {
	return t.m.Clone()
}

// Links lists the current links, each once, ordered by (src, dest).
func (t *Topology) Links() []Link {
	links := make([]Link, 0)
	for i := range t.m {
		for j := i + 1; j < len(t.m); j++ {
			if t.m[i][j] != NoEdge {
				links = append(links, Link{Src: NodeFromIndex(i), Dest: NodeFromIndex(j), Cost: t.m[i][j]})
			}
		}
	}
	return links
}
