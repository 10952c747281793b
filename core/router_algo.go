package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/encodeous/routesim/state"
)

var (
	ErrSourceOutOfRange = errors.New("source out of range")
	ErrUnreachable      = errors.New("destination unreachable")
	ErrRoutingLoop      = errors.New("routing loop")
)

// Unreached is the distance-vector cost of a destination with no known path.
const Unreached = -1

// Distance is the best known (Via, Cost) towards a destination. In a shortest-path
// tree Via is the predecessor of the destination, in a distance vector it is the
// next hop from the owning node.
type Distance struct {
	Via  state.NodeId `yaml:"via"`
	Cost int          `yaml:"cost"`
}

type ForwardingEntry struct {
	Destination state.NodeId `yaml:"destination"`
	NextHop     state.NodeId `yaml:"next_hop,omitempty"`
	Cost        int          `yaml:"cost"`
	Reachable   bool         `yaml:"reachable"`
}

func (e ForwardingEntry) String() string {
	if !e.Reachable {
		return fmt.Sprintf("%d unreachable", e.Destination)
	}
	return fmt.Sprintf("%d %d %d", e.Destination, e.NextHop, e.Cost)
}

func unreachableEntry(dest state.NodeId) ForwardingEntry {
	return ForwardingEntry{Destination: dest, Cost: Unreached}
}

// ForwardingTable maps every destination to the next hop and total cost from Node.
type ForwardingTable struct {
	Node    state.NodeId      `yaml:"node"`
	Entries []ForwardingEntry `yaml:"entries"`
}

func (t ForwardingTable) String() string {
	sb := strings.Builder{}
	for _, e := range t.Entries {
		sb.WriteString(e.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Trace is the hop sequence a message takes, source and destination inclusive.
type Trace struct {
	Message state.Message  `yaml:"message"`
	Hops    []state.NodeId `yaml:"hops,omitempty"`
	Cost    int            `yaml:"cost"`
	Error   string         `yaml:"error,omitempty"`
	Err     error          `yaml:"-"`
}

func (t Trace) Reachable() bool {
	return t.Err == nil
}

func (t Trace) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("from %d to %d: hops", t.Message.Src, t.Message.Dest))
	if !t.Reachable() {
		sb.WriteString(" unreachable")
	}
	for _, hop := range t.Hops {
		sb.WriteString(fmt.Sprintf(" %d", hop))
	}
	sb.WriteString("; message: ")
	sb.WriteString(t.Message.Text)
	return sb.String()
}

// Solution is the routing state computed by an Algorithm for one topology snapshot.
type Solution interface {
	ForwardingTable(node state.NodeId) (ForwardingTable, error)
	// Path returns the hops from src to dest inclusive and the total cost.
	Path(src, dest state.NodeId) ([]state.NodeId, int, error)
	// LogAttrs describes how the solution was computed
	LogAttrs() []any
}

// Algorithm computes a fresh Solution from a matrix snapshot. It must not retain or
// mutate the matrix beyond the lifetime of the returned Solution.
type Algorithm interface {
	Name() state.Algorithm
	Solve(m state.Matrix) (Solution, error)
}

func NewAlgorithm(a state.Algorithm) (Algorithm, error) {
	switch a {
	case state.AlgoLinkState:
		return LinkState{}, nil
	case state.AlgoDistanceVector:
		return DistanceVector{}, nil
	}
	return nil, fmt.Errorf("unknown algorithm %q", a)
}

// TraceMessage resolves the path of a message under the given solution. Failures are
// recorded on the trace rather than returned.
func TraceMessage(sol Solution, msg state.Message) Trace {
	hops, cost, err := sol.Path(msg.Src, msg.Dest)
	if err != nil {
		return Trace{Message: msg, Cost: Unreached, Error: err.Error(), Err: err}
	}
	return Trace{Message: msg, Hops: hops, Cost: cost}
}

func checkEndpoints(m state.Matrix, src, dest state.NodeId) error {
	if !m.Contains(src) {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrSourceOutOfRange, src, m.Size())
	}
	if !m.Contains(dest) {
		return fmt.Errorf("%w: destination %d not in [1, %d]", state.ErrOutOfRange, dest, m.Size())
	}
	return nil
}
