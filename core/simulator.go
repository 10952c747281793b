package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/encodeous/routesim/perf"
	"github.com/encodeous/routesim/state"
)

type SimEvent int

// trace events

const (
	StateComputed SimEvent = iota
	ChangeApplied
	LinkRemoved
)

// warn events

const (
	MessageUnreachable SimEvent = iota + 1000
	TableUnavailable
	SelfLoopIgnored
)

func (e SimEvent) IsWarning() bool {
	return e >= MessageUnreachable
}

// Sink receives the output of a simulation, one section per topology state.
type Sink interface {
	BeginSection(label string, change *state.Link)
	AddTable(table ForwardingTable)
	AddTrace(trace Trace)
	Log(event SimEvent, desc string, args ...any)
}

type Phase int

const (
	// Stable means the emitted tables reflect the current topology.
	Stable Phase = iota
	// Applying is held while a single change is integrated.
	Applying
)

func (p Phase) String() string {
	if p == Applying {
		return "applying"
	}
	return "stable"
}

// Simulator replays Changes against Topology, recomputing every forwarding table and
// message trace from scratch for the initial state and after each change.
// The Simulator is the only writer of Topology while Run is in progress.
type Simulator struct {
	Topology  *state.Topology
	Algorithm Algorithm
	Changes   []state.Link
	Messages  []state.Message
	phase     Phase
}

func (s *Simulator) Phase() Phase {
	return s.phase
}

func (s *Simulator) validateMessages() error {
	n := s.Topology.NodeCount()
	for i, msg := range s.Messages {
		if msg.Src < 1 || int(msg.Src) > n || msg.Dest < 1 || int(msg.Dest) > n {
			return fmt.Errorf("%w: message %d (%s) references a node outside [1, %d]", state.ErrOutOfRange, i+1, msg, n)
		}
	}
	return nil
}

func (s *Simulator) Run(sink Sink) error {
	if err := s.validateMessages(); err != nil {
		return err
	}
	s.phase = Stable
	defer func() {
		s.phase = Stable
	}()
	if err := s.emit(sink, "initial", nil); err != nil {
		return err
	}
	for i, change := range s.Changes {
		s.phase = Applying
		if err := s.Topology.ApplyChange(change); err != nil {
			return fmt.Errorf("change %d: %w", i+1, err)
		}
		perf.ChangesApplied.Add(1)
		if change.IsSelfLoop() {
			sink.Log(SelfLoopIgnored, "self-loop change ignored", "node", change.Src, "cost", change.Cost)
		} else if change.IsRemoval() {
			sink.Log(LinkRemoved, "link removed", "src", change.Src, "dest", change.Dest)
		} else {
			sink.Log(ChangeApplied, "link cost changed", "src", change.Src, "dest", change.Dest, "cost", change.Cost)
		}
		s.phase = Stable
		if err := s.emit(sink, fmt.Sprintf("change %d: %s", i+1, change), &change); err != nil {
			return err
		}
	}
	return nil
}

func (s *Simulator) emit(sink Sink, label string, change *state.Link) error {
	start := time.Now()
	sol, err := s.Algorithm.Solve(s.Topology.Snapshot())
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	sink.BeginSection(label, change)
	for i := range s.Topology.NodeCount() {
		node := state.NodeFromIndex(i)
		table, err := sol.ForwardingTable(node)
		if errors.Is(err, ErrSourceOutOfRange) {
			sink.Log(TableUnavailable, "no forwarding table", "node", node, "error", err)
			continue
		} else if err != nil {
			return err
		}
		sink.AddTable(table)
	}
	for _, msg := range s.Messages {
		trace := TraceMessage(sol, msg)
		if trace.Err != nil {
			sink.Log(MessageUnreachable, "message not delivered", "src", msg.Src, "dest", msg.Dest, "error", trace.Err)
		}
		sink.AddTrace(trace)
	}
	args := []any{"section", label, "algo", s.Algorithm.Name(), "elapsed", time.Since(start)}
	sink.Log(StateComputed, "computed forwarding state", append(args, sol.LogAttrs()...)...)
	return nil
}
