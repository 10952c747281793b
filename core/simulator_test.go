package core

import (
	"bytes"
	"testing"

	"github.com/encodeous/routesim/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSquareSim(t *testing.T, algo Algorithm, changes ...state.Link) *Simulator {
	t.Helper()
	topo, err := state.BuildTopology(SquareLinks())
	require.NoError(t, err)
	return &Simulator{
		Topology:  topo,
		Algorithm: algo,
		Changes:   changes,
		Messages:  []state.Message{{Src: 1, Dest: 4, Text: "hello"}},
	}
}

const squareReport = `1 1 0
2 2 1
3 2 2
4 2 3

1 1 1
2 2 0
3 3 1
4 3 2

1 2 2
2 2 1
3 3 0
4 4 1

1 3 3
2 3 2
3 3 1
4 4 0

from 1 to 4: hops 1 2 3 4; message: hello

1 1 0
2 2 1
3 4 6
4 4 5

1 1 1
2 2 0
3 1 7
4 1 6

1 4 6
2 4 7
3 3 0
4 4 1

1 1 5
2 1 6
3 3 1
4 4 0

from 1 to 4: hops 1 4; message: hello

`

func TestSimulatorReplayText(t *testing.T) {
	for _, algo := range []Algorithm{LinkState{}, DistanceVector{}} {
		t.Run(string(algo.Name()), func(t *testing.T) {
			sim := newSquareSim(t, algo, state.Link{Src: 2, Dest: 3, Cost: state.RemovalSentinel})
			report := NewReport(algo.Name(), nil)
			require.NoError(t, sim.Run(report))
			require.Len(t, report.Sections, 2)
			assert.Equal(t, "initial", report.Sections[0].Label)
			assert.Equal(t, "change 1: 2 3 -999", report.Sections[1].Label)

			buf := bytes.Buffer{}
			require.NoError(t, report.WriteText(&buf))
			assert.Equal(t, squareReport, buf.String())
		})
	}
}

func TestSimulatorEmitsSectionPerChange(t *testing.T) {
	h := NewSimHarness()
	sim := newSquareSim(t, LinkState{},
		state.Link{Src: 1, Dest: 4, Cost: 1},
		state.Link{Src: 1, Dest: 4, Cost: 1},
		state.Link{Src: 1, Dest: 2, Cost: state.RemovalSentinel},
	)
	require.NoError(t, sim.Run(h))
	assert.Len(t, h.report.Sections, 4)

	a := h.GetActions()
	a.AssertContains(t, "SECTION", "initial")
	a.AssertContains(t, "SECTION", "change 3: 1 2 -999")
	a.AssertContains(t, "TRACE", state.NodeId(1), state.NodeId(4), Hops(1, 4))
	a.AssertNotContains(t, "SECTION", "change 4")

	logs := h.GetLogs()
	logs.AssertContains(t, "LOG", ChangeApplied, "link cost changed")
	logs.AssertContains(t, "LOG", LinkRemoved, "link removed")
	logs.AssertNotContains(t, "LOG", MessageUnreachable)

	// applying the same change twice leaves the tables untouched
	assert.Equal(t, h.report.Sections[1].Tables, h.report.Sections[2].Tables)
	assert.Equal(t, Stable, sim.Phase())
}

func TestSimulatorUnreachableMessage(t *testing.T) {
	h := NewSimHarness()
	sim := newSquareSim(t, DistanceVector{},
		state.Link{Src: 1, Dest: 4, Cost: state.RemovalSentinel},
		state.Link{Src: 3, Dest: 4, Cost: state.RemovalSentinel},
	)
	require.NoError(t, sim.Run(h))

	logs := h.GetLogs()
	logs.AssertContains(t, "LOG", MessageUnreachable, "message not delivered")

	last := h.report.Sections[2]
	require.Len(t, last.Traces, 1)
	assert.False(t, last.Traces[0].Reachable())
	assert.ErrorIs(t, last.Traces[0].Err, ErrUnreachable)
	assert.Equal(t, "from 1 to 4: hops unreachable; message: hello", last.Traces[0].String())
	assert.Equal(t, "4 unreachable", last.Tables[0].Entries[3].String())
}

func TestSimulatorOutOfRange(t *testing.T) {
	sim := newSquareSim(t, LinkState{}, state.Link{Src: 1, Dest: 9, Cost: 2})
	h := NewSimHarness()
	err := sim.Run(h)
	assert.ErrorIs(t, err, state.ErrOutOfRange)
	// the initial state is still emitted before the bad change
	assert.Len(t, h.report.Sections, 1)
	assert.Equal(t, Stable, sim.Phase())

	sim = newSquareSim(t, LinkState{})
	sim.Messages = append(sim.Messages, state.Message{Src: 5, Dest: 1, Text: "lost"})
	h = NewSimHarness()
	err = sim.Run(h)
	assert.ErrorIs(t, err, state.ErrOutOfRange)
	assert.Empty(t, h.report.Sections)
}

func TestSimulatorSelfMessage(t *testing.T) {
	sim := newSquareSim(t, LinkState{})
	sim.Messages = []state.Message{{Src: 3, Dest: 3, Text: "me myself"}}
	report := NewReport(state.AlgoLinkState, nil)
	require.NoError(t, sim.Run(report))
	assert.Equal(t, "from 3 to 3: hops 3; message: me myself", report.Sections[0].Traces[0].String())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "stable", Stable.String())
	assert.Equal(t, "applying", Applying.String())
	assert.True(t, MessageUnreachable.IsWarning())
	assert.False(t, StateComputed.IsWarning())
}

// phaseSink records the simulator phase whenever an event is logged.
type phaseSink struct {
	*SimHarness
	sim    *Simulator
	phases map[SimEvent][]Phase
}

func (p *phaseSink) Log(event SimEvent, desc string, args ...any) {
	p.phases[event] = append(p.phases[event], p.sim.Phase())
	p.SimHarness.Log(event, desc, args...)
}

func TestSimulatorPhases(t *testing.T) {
	sim := newSquareSim(t, LinkState{},
		state.Link{Src: 1, Dest: 4, Cost: 2},
		state.Link{Src: 2, Dest: 3, Cost: state.RemovalSentinel},
	)
	sink := &phaseSink{SimHarness: NewSimHarness(), sim: sim, phases: make(map[SimEvent][]Phase)}
	require.NoError(t, sim.Run(sink))

	assert.Equal(t, []Phase{Applying}, sink.phases[ChangeApplied])
	assert.Equal(t, []Phase{Applying}, sink.phases[LinkRemoved])
	assert.Equal(t, []Phase{Stable, Stable, Stable}, sink.phases[StateComputed])
	assert.Equal(t, Stable, sim.Phase())
}

func TestSimulatorSelfLoopChange(t *testing.T) {
	h := NewSimHarness()
	sim := newSquareSim(t, DistanceVector{}, state.Link{Src: 2, Dest: 2, Cost: 4})
	require.NoError(t, sim.Run(h))

	require.Len(t, h.report.Sections, 2)
	assert.Equal(t, h.report.Sections[0].Tables, h.report.Sections[1].Tables)
	logs := h.GetLogs()
	logs.AssertContains(t, "LOG", SelfLoopIgnored, "self-loop change ignored")
	logs.AssertNotContains(t, "LOG", ChangeApplied)
	assert.True(t, SelfLoopIgnored.IsWarning())
}
