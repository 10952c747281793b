package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/encodeous/routesim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

type HarnessEvent struct {
	Message string
	Args    []any
}

func MakeEvent(msg string, args ...any) HarnessEvent {
	return HarnessEvent{
		Message: msg,
		Args:    args,
	}
}

// SimHarness is a Sink that records everything a simulation emits.
type SimHarness struct {
	actions []HarnessEvent
	report  *Report
}

func NewSimHarness() *SimHarness {
	return &SimHarness{report: NewReport("", nil)}
}

func (h *SimHarness) BeginSection(label string, change *state.Link) {
	h.report.BeginSection(label, change)
	h.actions = append(h.actions, MakeEvent("SECTION", label))
}

func (h *SimHarness) AddTable(table ForwardingTable) {
	h.report.AddTable(table)
	h.actions = append(h.actions, MakeEvent("TABLE", table.Node))
}

func (h *SimHarness) AddTrace(trace Trace) {
	h.report.AddTrace(trace)
	h.actions = append(h.actions, MakeEvent("TRACE", trace.Message.Src, trace.Message.Dest, trace.Hops))
}

func (h *SimHarness) Log(event SimEvent, desc string, args ...any) {
	x := make([]any, 0)
	x = append(x, event)
	x = append(x, desc)
	x = append(x, args...)
	h.actions = append(h.actions, MakeEvent("LOG", x...))
}

type HarnessEvents []HarnessEvent

func (e HarnessEvents) String() string {
	out := make([]string, 0)
	for _, action := range e {
		cur := action.Message
		for _, arg := range action.Args {
			cur += " " + fmt.Sprint(arg)
		}
		out = append(out, cur)
	}
	return strings.Join(out, "\n")
}

// GetActions returns the recorded non-log events and clears the history.
func (h *SimHarness) GetActions() HarnessEvents {
	x := make([]HarnessEvent, 0)
	for _, action := range h.actions {
		if action.Message != "LOG" {
			x = append(x, action)
		}
	}
	h.actions = make([]HarnessEvent, 0)
	return x
}

// GetLogs returns the recorded log events without clearing them.
func (h *SimHarness) GetLogs() HarnessEvents {
	return slices.DeleteFunc(slices.Clone(h.actions), func(e HarnessEvent) bool {
		return e.Message != "LOG"
	})
}

func (e HarnessEvents) contains(msg string, args ...any) bool {
	for _, event := range e {
		if event.Message == msg {
			if len(event.Args) >= len(args) {
				match := true
				for i, arg := range args {
					if !cmp.Equal(event.Args[i], arg, cmpopts.EquateEmpty()) {
						match = false
						break
					}
				}
				if match {
					return true
				}
			}
		}
	}
	return false
}

func (e HarnessEvents) AssertContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		return
	}
	t.Fatal("Expected event not found: ", msg, " with args: ", args, " in ", e)
}

func (e HarnessEvents) AssertNotContains(t *testing.T, msg string, args ...any) {
	if e.contains(msg, args...) {
		t.Fatal("Unexpected event found: ", msg, " with args: ", args, " in ", e)
	}
}

func MustMatrix(t *testing.T, links ...state.Link) state.Matrix {
	t.Helper()
	topo, err := state.BuildTopology(links)
	require.NoError(t, err)
	return topo.Snapshot()
}

// SquareLinks is the 4-node ring 1-2-3-4 with a costly 1-4 shortcut.
func SquareLinks() []state.Link {
	return []state.Link{
		{Src: 1, Dest: 2, Cost: 1},
		{Src: 2, Dest: 3, Cost: 1},
		{Src: 3, Dest: 4, Cost: 1},
		{Src: 1, Dest: 4, Cost: 5},
	}
}

func Hops(ids ...int) []state.NodeId {
	out := make([]state.NodeId, len(ids))
	for i, id := range ids {
		out[i] = state.NodeId(id)
	}
	return out
}
