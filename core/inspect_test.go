package core

import (
	"bytes"
	"testing"

	"github.com/encodeous/routesim/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectLinkState(t *testing.T) {
	buf := bytes.Buffer{}
	require.NoError(t, Inspect(&buf, MustMatrix(t, SquareLinks()...), state.AlgoLinkState))
	out := buf.String()
	assert.Contains(t, out, "4 nodes\n0 1 0 5 \n  0 1 0 \n")
	assert.Contains(t, out, "1: 1->2(1) 2->3(2) 3->4(3)\n")
	assert.Contains(t, out, "4: 4->3(1) 3->2(2) 2->1(3)\n")
}

func TestInspectDistanceVector(t *testing.T) {
	buf := bytes.Buffer{}
	require.NoError(t, Inspect(&buf, MustMatrix(t, SquareLinks()...), state.AlgoDistanceVector))
	assert.Contains(t, buf.String(), "converged after")
	assert.Contains(t, buf.String(), "1 < (0, 1) (1, 2) (2, 2) (3, 2) >\n")

	assert.Error(t, Inspect(&bytes.Buffer{}, MustMatrix(t, SquareLinks()...), "rip"))
}
