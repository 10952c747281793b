package core

import (
	"fmt"
	"io"

	"github.com/encodeous/routesim/state"
)

// Inspect prints the upper half of the link matrix followed by the routing state
// each algorithm derives from it.
func Inspect(w io.Writer, m state.Matrix, algo state.Algorithm) error {
	_, err := fmt.Fprintf(w, "%d nodes\n%s\n", m.Size(), m.UpperHalf())
	if err != nil {
		return err
	}
	switch algo {
	case state.AlgoLinkState:
		for i := range m.Size() {
			tree, err := ShortestPathTree(m, state.NodeFromIndex(i))
			if err != nil {
				return err
			}
			if _, err = fmt.Fprintln(w, tree.String()); err != nil {
				return err
			}
		}
	case state.AlgoDistanceVector:
		table, passes := DistanceVectors(m)
		if _, err = fmt.Fprintf(w, "converged after %d passes\n%s", passes, table.String()); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown algorithm %q", algo)
	}
	return nil
}
