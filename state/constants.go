package state

const (
	// RemovalSentinel is the link cost that deletes a link when applied as a change.
	RemovalSentinel = -999
	// NoEdge is the matrix value for a missing link. The diagonal also holds NoEdge,
	// but every node reaches itself at cost zero.
	NoEdge = 0
)

var (
	DefaultOutputPath = "output.txt"
	DefaultConfigPath = "sim.yaml"
	DefaultAlgorithm  = AlgoLinkState
	DefaultFormat     = FormatText
)
