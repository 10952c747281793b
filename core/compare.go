package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Mismatch is the first line where two reports differ, counted over non-blank lines.
type Mismatch struct {
	Line  int
	Left  string
	Right string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s - %s - at line %d", m.Left, m.Right, m.Line)
}

func reportLines(r io.Reader) ([]string, error) {
	lines := make([]string, 0)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// CompareOutputs compares two reports line by line, ignoring blank lines and
// surrounding whitespace. It returns nil when they match. A missing line on one side
// is reported as "<EOF>".
func CompareOutputs(a, b io.Reader) (*Mismatch, error) {
	left, err := reportLines(a)
	if err != nil {
		return nil, err
	}
	right, err := reportLines(b)
	if err != nil {
		return nil, err
	}
	for i := range max(len(left), len(right)) {
		l, r := "<EOF>", "<EOF>"
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		if l != r {
			return &Mismatch{Line: i, Left: l, Right: r}, nil
		}
	}
	return nil, nil
}
