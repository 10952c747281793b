package state

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var ErrMalformedLine = errors.New("malformed line")

// Message is a payload to be traced from Src to Dest.
type Message struct {
	Src  NodeId `yaml:"src"`
	Dest NodeId `yaml:"dest"`
	Text string `yaml:"text"`
}

func (m Message) String() string {
	return fmt.Sprintf("%d %d %s", m.Src, m.Dest, m.Text)
}

func scanLines(r io.Reader, fn func(lineNo int, line string) error) error {
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func parseNode(s string, lineNo int) (NodeId, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w %d: node id %q: %w", ErrMalformedLine, lineNo, s, err)
	}
	return NodeId(v), nil
}

// ParseLinks reads "<src> <dest> <cost>" lines, as used by topology and change files.
func ParseLinks(r io.Reader) ([]Link, error) {
	links := make([]Link, 0)
	err := scanLines(r, func(lineNo int, line string) error {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return fmt.Errorf("%w %d: expected <src> <dest> <cost>, got %q", ErrMalformedLine, lineNo, line)
		}
		src, err := parseNode(fields[0], lineNo)
		if err != nil {
			return err
		}
		dest, err := parseNode(fields[1], lineNo)
		if err != nil {
			return err
		}
		cost, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("%w %d: cost %q: %w", ErrMalformedLine, lineNo, fields[2], err)
		}
		links = append(links, Link{Src: src, Dest: dest, Cost: cost})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// ParseMessages reads "<src> <dest> <text>" lines. The text is the rest of the line
// after the second space, inner spaces included.
func ParseMessages(r io.Reader) ([]Message, error) {
	msgs := make([]Message, 0)
	err := scanLines(r, func(lineNo int, line string) error {
		spl := strings.SplitN(line, " ", 3)
		if len(spl) < 2 {
			return fmt.Errorf("%w %d: expected <src> <dest> <message>, got %q", ErrMalformedLine, lineNo, line)
		}
		src, err := parseNode(spl[0], lineNo)
		if err != nil {
			return err
		}
		dest, err := parseNode(spl[1], lineNo)
		if err != nil {
			return err
		}
		text := ""
		if len(spl) == 3 {
			text = spl[2]
		}
		msgs = append(msgs, Message{Src: src, Dest: dest, Text: text})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func ReadLinksFile(path string) ([]Link, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	links, err := ParseLinks(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return links, nil
}

func ReadMessagesFile(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	msgs, err := ParseMessages(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return msgs, nil
}
