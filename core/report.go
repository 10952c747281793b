package core

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/encodeous/routesim/state"
	"github.com/goccy/go-yaml"
)

type Section struct {
	Label  string            `yaml:"label"`
	Change *state.Link       `yaml:"change,omitempty"`
	Tables []ForwardingTable `yaml:"tables"`
	Traces []Trace           `yaml:"traces"`
}

// Report accumulates the sections of a simulation run.
type Report struct {
	Algorithm state.Algorithm `yaml:"algorithm"`
	Sections  []Section       `yaml:"sections"`
	log       *slog.Logger
}

func NewReport(algo state.Algorithm, log *slog.Logger) *Report {
	if log == nil {
		log = slog.Default()
	}
	return &Report{
		Algorithm: algo,
		Sections:  make([]Section, 0),
		log:       log,
	}
}

func (r *Report) current() *Section {
	if len(r.Sections) == 0 {
		r.BeginSection("initial", nil)
	}
	return &r.Sections[len(r.Sections)-1]
}

func (r *Report) BeginSection(label string, change *state.Link) {
	r.Sections = append(r.Sections, Section{
		Label:  label,
		Change: change,
		Tables: make([]ForwardingTable, 0),
		Traces: make([]Trace, 0),
	})
}

func (r *Report) AddTable(table ForwardingTable) {
	sec := r.current()
	sec.Tables = append(sec.Tables, table)
}

func (r *Report) AddTrace(trace Trace) {
	sec := r.current()
	sec.Traces = append(sec.Traces, trace)
}

func (r *Report) Log(event SimEvent, desc string, args ...any) {
	if event.IsWarning() {
		r.log.Warn(desc, args...)
	} else {
		r.log.Debug(desc, args...)
	}
}

// WriteText writes every section in the line format of the forwarding reports: one
// block of "<dest> <nexthop> <cost>" lines per node, then one line per message,
// each block and line followed by a blank line.
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, sec := range r.Sections {
		for _, table := range sec.Tables {
			bw.WriteString(table.String())
			bw.WriteString("\n")
		}
		for _, trace := range sec.Traces {
			bw.WriteString(trace.String())
			bw.WriteString("\n\n")
		}
	}
	return bw.Flush()
}

func (r *Report) WriteYAML(w io.Writer) error {
	bytes, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(bytes)
	return err
}

func (r *Report) Write(w io.Writer, format state.ReportFormat) error {
	if format == state.FormatYAML {
		return r.WriteYAML(w)
	}
	return r.WriteText(w)
}
