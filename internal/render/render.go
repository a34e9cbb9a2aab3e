// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes candidates and interaction records for the CLI as a
// styled table, JSON, or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.yaml.in/yaml/v3"

	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat accepts table, json, or yaml; empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, or yaml)", s)
	}
}

var (
	cGreen  = lipgloss.Color("118")
	cGold   = lipgloss.Color("220")
	cOrange = lipgloss.Color("208")
	cRed    = lipgloss.Color("196")
	cGray   = lipgloss.Color("240")
)

type styles struct {
	title lipgloss.Style
	name  lipgloss.Style
	muted lipgloss.Style
	grade map[types.EvidenceGrade]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title: r.NewStyle().Bold(true).Underline(true),
		name:  r.NewStyle().Bold(true),
		muted: r.NewStyle().Foreground(cGray),
		grade: map[types.EvidenceGrade]lipgloss.Style{
			types.GradeA:       r.NewStyle().Foreground(cGreen).Bold(true),
			types.GradeB:       r.NewStyle().Foreground(cGold),
			types.GradeC:       r.NewStyle().Foreground(cOrange),
			types.GradeD:       r.NewStyle().Foreground(cRed),
			types.GradeUnknown: r.NewStyle().Foreground(cGray),
		},
	}
}

// Printer writes records to w in one format. Table styling follows the color
// profile of w, so output to a pipe or buffer is plain text.
type Printer struct {
	w      io.Writer
	format Format
	st     styles
}

// NewPrinter returns a Printer writing format to w.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format, st: newStyles(lipgloss.NewRenderer(w))}
}

// Format reports the printer's output format.
func (p *Printer) Format() Format { return p.format }

// Encode writes v as JSON or YAML. Table format falls back to JSON.
func (p *Printer) Encode(v any) error {
	if p.format == FormatYAML {
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// Candidates writes a suggestion list.
func (p *Printer) Candidates(cs []types.Candidate) error {
	if cs == nil {
		cs = []types.Candidate{}
	}
	if p.format != FormatTable {
		return p.Encode(cs)
	}
	if len(cs) == 0 {
		fmt.Fprintln(p.w, p.st.muted.Render("No suggestions."))
		return nil
	}
	width := 0
	for _, c := range cs {
		width = max(width, lipgloss.Width(c.Name))
	}
	for _, c := range cs {
		name := p.st.name.Width(width).Render(c.Name)
		fmt.Fprintf(p.w, "%s %s  %-10s %s\n", c.Icon, name, c.Kind, p.st.muted.Render(c.ID))
	}
	return nil
}

// Depletions writes depletion records.
func (p *Printer) Depletions(ds []types.Depletion) error {
	if ds == nil {
		ds = []types.Depletion{}
	}
	if p.format != FormatTable {
		return p.Encode(ds)
	}
	fmt.Fprintln(p.w, p.st.title.Render(fmt.Sprintf("Depletions (%d)", len(ds))))
	if len(ds) == 0 {
		fmt.Fprintln(p.w, p.st.muted.Render("  none found"))
		return nil
	}
	for _, d := range ds {
		line := "  " + p.st.name.Render(d.NutrientName)
		if len(d.SourceAgents) > 0 {
			line += p.st.muted.Render(" from " + strings.Join(d.SourceAgents, ", "))
		}
		if d.ConfidenceFlag {
			line += " " + p.st.grade[types.GradeA].Render("(established)")
		}
		fmt.Fprintln(p.w, line)
		if len(d.Monitor.LabTests) > 0 {
			fmt.Fprintf(p.w, "    labs:     %s\n", strings.Join(d.Monitor.LabTests, ", "))
		}
		if len(d.Monitor.Symptoms) > 0 {
			fmt.Fprintf(p.w, "    symptoms: %s\n", strings.Join(d.Monitor.Symptoms, ", "))
		}
	}
	return nil
}

// Optimizations writes optimization records.
func (p *Printer) Optimizations(recs []types.Optimization) error {
	if recs == nil {
		recs = []types.Optimization{}
	}
	if p.format != FormatTable {
		return p.Encode(recs)
	}
	fmt.Fprintln(p.w, p.st.title.Render(fmt.Sprintf("Optimizations (%d)", len(recs))))
	if len(recs) == 0 {
		fmt.Fprintln(p.w, p.st.muted.Render("  none found"))
		return nil
	}
	for _, o := range recs {
		grade := "-"
		if o.EvidenceGrade != types.GradeUnknown {
			grade = string(o.EvidenceGrade)
		}
		line := fmt.Sprintf("  %s %s", p.st.grade[o.EvidenceGrade].Render("["+grade+"]"), p.st.name.Render(o.Name))
		if len(o.SourceAgents) > 0 {
			line += p.st.muted.Render(" for " + strings.Join(o.SourceAgents, ", "))
		}
		fmt.Fprintln(p.w, line)
		if o.Advice != "" {
			fmt.Fprintf(p.w, "      %s\n", o.Advice)
		}
		if o.DosageHint != nil {
			fmt.Fprintf(p.w, "      dose: %s\n", *o.DosageHint)
		}
		if len(o.AlertSymptoms) > 0 {
			fmt.Fprintf(p.w, "      watch for: %s\n", strings.Join(o.AlertSymptoms, ", "))
		}
	}
	return nil
}

// Notice writes a muted status line, such as a background failure.
func (p *Printer) Notice(format string, args ...any) {
	if p.format != FormatTable {
		return
	}
	fmt.Fprintln(p.w, p.st.muted.Render(fmt.Sprintf(format, args...)))
}
