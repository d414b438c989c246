// Package render writes an AnalysisReport in the output formats the CLI
// and the HTTP API offer.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tinytelemetry/logscope/internal/logparse"
	"github.com/tinytelemetry/logscope/internal/model"
)

type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

// Formats lists every supported format in help-text order.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCSV, FormatTable}

type Renderer interface {
	Render(w io.Writer, report model.AnalysisReport) error
}

// New returns the renderer for f.
func New(f Format) (Renderer, error) {
	switch Format(strings.ToLower(string(f))) {
	case FormatText, "":
		return &textRenderer{}, nil
	case FormatJSON:
		return &jsonRenderer{}, nil
	case FormatYAML:
		return &yamlRenderer{}, nil
	case FormatCSV:
		return &csvRenderer{}, nil
	case FormatTable:
		return &tableRenderer{}, nil
	default:
		return nil, fmt.Errorf("render: unknown format %q (want one of %s)", f, formatList())
	}
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

type jsonRenderer struct{}

func (r *jsonRenderer) Render(w io.Writer, report model.AnalysisReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

type yamlRenderer struct{}

func (r *yamlRenderer) Render(w io.Writer, report model.AnalysisReport) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}

// orderedLevels returns the level keys for display: first-seen order when
// known, otherwise by severity rank then name.
func orderedLevels(st model.Statistics) []string {
	if len(st.LevelOrder) == len(st.LevelCounts) {
		return st.LevelOrder
	}
	levels := make([]string, 0, len(st.LevelCounts))
	for level := range st.LevelCounts {
		levels = append(levels, level)
	}
	sort.Slice(levels, func(i, j int) bool {
		ri, rj := logparse.LevelRank(levels[i]), logparse.LevelRank(levels[j])
		if ri != rj {
			return ri < rj
		}
		return levels[i] < levels[j]
	})
	return levels
}

func joinIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprintf("%d", idx)
	}
	return strings.Join(parts, " ")
}
