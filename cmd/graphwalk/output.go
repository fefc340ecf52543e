package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-graphwalk/pkg/edgelist"
	"github.com/dd0wney/cluso-graphwalk/pkg/graph"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF"))
)

// renderTable draws a static table; every row is visible.
func renderTable(columns []table.Column, rows []table.Row) string {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithStyles(s),
	)
	t.SetHeight(len(rows) + 2)
	return t.View()
}

// keyValues renders aligned label/value lines.
func keyValues(pairs ...[2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var out string
	for i, p := range pairs {
		if i > 0 {
			out += "\n"
		}
		out += labelStyle.Render(fmt.Sprintf("%-*s", width, p[0])) + "  " + p[1]
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// writeWalks writes one walk per line as separated node names. An empty path
// writes to w.
func writeWalks(w io.Writer, path string, g *graph.Graph, walks [][]graph.NodeID) (err error) {
	if path != "" {
		wc, err := edgelist.Create(path)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := wc.Close(); err == nil {
				err = cerr
			}
		}()
		w = wc
	}

	names := g.NodeNames()
	bw := bufio.NewWriter(w)
	for _, walk := range walks {
		for i, node := range walk {
			if i > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(names[node])
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
