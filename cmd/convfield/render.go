package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/openfluke/convfield/nn"
)

var (
	receptiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F35F43"))
	projectiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FA7D5"))
	anchorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	idleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	headerStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

func fieldStyle(mode nn.FieldMode) lipgloss.Style {
	if mode == nn.FieldProjective {
		return projectiveStyle
	}
	return receptiveStyle
}

// renderDims writes one table row per stage, input first
func renderDims(w io.Writer, net *nn.Network) {
	specs := net.Specs()
	dims := net.Dims()

	rows := [][]string{{"0", net.StageName(0), strconv.Itoa(net.InputDim()), "", "", "", "", "", ""}}
	for i, s := range specs {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			s.Name,
			strconv.Itoa(dims[i].OutputDim),
			strconv.Itoa(s.KernelWidth),
			strconv.Itoa(s.DilationRate),
			strconv.Itoa(s.Stride),
			s.Padding.String(),
			strconv.FormatBool(s.Causal),
			strconv.Itoa(dims[i].PadLeft),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("STAGE", "NAME", "UNITS", "KERNEL", "DILATION", "STRIDE", "PADDING", "CAUSAL", "PAD LEFT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// renderField draws every stage as a row of cells, output-most on top
func renderField(w io.Writer, net *nn.Network, masks nn.FieldMasks, sel nn.Selection) {
	style := fieldStyle(sel.Mode)
	nameWidth := 0
	for k := 0; k <= net.Len(); k++ {
		nameWidth = max(nameWidth, len(net.StageName(k)))
	}

	for k := net.Len(); k >= 0; k-- {
		var b strings.Builder
		for u := 0; u < net.StageDim(k); u++ {
			switch {
			case sel.Active && k == sel.Stage && u == sel.Unit:
				b.WriteString(anchorStyle.Render("◆"))
			case masks != nil && masks[k][u]:
				b.WriteString(style.Render("■"))
			default:
				b.WriteString(idleStyle.Render("·"))
			}
		}
		fmt.Fprintf(w, "%-*s %4d  %s  %d marked\n", nameWidth, net.StageName(k), net.StageDim(k), b.String(), masks.Count(k))
	}
}
