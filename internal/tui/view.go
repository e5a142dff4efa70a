package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdrpinto/gridpath"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	wallStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	freeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	endpointStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1)
)

func (m Model) View() string {
	grid := m.sel.Grid()
	start, hasStart := m.sel.Start()
	end, hasEnd := m.sel.End()

	onPath := make(map[gridpath.Node]bool, len(m.path))
	for _, n := range m.path {
		onPath[n] = true
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("gridpath"))
	b.WriteString("  mode: " + m.sel.Mode().String() + "  " + m.sel.State().String())
	b.WriteByte('\n')

	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			cell := gridpath.Node{X: x, Y: y}
			var glyph string
			var style lipgloss.Style
			switch {
			case hasStart && cell == start:
				glyph, style = "S", endpointStyle
			case hasEnd && cell == end:
				glyph, style = "E", endpointStyle
			case onPath[cell]:
				glyph, style = "•", pathStyle
			case grid.Blocked(x, y):
				glyph, style = "█", wallStyle
			default:
				glyph, style = "·", freeStyle
			}
			if cell == m.cursor {
				style = style.Inherit(cursorStyle)
			}
			b.WriteString(style.Render(glyph))
		}
		b.WriteByte('\n')
	}

	b.WriteString(statusStyle.Render(m.status))
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
