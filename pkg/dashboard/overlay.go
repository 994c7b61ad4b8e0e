package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/cellbuf"
)

var dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

// dimBackground strips styling from s and redraws it faint, so the active
// view stays readable but clearly behind a modal
func dimBackground(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = dimStyle.Render(ansi.Strip(l))
	}
	return strings.Join(lines, "\n")
}

// placeOverlay composites fg centered over bg within a width x height
// canvas. Cells of bg outside fg are kept as-is.
func placeOverlay(width, height int, fg, bg string) string {
	bgLines := strings.Split(bg, "\n")
	if len(bgLines) > height {
		bgLines = bgLines[:height]
	}
	for len(bgLines) < height {
		bgLines = append(bgLines, "")
	}

	fgLines := strings.Split(fg, "\n")
	fgWidth := lipgloss.Width(fg)
	x := max((width-fgWidth)/2, 0)
	y := max((height-len(fgLines))/2, 0)

	for i, fl := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bl := bgLines[row]

		left := ansi.Truncate(bl, x, "")
		if pad := x - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ""
		if ansi.StringWidth(bl) > x+fgWidth {
			right = ansi.TruncateLeft(bl, x+fgWidth, "")
		}
		if w := ansi.StringWidth(fl); w < fgWidth {
			fl += strings.Repeat(" ", fgWidth-w)
		}
		bgLines[row] = left + ansi.ResetStyle + fl + ansi.ResetStyle + right
	}
	return strings.Join(bgLines, "\n")
}

// truncateString shortens s to width cells with an ellipsis
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// padRight pads s with spaces to width cells
func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// wrapText wraps s to width cells at word boundaries. URLs in server errors
// may also break after a slash.
func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	return cellbuf.Wrap(s, width, "/")
}
