package app

import (
	"fmt"
	"strconv"

	"github.com/dshills/rangebrush/internal/renderer/core"
)

// Screen rows.
const (
	labelRow  = 1
	trackRow  = 2
	statusRow = 4
	helpRow   = 5
)

const helpText = "drag or click the track · tab endpoint · ←/→ step · type a number + enter · q quit"

func (a *Application) redraw() {
	if a.backend == nil {
		return
	}
	a.backend.Clear()

	props := a.ctrl.Props()
	dim := core.DefaultStyle().WithForeground(a.track.Palette().Range)
	b := a.track.Bounds()

	lo, hi := formatValue(props.Range[0]), formatValue(props.Range[1])
	a.drawText(b.Left, labelRow, lo, dim)
	a.drawText(b.Right-len([]rune(hi)), labelRow, hi, dim)

	a.track.Draw()

	a.drawText(b.Left, statusRow, a.statusLine(), core.DefaultStyle())
	a.drawText(b.Left, helpRow, helpText, dim)
	a.backend.Show()
}

func (a *Application) statusLine() string {
	props := a.ctrl.Props()
	v := props.Value

	var s string
	if props.IsRanged() {
		marker := [2]string{" ", " "}
		marker[a.input.endpoint(true)] = ">"
		s = fmt.Sprintf("%s%s .. %s%s", marker[0], formatValue(v[0]), marker[1], formatValue(v[1]))
	} else {
		s = ">" + formatValue(v[0])
	}
	if a.input.typing {
		s += "  = " + a.input.text() + "_"
	}
	if a.link != nil {
		s += fmt.Sprintf("  linked: %d", a.link.Hub().Clients())
	}
	if a.status != "" {
		s += "  " + a.status
	}
	return s
}

func (a *Application) drawText(x, y int, s string, style core.Style) {
	for _, r := range s {
		a.backend.SetCell(x, y, core.Cell{Rune: r, Style: style})
		x++
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
