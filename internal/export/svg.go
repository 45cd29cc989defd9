// Package export renders stored runs as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/cfar/internal/sim"
)

// TimelineSVG draws the outcome trajectory of a run with the target as a
// dashed reference line and fluctuation-mode days shaded underneath.
func TimelineSVG(records []sim.StepRecord, target float64, width, height int) string {
	if len(records) < 2 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	dayWidth := float64(width) / float64(len(records))

	// Shade fluctuation-mode days.
	for i, rec := range records {
		if rec.Mode != sim.ModeFluctuation {
			continue
		}
		x := float64(i) * dayWidth
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="0" width="%.1f" height="%d" fill="#332200" opacity="0.6"/>
`, x, dayWidth+0.5, height))
	}

	// Target reference line. Outcome is in (0,1), so the vertical mapping
	// is fixed rather than fit to the data.
	ty := float64(height) * (1 - target)
	sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#888888" stroke-dasharray="4 3" stroke-width="1"/>
`, ty, width, ty))

	sb.WriteString(`<path fill="none" stroke="#00ff88" stroke-width="1.5" d="M`)
	for i, rec := range records {
		x := (float64(i) + 0.5) * dayWidth
		y := float64(height) * (1 - clamp01(rec.State.Outcome))
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString("\"/>\n")

	// Pulse markers.
	for i, rec := range records {
		if rec.Pulse <= 0 {
			continue
		}
		x := (float64(i) + 0.5) * dayWidth
		y := float64(height) * (1 - clamp01(rec.State.Outcome))
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="#ff00ff"/>
`, x, y))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
