// Package viz renders stored runs as terminal plots and drives the live
// day-by-day view.
package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cfar/internal/control"
	"github.com/san-kum/cfar/internal/sim"
)

const (
	plotWidth  = 80
	plotHeight = 10
)

// PlotSeries renders one series with a caption.
func PlotSeries(caption string, data []float64) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
	)
}

// PlotRun renders the full dashboard for a run: the five state series
// plus the resolution gate (|error| against the floor).
func PlotRun(records []sim.StepRecord) string {
	if len(records) == 0 {
		return "no data to plot"
	}

	series := []struct {
		caption string
		extract func(sim.StepRecord) float64
	}{
		{"outcome Y", func(r sim.StepRecord) float64 { return r.State.Outcome }},
		{"norm N", func(r sim.StepRecord) float64 { return r.State.Norm }},
		{"attention A", func(r sim.StepRecord) float64 { return r.State.Attention }},
		{"constraint C", func(r sim.StepRecord) float64 { return r.State.Constraint }},
		{"burden B", func(r sim.StepRecord) float64 { return r.State.Burden }},
		{"|error| (gate: below floor = fluctuation)", func(r sim.StepRecord) float64 { return math.Abs(r.Error) }},
	}

	var sb strings.Builder
	for _, s := range series {
		data := make([]float64, len(records))
		for i, rec := range records {
			data[i] = s.extract(rec)
		}
		sb.WriteString(PlotSeries(s.caption, data))
		sb.WriteString("\n\n")
	}

	sb.WriteString(modeRibbon(records))
	return sb.String()
}

// modeRibbon prints one character per day: '.' precision, '~' fluctuation,
// '!' a reported pulse.
func modeRibbon(records []sim.StepRecord) string {
	var sb strings.Builder
	sb.WriteString("mode per day (. precision, ~ fluctuation, ! pulse):\n")
	for i, rec := range records {
		switch {
		case rec.Pulse > control.ReportThreshold:
			sb.WriteByte('!')
		case rec.Mode == sim.ModeFluctuation:
			sb.WriteByte('~')
		default:
			sb.WriteByte('.')
		}
		if (i+1)%plotWidth == 0 {
			sb.WriteByte('\n')
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

// FormatSummary renders the run-level rollup as aligned text.
func FormatSummary(sum sim.Summary, armNames []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "final Y:        %.3f\n", sum.FinalState.Outcome)
	fmt.Fprintf(&sb, "final error:    %+.3f\n", sum.FinalError)
	fmt.Fprintf(&sb, "max Y:          %.3f\n", sum.MaxOutcome)
	fmt.Fprintf(&sb, "days at target: %d\n", sum.DaysAtTarget)
	fmt.Fprintf(&sb, "precision:      %d days\n", sum.PrecisionDays)
	fmt.Fprintf(&sb, "fluctuation:    %d days (%d pulses)\n", sum.FluctuationDays, sum.Pulses)
	for i, pulls := range sum.ArmPulls {
		name := fmt.Sprintf("arm %d", i)
		if i < len(armNames) {
			name = armNames[i]
		}
		fmt.Fprintf(&sb, "  %-18s %d pulls\n", name, pulls)
	}
	return sb.String()
}
