package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/jointsim/internal/metrics"
)

// SummaryLines returns the console summary of a run: target in degrees,
// percent overshoot and settling time for the report's band.
func SummaryLines(r metrics.Report) []string {
	settling := "not settled"
	if r.Settled {
		settling = fmt.Sprintf("%.3f s", r.SettlingTime)
	}
	return []string{
		fmt.Sprintf("Target angle: %.2f deg", r.Target*180/math.Pi),
		fmt.Sprintf("Overshoot: %.2f%%", r.Overshoot),
		fmt.Sprintf("Settling time (%.4g%% band): %s", r.Tolerance*100, settling),
	}
}

// Summary renders the full report as a styled panel.
func Summary(title string, r metrics.Report) string {
	settling := "not settled"
	if r.Settled {
		settling = fmt.Sprintf("%.3f s", r.SettlingTime)
	}
	rise := "not reached"
	if r.RiseReached {
		rise = fmt.Sprintf("%.3f s", r.RiseTime)
	}

	rows := []string{
		Title.Render(title),
		"",
		metricRow("Target", fmt.Sprintf("%.2f deg", r.Target*180/math.Pi)),
		metricRow("Overshoot", fmt.Sprintf("%.2f%%", r.Overshoot)),
		metricRow(fmt.Sprintf("Settling (%.4g%%)", r.Tolerance*100), settling),
		metricRow("Rise time", rise),
		metricRow("Peak time", fmt.Sprintf("%.3f s", r.PeakTime)),
		metricRow("Steady-state err", fmt.Sprintf("%.4f deg", r.SteadyStateError*180/math.Pi)),
		metricRow("Control effort", fmt.Sprintf("%.3f Nm", r.ControlEffort)),
		metricRow("Saturated", fmt.Sprintf("%.1f%%", r.SaturationRatio*100)),
	}
	return Panel.Render(strings.Join(rows, "\n"))
}

// CompareTable renders one row per named report.
func CompareTable(names []string, reports []metrics.Report) string {
	var b strings.Builder
	header := fmt.Sprintf("%-12s %11s %11s %11s %11s", "run", "overshoot", "settling", "rise", "effort")
	b.WriteString(Title.Render(header) + "\n")
	b.WriteString(Subtle.Render(strings.Repeat("─", len(header))) + "\n")
	for i, r := range reports {
		settling, rise := "-", "-"
		if r.Settled {
			settling = fmt.Sprintf("%.3f s", r.SettlingTime)
		}
		if r.RiseReached {
			rise = fmt.Sprintf("%.3f s", r.RiseTime)
		}
		fmt.Fprintf(&b, "%-12s %10.2f%% %11s %11s %8.3f Nm\n", names[i], r.Overshoot, settling, rise, r.ControlEffort)
	}
	return b.String()
}
