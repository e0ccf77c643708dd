package viz

import (
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/jointsim/internal/dynamo"
)

// Chart plots one series. asciigraph resamples to width columns.
func Chart(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
		asciigraph.Precision(2),
	)
}

// ResponseCharts plots angle against the target, then angular velocity and
// torque, one chart per quantity in degrees and newton-metres.
func ResponseCharts(res *dynamo.Result, width, height int) (string, error) {
	if res == nil || len(res.Record) == 0 {
		return "", dynamo.ErrEmptySeries
	}

	angles := toDegrees(res.Record.Angles())
	target := make([]float64, len(angles))
	for i := range target {
		target[i] = res.Target * 180 / math.Pi
	}

	angle := asciigraph.PlotMany([][]float64{target, angles},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption("angle [deg] vs target"),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Cyan),
		asciigraph.Precision(2),
	)

	charts := []string{
		graphStyle.Render(angle),
		graphStyle.Render(Chart(toDegrees(res.Record.Velocities()), "angular velocity [deg/s]", width, height)),
		graphStyle.Render(Chart(res.Record.Controls(), "torque [Nm]", width, height)),
	}
	return strings.Join(charts, "\n"), nil
}

func toDegrees(rad []float64) []float64 {
	out := make([]float64, len(rad))
	for i, v := range rad {
		out[i] = v * 180 / math.Pi
	}
	return out
}
