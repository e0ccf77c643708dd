package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/jointsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

const Title = "PID Control of a Robotic Joint (Step Response)"

const radToDeg = 180 / math.Pi

// Figure sets the size and resolution of the rendered image.
type Figure struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
}

func DefaultFigure() Figure {
	return Figure{Width: 8 * vg.Inch, Height: 8 * vg.Inch, DPI: 200}
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// SaveFigure renders the three panels to path. The extension picks the
// format: .png or .svg.
func SaveFigure(path string, res *dynamo.Result, fig Figure) error {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format != "png" && format != "svg" {
		return fmt.Errorf("unsupported figure format %q", filepath.Ext(path))
	}
	if res == nil || len(res.Record) == 0 {
		return dynamo.ErrEmptySeries
	}
	if err := EnsureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := WriteFigure(bw, format, res, fig); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// WriteFigure renders angle, angular velocity and torque stacked on a
// shared time axis.
func WriteFigure(w io.Writer, format string, res *dynamo.Result, fig Figure) error {
	plots, err := Panels(res)
	if err != nil {
		return err
	}

	var (
		dc     draw.Canvas
		output io.WriterTo
	)
	switch format {
	case "png":
		c := vgimg.NewWith(vgimg.UseWH(fig.Width, fig.Height), vgimg.UseDPI(fig.DPI))
		dc, output = draw.New(c), vgimg.PngCanvas{Canvas: c}
	case "svg":
		c := vgsvg.New(fig.Width, fig.Height)
		dc, output = draw.New(c), c
	default:
		return fmt.Errorf("unsupported figure format %q", format)
	}

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      1,
		PadX:      vg.Millimeter,
		PadY:      vg.Points(6),
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(10),
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	if _, err := output.WriteTo(w); err != nil {
		return fmt.Errorf("cannot write %s: %w", format, err)
	}
	return nil
}

// Panels builds the three time-aligned plots, one per row.
func Panels(res *dynamo.Result) ([][]*plot.Plot, error) {
	if res == nil || len(res.Record) == 0 {
		return nil, dynamo.ErrEmptySeries
	}

	times := res.Record.Times()
	tEnd := times[len(times)-1]

	angle, response, err := panel(times, scale(res.Record.Angles(), radToDeg), "Angle [deg]")
	if err != nil {
		return nil, err
	}
	angle.Legend.Add("Joint angle", response)
	angle.Title.Text = Title
	angle.Title.TextStyle.Font.Size = vg.Points(14)

	target, err := plotter.NewLine(plotter.XYs{{X: times[0], Y: res.Target * radToDeg}, {X: tEnd, Y: res.Target * radToDeg}})
	if err != nil {
		return nil, err
	}
	target.LineStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	target.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(4)}
	angle.Add(target)
	angle.Legend.Add("Target", target)
	angle.Legend.Top = true

	velocity, _, err := panel(times, scale(res.Record.Velocities(), radToDeg), "Angular velocity [deg/s]")
	if err != nil {
		return nil, err
	}

	torque, _, err := panel(times, res.Record.Controls(), "Torque [Nm]")
	if err != nil {
		return nil, err
	}
	torque.X.Label.Text = "Time [s]"

	rows := [][]*plot.Plot{{angle}, {velocity}, {torque}}
	for _, row := range rows {
		row[0].X.Min, row[0].X.Max = 0, tEnd
	}
	return rows, nil
}

func panel(xs, ys []float64, ylabel string) (*plot.Plot, *plotter.Line, error) {
	p := plot.New()
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, nil, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(line)
	return p, line, nil
}

func scale(vals []float64, k float64) []float64 {
	return floats.ScaleTo(make([]float64, len(vals)), k, vals)
}
