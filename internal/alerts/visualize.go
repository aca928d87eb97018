package alerts

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// palette is a small fixed color set, enough for the handful of patterns
// and severities a dashboard realistically shows; cycles if exhausted.
var palette = []color.Color{
	color.RGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
	color.RGBA{R: 0xff, G: 0x98, B: 0x00, A: 0xff},
	color.RGBA{R: 0xf4, G: 0x43, B: 0x36, A: 0xff},
	color.RGBA{R: 0x21, G: 0x96, B: 0xf3, A: 0xff},
	color.RGBA{R: 0x9c, G: 0x27, B: 0xb0, A: 0xff},
	color.RGBA{R: 0x79, G: 0x55, B: 0x48, A: 0xff},
	color.RGBA{R: 0x60, G: 0x7d, B: 0x8b, A: 0xff},
	color.RGBA{R: 0xff, G: 0xc1, B: 0x07, A: 0xff},
}

var severityColors = map[string]color.Color{
	"INFO":    color.RGBA{R: 0x4c, G: 0xaf, B: 0x50, A: 0xff},
	"WARNING": color.RGBA{R: 0xff, G: 0x98, B: 0x00, A: 0xff},
	"ERROR":   color.RGBA{R: 0xf4, G: 0x43, B: 0x36, A: 0xff},
}

// pieSlice is one wedge of a pieChart.
type pieSlice struct {
	Value float64
	Color color.Color
}

// pieChart is a minimal plot.Plotter drawing wedges directly on the
// canvas; gonum/plot has no stock pie plotter, so this is a small adapter
// over its vg.Path/draw.Canvas primitives, the way internal/embeddings'
// ToChromemFunc adapts chromem-go's embedding function signature.
type pieChart struct {
	slices []pieSlice
}

func (p *pieChart) Plot(c draw.Canvas, _ *plot.Plot) {
	total := 0.0
	for _, s := range p.slices {
		total += s.Value
	}
	if total <= 0 {
		return
	}

	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := c.Max.X - c.Min.X
	if h := c.Max.Y - c.Min.Y; h < radius {
		radius = h
	}
	radius = radius / 2 * 0.8

	angle := -math.Pi / 2
	for _, s := range p.slices {
		sweep := 2 * math.Pi * (s.Value / total)
		var path vg.Path
		path.Move(center)
		path.Line(vg.Point{X: center.X + radius*vg.Length(math.Cos(angle)), Y: center.Y + radius*vg.Length(math.Sin(angle))})
		path.Arc(center, radius, angle, sweep)
		path.Close()
		c.SetColor(s.Color)
		c.Fill(path)
		angle += sweep
	}
}

// generateVisualization builds the 4-panel PNG dashboard (pattern pie,
// top-10 source IPs bar, severity stacked bar, confidence box plot) from
// spec.md §4.9 step 6, base64-encoded. Any plotting failure is treated the
// same as "plotting dependency absent" — it returns ("", nil), not an
// error, matching the original's try/except-None behavior.
func generateVisualization(groups []Group, riskScore float64) (string, error) {
	if len(groups) == 0 {
		return "", nil
	}

	pie, err := buildPatternPie(groups)
	if err != nil {
		return "", nil
	}
	bar, err := buildTopIPsBar(groups)
	if err != nil {
		return "", nil
	}
	stacked, err := buildSeverityStackedBar(groups)
	if err != nil {
		return "", nil
	}
	box, err := buildConfidenceBoxPlot(groups)
	if err != nil {
		return "", nil
	}

	c := vgimg.New(14*vg.Inch, 10*vg.Inch)
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows: 2, Cols: 2,
		PadX: vg.Millimeter * 4, PadY: vg.Millimeter * 4,
		PadTop: vg.Millimeter * 6, PadBottom: vg.Millimeter * 4,
		PadLeft: vg.Millimeter * 4, PadRight: vg.Millimeter * 4,
	}
	plots := [][]*plot.Plot{{pie, bar}, {stacked, box}}
	if err := plot.Align(plots, tiles, dc); err != nil {
		return "", nil
	}

	png := vgimg.PngCanvas{Canvas: c}
	var buf bytes.Buffer
	if _, err := png.WriteTo(&buf); err != nil {
		return "", nil
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func buildPatternPie(groups []Group) (*plot.Plot, error) {
	counts := make(map[string]int)
	var order []string
	for _, g := range groups {
		if _, ok := counts[g.Pattern]; !ok {
			order = append(order, g.Pattern)
		}
		counts[g.Pattern]++
	}

	slices := make([]pieSlice, 0, len(order))
	for i, pattern := range order {
		slices = append(slices, pieSlice{Value: float64(counts[pattern]), Color: palette[i%len(palette)]})
	}

	p := plot.New()
	p.Title.Text = "Alert Distribution by Pattern"
	p.HideAxes()
	p.Add(&pieChart{slices: slices})

	p.Legend.Top = true
	for i, pattern := range order {
		p.Legend.Add(strings.ReplaceAll(pattern, "_", " "), legendSwatch{palette[i%len(palette)]})
	}
	return p, nil
}

// legendSwatch is a minimal plot.Thumbnailer so pie-chart legend entries
// render a color square instead of a line style.
type legendSwatch struct{ color.Color }

func (s legendSwatch) Thumbnail(c *draw.Canvas) {
	c.SetColor(s.Color)
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y}, {X: c.Max.X, Y: c.Min.Y},
		{X: c.Max.X, Y: c.Max.Y}, {X: c.Min.X, Y: c.Max.Y},
	}
	var path vg.Path
	path.Move(pts[0])
	for _, pt := range pts[1:] {
		path.Line(pt)
	}
	path.Close()
	c.Fill(path)
}

func buildTopIPsBar(groups []Group) (*plot.Plot, error) {
	top := make([]Group, len(groups))
	copy(top, groups)
	sort.SliceStable(top, func(i, j int) bool { return top[i].AlertCount > top[j].AlertCount })
	if len(top) > 10 {
		top = top[:10]
	}

	values := make(plotter.Values, len(top))
	labels := make([]string, len(top))
	for i, g := range top {
		values[i] = float64(g.AlertCount)
		label := g.SourceIP
		if len(label) > 15 {
			label = label[:15] + "..."
		}
		labels[i] = label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = color.RGBA{R: 0xff, G: 0x7f, B: 0x50, A: 0xff}

	p := plot.New()
	p.Title.Text = "Top 10 Affected IPs"
	p.Y.Label.Text = "Alert Count"
	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}

func buildSeverityStackedBar(groups []Group) (*plot.Plot, error) {
	byPattern := make(map[string]map[string]int)
	var order []string
	for _, g := range groups {
		if _, ok := byPattern[g.Pattern]; !ok {
			byPattern[g.Pattern] = make(map[string]int)
			order = append(order, g.Pattern)
		}
		byPattern[g.Pattern][g.Severity] += g.AlertCount
	}
	if len(order) > 8 {
		order = order[:8]
	}

	p := plot.New()
	p.Title.Text = "Severity Distribution by Pattern"
	p.Y.Label.Text = "Alert Count"

	severities := []string{"INFO", "WARNING", "ERROR"}
	var prior *plotter.BarChart
	for _, sev := range severities {
		values := make(plotter.Values, len(order))
		any := false
		for i, pattern := range order {
			v := float64(byPattern[pattern][sev])
			values[i] = v
			if v > 0 {
				any = true
			}
		}
		if !any {
			continue
		}
		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return nil, err
		}
		bars.Color = severityColors[sev]
		if prior != nil {
			bars.StackOn(prior)
		}
		p.Add(bars)
		p.Legend.Add(sev, bars)
		prior = bars
	}

	labels := make([]string, len(order))
	for i, pattern := range order {
		labels[i] = strings.ReplaceAll(pattern, "_", " ")
	}
	p.NominalX(labels...)
	return p, nil
}

func buildConfidenceBoxPlot(groups []Group) (*plot.Plot, error) {
	byPattern := make(map[string]plotter.Values)
	var order []string
	for _, g := range groups {
		if _, ok := byPattern[g.Pattern]; !ok {
			order = append(order, g.Pattern)
		}
		byPattern[g.Pattern] = append(byPattern[g.Pattern], g.AvgProbability*100)
	}
	if len(order) > 8 {
		order = order[:8]
	}

	p := plot.New()
	p.Title.Text = "ML Confidence by Pattern"
	p.Y.Label.Text = "Confidence (%)"

	labels := make([]string, len(order))
	for i, pattern := range order {
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(i), byPattern[pattern])
		if err != nil {
			return nil, err
		}
		box.FillColor = color.RGBA{R: 0xad, G: 0xd8, B: 0xe6, A: 0xff}
		p.Add(box)
		labels[i] = strings.ReplaceAll(pattern, "_", " ")
	}
	p.NominalX(labels...)
	return p, nil
}
