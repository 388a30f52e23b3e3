// Package chart renders comparison charts with gonum/plot.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"stock_etl/internal/feature/history/domain/entity"
	"stock_etl/internal/feature/history/usecase"
)

var (
	firstColor  = color.RGBA{R: 0xfc, G: 0x91, B: 0x3a, A: 0xff}
	secondColor = color.RGBA{R: 0x8d, G: 0x55, B: 0x24, A: 0xff}
	gridColor   = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x66}
)

// Renderer draws PNG comparison charts.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
	DPI    int
}

var _ usecase.ChartRenderer = (*Renderer)(nil)

// NewRenderer returns a 10x6 inch, 300 DPI renderer.
func NewRenderer() *Renderer {
	return &Renderer{Width: 10 * vg.Inch, Height: 6 * vg.Inch, DPI: 300}
}

// RenderComparison plots both closing price series against date and writes a PNG to path.
func (r *Renderer) RenderComparison(chart usecase.ComparisonChart, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Comparação de %s e %s ao longo do tempo", chart.First.Ticker, chart.Second.Ticker)
	p.X.Label.Text = "Ano"
	p.Y.Label.Text = "Preço de Fechamento (R$)"
	p.X.Tick.Marker = yearTicks{}

	// no frame, no tick marks
	p.X.LineStyle.Width = 0
	p.Y.LineStyle.Width = 0
	p.X.Tick.Length = 0
	p.Y.Tick.Length = 0

	grid := plotter.NewGrid()
	for _, ls := range []*draw.LineStyle{&grid.Vertical, &grid.Horizontal} {
		ls.Color = gridColor
		ls.Width = vg.Points(0.5)
		ls.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	}
	p.Add(grid)

	for _, s := range []struct {
		series usecase.Series
		color  color.Color
	}{
		{chart.First, firstColor},
		{chart.Second, secondColor},
	} {
		line, err := plotter.NewLine(closingPrices(s.series.Records))
		if err != nil {
			return fmt.Errorf("series %s: %w", s.series.Ticker, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.series.Ticker, line)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	c := vgimg.NewWith(vgimg.UseWH(r.Width, r.Height), vgimg.UseDPI(r.DPI))
	p.Draw(draw.New(c))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write png: %w", err)
	}
	return f.Close()
}

// closingPrices maps records to (unix seconds, close) points.
func closingPrices(records []entity.TickerRecord) plotter.XYs {
	pts := make(plotter.XYs, len(records))
	for i, r := range records {
		pts[i].X = float64(r.Date.Unix())
		pts[i].Y = r.Close
	}
	return pts
}

// yearTicks places one labelled tick on every January 1st within the axis range.
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	from := time.Unix(int64(min), 0).UTC()
	year := from.Year()
	if time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Before(from) {
		year++
	}

	var ticks []plot.Tick
	for {
		t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		if float64(t.Unix()) > max {
			break
		}
		ticks = append(ticks, plot.Tick{Value: float64(t.Unix()), Label: strconv.Itoa(year)})
		year++
	}
	if len(ticks) == 0 {
		ticks = append(ticks, plot.Tick{Value: min, Label: strconv.Itoa(from.Year())})
	}
	return ticks
}
