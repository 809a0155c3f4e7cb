package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/John-Robertt/psdplot/internal/infra/fsx"
)

// Formats 是支持的输出格式（由输出文件扩展名决定）。
var Formats = []string{"png", "svg", "pdf", "jpg", "jpeg", "tif", "tiff", "eps"}

// FormatFromPath 由扩展名推断输出格式。
func FormatFromPath(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, f := range Formats {
		if ext == f {
			return ext, nil
		}
	}
	if ext == "" {
		return "", fmt.Errorf("输出路径 %q 缺少扩展名（支持 %s）", path, strings.Join(Formats, "/"))
	}
	return "", fmt.Errorf("不支持的输出格式 %q（支持 %s）", ext, strings.Join(Formats, "/"))
}

// Plots 把 Figure 转成 gonum/plot 的 Plot，一个面板一个。
func Plots(fig Figure) ([]*plot.Plot, error) {
	plots := make([]*plot.Plot, 0, len(fig.Panels))
	for _, pn := range fig.Panels {
		p := plot.New()
		p.Title.Text = pn.Title
		p.X.Label.Text = pn.XLabel
		p.Y.Label.Text = pn.YLabel
		if pn.Grid {
			p.Add(plotter.NewGrid())
		}

		for i, ln := range pn.Lines {
			legendAdded := false
			for _, xys := range finiteRuns(ln.X, ln.Y) {
				l, err := plotter.NewLine(xys)
				if err != nil {
					return nil, fmt.Errorf("series %q：%w", ln.Label, err)
				}
				l.Color = plotutil.Color(i)
				p.Add(l)
				if pn.Legend && !legendAdded {
					p.Legend.Add(ln.Label, l)
					legendAdded = true
				}
			}
		}
		if pn.Legend {
			p.Legend.Top = true
		}

		if fig.SharedY {
			p.Y.Min, p.Y.Max = fig.YMin, fig.YMax
		}
		plots = append(plots, p)
	}
	return plots, nil
}

// finiteRuns 把折线按非有限点（±Inf、NaN）切成若干段：这些点不画，两侧不相连。
// 例如没有加 epsilon 的 10*log10(0) 会得到 -inf。
func finiteRuns(x, y []float64) []plotter.XYs {
	var (
		runs []plotter.XYs
		cur  plotter.XYs
	)
	for i := range x {
		if !isFinite(x[i]) || !isFinite(y[i]) {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: x[i], Y: y[i]})
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Encode 把 Figure 按 format 编码写入 w。
func Encode(w io.Writer, fig Figure, format string) error {
	c, err := canvas(fig, format)
	if err != nil {
		return err
	}
	_, err = c.WriteTo(w)
	return err
}

// Draw 把 Figure 写到 path（格式由扩展名决定，原子替换）。
func Draw(fig Figure, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, fig, format); err != nil {
		return err
	}
	path = filepath.Clean(path)
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), buf.Bytes())
}

func canvas(fig Figure, format string) (vg.CanvasWriterTo, error) {
	if len(fig.Panels) == 0 {
		return nil, fmt.Errorf("figure 没有任何面板")
	}
	plots, err := Plots(fig)
	if err != nil {
		return nil, err
	}

	w := vg.Length(fig.WidthIn) * vg.Inch
	h := vg.Length(fig.HeightIn) * vg.Inch
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return nil, err
	}
	dc := draw.New(c)

	if len(plots) == 1 {
		plots[0].Draw(dc)
		return c, nil
	}

	// panel：1 行 N 列，对齐各子图的绘图区（共享 Y 时刻度一致，视觉上等价于 sharey）。
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Points(4),
		PadBottom: vg.Points(4),
		PadLeft:   vg.Points(4),
		PadRight:  vg.Points(8),
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for j := range plots {
		plots[j].Draw(canvases[0][j])
	}
	return c, nil
}
