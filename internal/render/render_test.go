package render

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/psdplot/internal/domain"
	"github.com/John-Robertt/psdplot/internal/psdcsv"
)

func threeEntries() []Entry {
	a := domain.Series{Frequencies: []float64{1e6, 2e6}, AmplitudesDB: []float64{-20, -25}, Label: "PSD 98_20M"}
	c := domain.Series{Frequencies: []float64{1e6, 2e6, 3e6}, AmplitudesDB: []float64{-40, -10, -30}, Label: "PSD 108_20M"}
	return []Entry{
		{Result: a, OffsetHz: 0},
		{Result: domain.NewNotFound("PSD 20M", "Outputs/resultado_psd_db.csv"), OffsetHz: 5e6},
		{Result: c, OffsetHz: 10e6},
	}
}

func TestLayout_Overlay_OffsetsAndSkipsNotFound(t *testing.T) {
	entries := threeEntries()

	fig, err := Layout(domain.ModeOverlay, entries)
	require.NoError(t, err)
	require.Len(t, fig.Panels, 1)

	p := fig.Panels[0]
	assert.True(t, p.Legend)
	assert.Equal(t, YLabel, p.YLabel)
	require.Len(t, p.Lines, 2, "NotFound 不应产生折线")

	// 每个点：x = 原频率 + 本条 offset；y 不变。
	want := []Entry{entries[0], entries[2]}
	for i, ln := range p.Lines {
		s := want[i].Result.(domain.Series)
		assert.Equal(t, s.Label, ln.Label)
		for j := range s.Frequencies {
			assert.Equal(t, s.Frequencies[j]+want[i].OffsetHz, ln.X[j])
			assert.Equal(t, s.AmplitudesDB[j], ln.Y[j])
		}
	}
	// 原数据不应被修改。
	assert.Equal(t, 1e6, entries[2].Result.(domain.Series).Frequencies[0])
}

func TestLayout_Panel_OnePanelPerEntry(t *testing.T) {
	fig, err := Layout(domain.ModePanel, threeEntries())
	require.NoError(t, err)
	require.Len(t, fig.Panels, 3)

	assert.Equal(t, "PSD 98_20M", fig.Panels[0].Title)
	assert.Equal(t, "No encontrado\nPSD 20M", fig.Panels[1].Title)
	assert.Empty(t, fig.Panels[1].Lines, "NotFound 面板应为空")
	assert.Len(t, fig.Panels[2].Lines, 1)

	// 只有最左侧有 Y 轴标签；每个面板都有 X 轴标签与网格。
	assert.Equal(t, YLabel, fig.Panels[0].YLabel)
	for i, p := range fig.Panels {
		assert.Equal(t, XLabel, p.XLabel, "panel %d", i)
		assert.True(t, p.Grid, "panel %d", i)
		if i > 0 {
			assert.Empty(t, p.YLabel, "panel %d", i)
		}
	}

	// panel 模式不加偏移。
	assert.Equal(t, []float64{1e6, 2e6, 3e6}, fig.Panels[2].Lines[0].X)

	require.True(t, fig.SharedY)
	assert.Equal(t, -40.0, fig.YMin)
	assert.Equal(t, -10.0, fig.YMax)
}

func TestLayout_Panel_AllMissing(t *testing.T) {
	fig, err := Layout(domain.ModePanel, []Entry{
		{Result: domain.NewNotFound("a", "a.csv")},
		{Result: domain.NewNotFound("b", "b.csv")},
	})
	require.NoError(t, err)
	assert.Len(t, fig.Panels, 2)
	assert.False(t, fig.SharedY)
}

func TestLayout_UnknownMode(t *testing.T) {
	_, err := Layout(domain.Mode("grid"), threeEntries())
	require.Error(t, err)
}

func svgTexts(t *testing.T, b []byte) string {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	require.NoError(t, err)
	var parts []string
	doc.Find("text").Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})
	return strings.Join(parts, "|")
}

func TestEncode_PanelSVG_HasTitles(t *testing.T) {
	fig, err := Layout(domain.ModePanel, threeEntries())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, fig, "svg"))

	texts := svgTexts(t, buf.Bytes())
	assert.Contains(t, texts, "PSD 98_20M")
	assert.Contains(t, texts, "No encontrado")
	assert.Contains(t, texts, "PSD 20M")
	assert.Contains(t, texts, "PSD 108_20M")
	assert.Equal(t, 3, strings.Count(texts, XLabel), "每个面板各自一个 X 轴标签")
	assert.Equal(t, 1, strings.Count(texts, YLabel), "只有最左侧面板有 Y 轴标签")
}

func TestEncode_OverlaySVG_HasLegend(t *testing.T) {
	fig, err := Layout(domain.ModeOverlay, threeEntries())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, fig, "svg"))

	texts := svgTexts(t, buf.Bytes())
	assert.Contains(t, texts, OverlayTitle)
	assert.Contains(t, texts, "PSD 98_20M")
	assert.Contains(t, texts, "PSD 108_20M")
	assert.NotContains(t, texts, "No encontrado")
}

func TestDraw_WritesPNG(t *testing.T) {
	fig, err := Layout(domain.ModePanel, threeEntries())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "figs", "psd.png")
	require.NoError(t, Draw(fig, out))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")), "不是 PNG 文件")
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("out/PSD.SVG")
	require.NoError(t, err)
	assert.Equal(t, "svg", f)

	_, err = FormatFromPath("psd")
	require.Error(t, err)
	_, err = FormatFromPath("psd.bmp")
	require.Error(t, err)
}

func TestFiniteRuns_SplitsOnInfAndNaN(t *testing.T) {
	inf := math.Inf(-1)
	runs := finiteRuns(
		[]float64{1, 2, 3, 4, 5, 6},
		[]float64{-10, inf, -12, -13, math.NaN(), -15},
	)
	require.Len(t, runs, 3)
	assert.Len(t, runs[0], 1)
	assert.Len(t, runs[1], 2)
	assert.Equal(t, 3.0, runs[1][0].X)
	assert.Equal(t, 6.0, runs[2][0].X)

	assert.Empty(t, finiteRuns([]float64{1}, []float64{inf}))
}

func TestDraw_NonFiniteAmplitudesFromCSV(t *testing.T) {
	// 10*log10(0) 没有加 epsilon 时，CSV 里会出现 -inf；nan 同理。
	s, _, err := psdcsv.Read(strings.NewReader(`freq,psd
1000000,-inf
2000000,-22.1
3000000,nan
4000000,-25
`), "a.csv", "PSD a")
	require.NoError(t, err)
	require.Equal(t, 4, s.Len())

	for _, mode := range []domain.Mode{domain.ModePanel, domain.ModeOverlay} {
		fig, err := Layout(mode, []Entry{{Result: s}})
		require.NoError(t, err)
		if mode == domain.ModePanel {
			require.True(t, fig.SharedY)
			assert.Equal(t, -25.0, fig.YMin, "共享 Y 轴只看有限值")
			assert.Equal(t, -22.1, fig.YMax)
		}

		out := filepath.Join(t.TempDir(), "psd.svg")
		require.NoError(t, Draw(fig, out), "mode=%s", mode)
		b, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, svgTexts(t, b), "PSD a")
	}
}

func TestDraw_AllNonFiniteSeries(t *testing.T) {
	s := domain.Series{Frequencies: []float64{1, 2}, AmplitudesDB: []float64{math.Inf(-1), math.NaN()}, Label: "PSD z"}
	fig, err := Layout(domain.ModePanel, []Entry{{Result: s}})
	require.NoError(t, err)
	assert.False(t, fig.SharedY)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, fig, "svg"))
}
