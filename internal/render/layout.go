// Package render 把加载结果排版成 Figure（纯函数，可测试），再用 gonum/plot 画出来。
package render

import (
	"fmt"

	"github.com/John-Robertt/psdplot/internal/domain"
	"github.com/John-Robertt/psdplot/internal/stats"
)

const (
	XLabel       = "Frecuencia (Hz)"
	YLabel       = "PSD (dB)"
	OverlayTitle = "PSD superpuestas (desfasadas)"
)

// 默认尺寸（英寸），沿用历史脚本的 figsize。
const (
	OverlayWidthIn  = 8.0
	OverlayHeightIn = 5.0
	PanelWidthIn    = 15.0
	PanelHeightIn   = 5.0
)

// Entry 是一条输入：加载结果 + 该条自己的 overlay 偏移。
type Entry struct {
	Result   domain.LoadResult
	OffsetHz float64
}

// Line 是一条已经完成偏移的折线。
type Line struct {
	Label string
	X     []float64
	Y     []float64
}

// Panel 对应一个坐标轴（overlay 只有一个；panel 每条输入一个）。
type Panel struct {
	Title  string
	XLabel string
	YLabel string // 为空表示不画 Y 轴标签
	Grid   bool
	Legend bool
	Lines  []Line
}

// Figure 是与绘图库无关的排版结果。
type Figure struct {
	Mode     domain.Mode
	WidthIn  float64
	HeightIn float64
	Panels   []Panel

	// SharedY=true 时所有面板使用 [YMin, YMax]。
	SharedY bool
	YMin    float64
	YMax    float64
}

// Layout 按模式排版。
//
// overlay：跳过 NotFound，每条 series 的频率加上自己的 OffsetHz，幅度不变；单面板、带图例。
// panel：每条输入一个面板（不论是否加载成功），标题即结果标签；只有最左侧面板有 Y 轴标签；共享 Y 轴。
func Layout(mode domain.Mode, entries []Entry) (Figure, error) {
	switch mode {
	case domain.ModeOverlay:
		return layoutOverlay(entries)
	case domain.ModePanel:
		return layoutPanel(entries)
	default:
		return Figure{}, fmt.Errorf("未知渲染模式：%q", mode)
	}
}

func layoutOverlay(entries []Entry) (Figure, error) {
	p := Panel{
		Title:  OverlayTitle,
		XLabel: XLabel,
		YLabel: YLabel,
		Grid:   true,
		Legend: true,
	}
	for _, e := range entries {
		s, ok := e.Result.(domain.Series)
		if !ok {
			continue
		}
		if err := s.Validate(); err != nil {
			return Figure{}, err
		}
		shifted := s.Shifted(e.OffsetHz)
		p.Lines = append(p.Lines, Line{Label: s.Label, X: shifted.Frequencies, Y: shifted.AmplitudesDB})
	}
	return Figure{
		Mode:     domain.ModeOverlay,
		WidthIn:  OverlayWidthIn,
		HeightIn: OverlayHeightIn,
		Panels:   []Panel{p},
	}, nil
}

func layoutPanel(entries []Entry) (Figure, error) {
	fig := Figure{
		Mode:     domain.ModePanel,
		WidthIn:  PanelWidthIn,
		HeightIn: PanelHeightIn,
		Panels:   make([]Panel, 0, len(entries)),
	}

	loaded := make([]domain.Series, 0, len(entries))
	for i, e := range entries {
		if e.Result == nil {
			return Figure{}, fmt.Errorf("第 %d 条输入没有加载结果", i)
		}
		p := Panel{
			Title:  e.Result.Title(),
			XLabel: XLabel,
			Grid:   true,
		}
		if i == 0 {
			p.YLabel = YLabel
		}
		if s, ok := e.Result.(domain.Series); ok {
			if err := s.Validate(); err != nil {
				return Figure{}, err
			}
			p.Lines = []Line{{
				Label: s.Label,
				X:     append([]float64(nil), s.Frequencies...),
				Y:     append([]float64(nil), s.AmplitudesDB...),
			}}
			loaded = append(loaded, s)
		}
		fig.Panels = append(fig.Panels, p)
	}

	if lo, hi, ok := stats.AmplitudeRange(loaded); ok {
		fig.SharedY, fig.YMin, fig.YMax = true, lo, hi
	}
	return fig, nil
}
