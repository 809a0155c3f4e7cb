package run

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/John-Robertt/psdplot/internal/config"
	"github.com/John-Robertt/psdplot/internal/domain"
	"github.com/John-Robertt/psdplot/internal/psdcsv"
	"github.com/John-Robertt/psdplot/internal/render"
	"github.com/John-Robertt/psdplot/internal/stats"
)

// Error 是运行阶段的致命错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s：%q：%v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s：%v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Execute 执行一次完整流程：逐个加载 → 排版 → 写出图像。
//
// 文件不存在被降级为 NotFound 占位（运行继续）；数值解析失败等错误是致命的，
// 此时返回到目前为止的报告以及 *Error。
func Execute(ctx context.Context, eff config.EffectiveConfig, obs Observer) (domain.RunReport, error) {
	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Mode:      eff.Mode,
		Output:    eff.Output,
		StartedAt: time.Now().UTC(),
	}
	finish := func(err error) (domain.RunReport, error) {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr, err
	}

	loadStarted := time.Now()
	entries, items, err := LoadAll(ctx, eff.Series, obs)
	rr.Items = items
	if err != nil {
		return finish(err)
	}
	if obs != nil {
		var loaded, missing, points int
		for _, it := range items {
			switch it.Status {
			case domain.StatusLoaded:
				loaded++
				points += it.Points
			case domain.StatusNotFound:
				missing++
			}
		}
		obs.OnPhaseDone("load", map[string]any{
			"loaded":    loaded,
			"not_found": missing,
			"points":    points,
		}, time.Since(loadStarted))
	}

	renderStarted := time.Now()
	fig, err := render.Layout(eff.Mode, entries)
	if err != nil {
		return finish(&Error{Code: domain.ErrCodeRenderFailed, Err: err})
	}
	if eff.WidthIn > 0 {
		fig.WidthIn = eff.WidthIn
	}
	if eff.HeightIn > 0 {
		fig.HeightIn = eff.HeightIn
	}
	if err := render.Draw(fig, eff.Output); err != nil {
		return finish(&Error{Code: domain.ErrCodeRenderFailed, Path: eff.Output, Err: err})
	}
	if obs != nil {
		obs.OnPhaseDone("render", map[string]any{
			"output": eff.Output,
			"panels": len(fig.Panels),
		}, time.Since(renderStarted))
	}

	return finish(nil)
}

// LoadAll 顺序加载每个输入（一次一个文件），返回渲染输入与报告条目（顺序与输入一致）。
func LoadAll(ctx context.Context, series []domain.SeriesConfig, obs Observer) ([]render.Entry, []domain.ItemResult, error) {
	entries := make([]render.Entry, 0, len(series))
	items := make([]domain.ItemResult, 0, len(series))

	for i, sc := range series {
		if err := ctx.Err(); err != nil {
			return entries, items, err
		}

		started := time.Now()
		res, st, err := psdcsv.LoadDetailed(sc.Path, sc.Label)
		if err != nil {
			code := domain.ErrCodeIOFailed
			if psdcsv.IsParseError(err) {
				code = domain.ErrCodeParseFailed
			}
			return entries, items, &Error{Code: code, Path: sc.Path, Err: err}
		}

		it := domain.ItemResult{
			Label:       res.Title(),
			Path:        sc.Path,
			SkippedRows: st.SkippedRows,
			OffsetHz:    sc.OffsetHz,
		}
		switch r := res.(type) {
		case domain.Series:
			it.Status = domain.StatusLoaded
			it.Points = r.Len()
			it.Stats = stats.Summarize(r)
		case domain.NotFound:
			it.Status = domain.StatusNotFound
		}

		entries = append(entries, render.Entry{Result: res, OffsetHz: sc.OffsetHz})
		items = append(items, it)
		if obs != nil {
			obs.OnSeriesLoaded(i+1, len(series), it, time.Since(started))
		}
	}
	return entries, items, nil
}
