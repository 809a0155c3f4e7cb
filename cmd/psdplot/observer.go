package main

import (
	"time"

	"go.uber.org/zap"

	"github.com/John-Robertt/psdplot/internal/app/run"
	"github.com/John-Robertt/psdplot/internal/config"
	"github.com/John-Robertt/psdplot/internal/domain"
)

var _ run.Observer = (*logObserver)(nil)

// logObserver 把 run 层事件写成结构化日志（stderr），不污染 stdout 的 JSON 输出。
type logObserver struct {
	log *zap.Logger
}

func newLogObserver(log *zap.Logger) *logObserver {
	return &logObserver{log: log}
}

func (o *logObserver) OnStart(eff config.EffectiveConfig) {
	fields := []zap.Field{
		zap.String("mode", string(eff.Mode)),
		zap.String("output", eff.Output),
		zap.Int("series", len(eff.Series)),
		zap.Bool("show", eff.Show),
	}
	if eff.ConfigPath != "" {
		fields = append(fields, zap.String("config", eff.ConfigPath))
	}
	o.log.Info("psdplot run", fields...)
	for i, sc := range eff.Series {
		o.log.Debug("series",
			zap.Int("idx", i),
			zap.String("path", sc.Path),
			zap.String("label", sc.Label),
			zap.Float64("offset_hz", sc.OffsetHz),
		)
	}
}

func (o *logObserver) OnSeriesLoaded(idx, total int, item domain.ItemResult, dur time.Duration) {
	fields := []zap.Field{
		zap.Int("idx", idx),
		zap.Int("total", total),
		zap.String("path", item.Path),
		zap.Duration("dur", dur),
	}
	if item.Status == domain.StatusNotFound {
		// 这是唯一的“可恢复”路径：用占位标签继续。
		o.log.Warn("CSV 不存在，使用占位", append(fields, zap.String("label", item.Label))...)
		return
	}
	fields = append(fields,
		zap.String("label", item.Label),
		zap.Int("points", item.Points),
	)
	if item.SkippedRows > 0 {
		fields = append(fields, zap.Int("skipped_rows", item.SkippedRows))
	}
	o.log.Info("CSV 已加载", fields...)
}

func (o *logObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	zf := make([]zap.Field, 0, len(fields)+1)
	for k, v := range fields {
		zf = append(zf, zap.Any(k, v))
	}
	zf = append(zf, zap.Duration("dur", dur))
	o.log.Info(name, zf...)
}
