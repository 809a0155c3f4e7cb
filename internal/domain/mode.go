package domain

import "fmt"

// Mode 是渲染模式：overlay（单图叠加）或 panel（并排子图）。
type Mode string

const (
	ModeOverlay Mode = "overlay"
	ModePanel   Mode = "panel"
)

// ParseMode 解析配置/CLI 中的模式字符串。
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeOverlay, ModePanel:
		return Mode(s), nil
	case "":
		return "", fmt.Errorf("mode 不能为空")
	default:
		return "", fmt.Errorf("mode 只能是 overlay 或 panel，实际是 %q", s)
	}
}

// SeriesConfig 是单条输入的显式配置：路径、标签、overlay 模式下的频率偏移。
type SeriesConfig struct {
	Path     string
	Label    string
	OffsetHz float64
}
