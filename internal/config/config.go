package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/psdplot/internal/domain"
)

const (
	// ErrCodeNotFound 表示需要配置文件但找不到（无参运行或 --config 指向不存在的文件）。
	ErrCodeNotFound = domain.ErrCodeConfigNotFound
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = domain.ErrCodeConfigInvalid
	// ErrCodeMissingSeries 表示最终没有任何输入 series。
	ErrCodeMissingSeries = domain.ErrCodeConfigMissingSeries
)

const (
	// FileName 是在 cwd 下自动发现的配置文件名。
	FileName = "psdplot.yaml"
	// DefaultMode 沿用历史脚本的默认值（superponer = False）。
	DefaultMode = domain.ModePanel
	// DefaultOutput 是未指定输出时的文件名（相对 cwd）。
	DefaultOutput = "psd.png"
	// DefaultLabelPrefix 用于 CLI 直接给出路径、未给 label 时生成标签。
	DefaultLabelPrefix = "PSD "
)

// OverlayStepHz 是交互模式下相邻曲线的默认偏移。
const OverlayStepHz = 5e6

// LegacyOffsetsHz 是历史脚本中写死的 overlay 偏移，只对恰好 3 条 series 有定义。
var LegacyOffsetsHz = []float64{0.0, OverlayStepHz, 2 * OverlayStepHz}

// CLIArgs 保留“是否显式指定”的信息，保证覆盖优先级可实现（例如 --mode 覆盖配置文件）。
type CLIArgs struct {
	ConfigPath string

	// Paths 非空时完全替代配置文件中的 series 列表。
	Paths  []string
	Labels []string // 与 Paths 按位置对应；可少于 Paths

	Offsets    []float64
	OffsetsSet bool

	Mode    string
	ModeSet bool

	Output    string
	OutputSet bool

	Show    bool
	ShowSet bool
}

// FileConfig 对应 psdplot.yaml 的解析结构。
type FileConfig struct {
	Mode     string        `yaml:"mode"`
	Output   string        `yaml:"output"`
	Show     *bool         `yaml:"show"`
	WidthIn  float64       `yaml:"width_in"`
	HeightIn float64       `yaml:"height_in"`
	Series   []SeriesEntry `yaml:"series"`
}

type SeriesEntry struct {
	Path     string   `yaml:"path"`
	Label    string   `yaml:"label"`
	OffsetHz *float64 `yaml:"offset_hz"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	ConfigPath string // 实际读取的配置文件；未读取则为空

	Mode   domain.Mode
	Output string // clean + absolute
	Show   bool

	// 0 表示使用渲染器按模式给出的默认尺寸。
	WidthIn  float64
	HeightIn float64

	Series []domain.SeriesConfig
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingSeries:
		if e.Path == "" {
			return fmt.Sprintf("%s：没有任何输入 series", e.Code)
		}
		return fmt.Sprintf("%s：配置文件 %q 没有任何 series", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
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

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) --config 给出：必须存在；其中的相对路径以配置文件所在目录为基准
// 2) CLI 直接给出 CSV 路径：<cwd>/psdplot.yaml 可选（只贡献 mode/output 等）
// 3) 都没有：必须读取 <cwd>/psdplot.yaml，且其中必须有 series
//
// 覆盖优先级（固定）：CLI > 配置文件 > 默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	var (
		cfgPath string
		fc      FileConfig
		exists  bool
	)

	switch {
	case strings.TrimSpace(cli.ConfigPath) != "":
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	case len(cli.Paths) > 0:
		cfgPath = filepath.Join(cwdAbs, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
	default:
		cfgPath = filepath.Join(cwdAbs, FileName)
		fc, exists, err = readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		if !exists {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
	}

	if !exists {
		cfgPath = ""
	}
	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// 配置文件中的相对路径以配置文件所在目录为基准。
	fileBase := cwdAbs
	if cfgPath != "" {
		fileBase = filepath.Dir(cfgPath)
	}
	invalid := func(err error) error {
		p := cfgPath
		if p == "" {
			p = "<cli>"
		}
		return &Error{Code: ErrCodeInvalid, Path: p, Err: err}
	}

	// mode：CLI > config > 默认
	modeStr := string(DefaultMode)
	if cli.ModeSet {
		modeStr = cli.Mode
	} else if strings.TrimSpace(fc.Mode) != "" {
		modeStr = strings.TrimSpace(fc.Mode)
	}
	mode, err := domain.ParseMode(modeStr)
	if err != nil {
		return EffectiveConfig{}, invalid(err)
	}

	// output：CLI（相对 cwd）> config（相对配置目录）> 默认（相对 cwd）
	output := filepath.Join(cwdAbs, DefaultOutput)
	if cli.OutputSet {
		if strings.TrimSpace(cli.Output) == "" {
			return EffectiveConfig{}, invalid(fmt.Errorf("--output 不能为空"))
		}
		output = absCleanFrom(cwdAbs, cli.Output)
	} else if strings.TrimSpace(fc.Output) != "" {
		output = absCleanFrom(fileBase, fc.Output)
	}

	show := false
	if cli.ShowSet {
		show = cli.Show
	} else if fc.Show != nil {
		show = *fc.Show
	}

	if !nonNegativeFinite(fc.WidthIn) || !nonNegativeFinite(fc.HeightIn) {
		return EffectiveConfig{}, invalid(fmt.Errorf("width_in/height_in 必须是非负有限数"))
	}
	if len(cli.Paths) == 0 && len(cli.Labels) > 0 {
		return EffectiveConfig{}, invalid(fmt.Errorf("--label 只能与命令行给出的 CSV 路径一起使用（series 来自配置文件时请在文件中写 label）"))
	}

	var (
		series   []domain.SeriesConfig
		explicit []*float64
	)
	if len(cli.Paths) > 0 {
		if len(cli.Labels) > len(cli.Paths) {
			return EffectiveConfig{}, invalid(fmt.Errorf("--label 数量（%d）多于输入文件数量（%d）", len(cli.Labels), len(cli.Paths)))
		}
		for i, p := range cli.Paths {
			label := ""
			if i < len(cli.Labels) {
				label = cli.Labels[i]
			}
			sc, e := seriesConfig(cwdAbs, p, label)
			if e != nil {
				return EffectiveConfig{}, invalid(e)
			}
			series = append(series, sc)
			explicit = append(explicit, nil)
		}
	} else {
		for i, se := range fc.Series {
			sc, e := seriesConfig(fileBase, se.Path, se.Label)
			if e != nil {
				return EffectiveConfig{}, invalid(fmt.Errorf("series[%d]：%w", i, e))
			}
			series = append(series, sc)
			explicit = append(explicit, se.OffsetHz)
		}
	}
	if len(series) == 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingSeries, Path: cfgPath}
	}

	if cli.OffsetsSet {
		if len(cli.Offsets) != len(series) {
			return EffectiveConfig{}, invalid(fmt.Errorf("--offset 数量（%d）必须与 series 数量（%d）一致", len(cli.Offsets), len(series)))
		}
		for i := range cli.Offsets {
			v := cli.Offsets[i]
			explicit[i] = &v
		}
	}

	offsets, err := ResolveOffsets(mode, explicit)
	if err != nil {
		return EffectiveConfig{}, invalid(err)
	}
	for i := range series {
		if math.IsNaN(offsets[i]) || math.IsInf(offsets[i], 0) {
			return EffectiveConfig{}, invalid(fmt.Errorf("series[%d]：offset_hz 必须是有限数，实际 %v", i, offsets[i]))
		}
		series[i].OffsetHz = offsets[i]
	}

	return EffectiveConfig{
		ConfigPath: cfgPath,
		Mode:       mode,
		Output:     output,
		Show:       show,
		WidthIn:    fc.WidthIn,
		HeightIn:   fc.HeightIn,
		Series:     series,
	}, nil
}

// ResolveOffsets 把“可能未指定”的逐条偏移解析为最终偏移。
//
// 规则：
// - 至少一条显式指定：未指定的取 0
// - 全部未指定且恰好 3 条：使用 LegacyOffsetsHz
// - 全部未指定且不是 3 条：overlay 模式报错（不猜测）；panel 模式不使用偏移，取 0
func ResolveOffsets(mode domain.Mode, explicit []*float64) ([]float64, error) {
	out := make([]float64, len(explicit))

	anySet := false
	for _, p := range explicit {
		if p != nil {
			anySet = true
			break
		}
	}

	switch {
	case anySet:
		for i, p := range explicit {
			if p != nil {
				out[i] = *p
			}
		}
	case len(explicit) == len(LegacyOffsetsHz):
		copy(out, LegacyOffsetsHz)
	case mode == domain.ModeOverlay:
		return nil, fmt.Errorf("overlay 模式下 %d 条 series 都未指定 offset_hz（默认偏移只对 3 条 series 有定义）", len(explicit))
	}
	return out, nil
}

func seriesConfig(base, path, label string) (domain.SeriesConfig, error) {
	if strings.TrimSpace(path) == "" {
		return domain.SeriesConfig{}, fmt.Errorf("path 不能为空")
	}
	abs := absCleanFrom(base, path)
	label = strings.TrimSpace(label)
	if label == "" {
		label = DefaultLabel(abs)
	}
	return domain.SeriesConfig{Path: abs, Label: label}, nil
}

// DefaultLabel 由文件名生成标签：Outputs/98_20M.csv -> "PSD 98_20M"。
func DefaultLabel(path string) string {
	base := filepath.Base(path)
	return DefaultLabelPrefix + strings.TrimSuffix(base, filepath.Ext(base))
}

func nonNegativeFinite(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 YAML 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
