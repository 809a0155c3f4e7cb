package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/psdplot/internal/config"
	"github.com/John-Robertt/psdplot/internal/domain"
)

const (
	selectorOverlay = "1"
	selectorPanel   = "3"
	panelSlots      = 3
)

func (a *app) newInteractiveCmd() *cobra.Command {
	var (
		output string
		show   bool
		stepHz float64
		report string
	)
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "交互式选择模式并输入 CSV 路径",
		Long: `先输入模式：1 = 所有曲线叠加在一张图（按 --step 逐条平移），3 = 三个并排子图；
然后逐行输入 CSV 路径（模式 1 以空行结束）。其他输入只打印警告，不绘图。
提示信息写到 stderr。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return &exitError{code: 1, err: fmt.Errorf("读取当前目录失败：%w", err)}
			}

			sc := bufio.NewScanner(a.in)
			fmt.Fprint(a.errOut, "模式（1 = 单图叠加，3 = 三个子图）：")
			sel, ok := readLine(sc)
			if !ok {
				return &exitError{code: 2, err: fmt.Errorf("未输入模式")}
			}

			var (
				mode  domain.Mode
				paths []string
			)
			switch sel {
			case selectorOverlay:
				mode = domain.ModeOverlay
				paths = a.promptOverlayPaths(sc)
			case selectorPanel:
				mode = domain.ModePanel
				paths, ok = a.promptPanelPaths(sc)
				if !ok {
					return &exitError{code: 2, err: fmt.Errorf("输入提前结束：需要 %d 个路径", panelSlots)}
				}
			default:
				fmt.Fprintf(a.errOut, "⚠ 无效选项 %q：只能输入 %s 或 %s，不绘图\n", sel, selectorOverlay, selectorPanel)
				a.logger.Warn("无效的模式选项", zap.String("selector", sel))
				return nil
			}
			if len(paths) == 0 {
				fmt.Fprintln(a.errOut, "⚠ 没有输入任何路径，不绘图")
				return nil
			}

			eff := interactiveConfig(cwd, mode, paths, stepHz, output, show)
			return a.runAndReport(cmd.Context(), eff, report)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&output, "output", "o", config.DefaultOutput, "输出图像路径")
	fl.BoolVar(&show, "show", true, "生成后用系统查看器打开")
	fl.Float64Var(&stepHz, "step", config.OverlayStepHz, "模式 1 下相邻曲线的频率偏移 Hz")
	fl.StringVar(&report, "report", "", "同时把 RunReport JSON 写到该文件")
	return cmd
}

func (a *app) promptOverlayPaths(sc *bufio.Scanner) []string {
	var paths []string
	for {
		fmt.Fprintf(a.errOut, "CSV %d 路径（空行结束）：", len(paths)+1)
		line, ok := readLine(sc)
		if !ok || line == "" {
			return paths
		}
		paths = append(paths, line)
	}
}

func (a *app) promptPanelPaths(sc *bufio.Scanner) ([]string, bool) {
	paths := make([]string, 0, panelSlots)
	for len(paths) < panelSlots {
		fmt.Fprintf(a.errOut, "CSV %d/%d 路径：", len(paths)+1, panelSlots)
		line, ok := readLine(sc)
		if !ok {
			return paths, false
		}
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths, true
}

// interactiveConfig 构造与 plot 命令同形的 EffectiveConfig：标签由文件名生成，overlay 偏移为 i*step。
func interactiveConfig(cwd string, mode domain.Mode, paths []string, stepHz float64, output string, show bool) config.EffectiveConfig {
	series := make([]domain.SeriesConfig, 0, len(paths))
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		p = filepath.Clean(p)
		sc := domain.SeriesConfig{Path: p, Label: config.DefaultLabel(p)}
		if mode == domain.ModeOverlay {
			sc.OffsetHz = float64(i) * stepHz
		}
		series = append(series, sc)
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(cwd, output)
	}
	return config.EffectiveConfig{
		Mode:   mode,
		Output: filepath.Clean(output),
		Show:   show,
		Series: series,
	}
}

func readLine(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(sc.Text()), true
}
