package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/psdplot/internal/app/run"
	"github.com/John-Robertt/psdplot/internal/config"
)

type plotFlags struct {
	config  string
	mode    string
	output  string
	labels  []string
	offsets []float64
	show    bool
	report  string
}

func (a *app) newPlotCmd() *cobra.Command {
	var f plotFlags
	cmd := &cobra.Command{
		Use:   "plot [csv...]",
		Short: "按配置（或命令行给出的 CSV）绘图",
		Long: `按 psdplot.yaml（或 --config 指定的文件）绘图。

命令行直接给出 CSV 路径时，配置文件可选，且命令行的列表完全替代配置中的 series。
覆盖优先级：命令行 > 配置文件 > 默认值（mode=panel，output=psd.png）。`,
		Example: `  psdplot plot
  psdplot plot --mode overlay Outputs/98_20M.csv Outputs/resultado_psd_db.csv Outputs/108_20.csv
  psdplot plot --mode overlay --offset 0 --offset 2e6 a.csv b.csv -o psd.svg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return &exitError{code: 1, err: fmt.Errorf("读取当前目录失败：%w", err)}
			}

			eff, err := config.LoadEffective(cwd, config.CLIArgs{
				ConfigPath: f.config,
				Paths:      args,
				Labels:     f.labels,
				Offsets:    f.offsets,
				OffsetsSet: cmd.Flags().Changed("offset"),
				Mode:       f.mode,
				ModeSet:    cmd.Flags().Changed("mode"),
				Output:     f.output,
				OutputSet:  cmd.Flags().Changed("output"),
				Show:       f.show,
				ShowSet:    cmd.Flags().Changed("show"),
			})
			if err != nil {
				a.logger.Error("配置无效", zap.String("error_code", config.Code(err)), zap.Error(err))
				return &exitError{code: 1, err: err}
			}
			return a.runAndReport(cmd.Context(), eff, f.report)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "配置文件路径（默认 ./psdplot.yaml）")
	fl.StringVar(&f.mode, "mode", "", "渲染模式：overlay|panel")
	fl.StringVarP(&f.output, "output", "o", "", "输出图像路径（.png/.svg/.pdf/...）")
	fl.StringArrayVar(&f.labels, "label", nil, "按位置对应 CSV 的标签（可重复）")
	fl.Float64SliceVar(&f.offsets, "offset", nil, "按位置对应 CSV 的 overlay 频率偏移 Hz（可重复）")
	fl.BoolVar(&f.show, "show", false, "生成后用系统查看器打开")
	fl.StringVar(&f.report, "report", "", "同时把 RunReport JSON 写到该文件")
	return cmd
}

// runAndReport 是 plot 与 interactive 共用的执行尾部：执行 → 写报告 → 输出 → 可选打开查看器。
func (a *app) runAndReport(ctx context.Context, eff config.EffectiveConfig, reportPath string) error {
	rr, runErr := run.Execute(ctx, eff, newLogObserver(a.logger))

	if reportPath != "" {
		if err := writeReportFile(reportPath, rr); err != nil {
			a.logger.Error("写入 report 失败", zap.String("path", reportPath), zap.Error(err))
			_ = emitReport(a.out, a.errOut, rr)
			return &exitError{code: 1, err: err}
		}
	}
	if err := emitReport(a.out, a.errOut, rr); err != nil {
		a.logger.Error("输出 report 失败", zap.Error(err))
		return &exitError{code: 1, err: err}
	}

	if runErr != nil {
		a.logger.Error("运行失败", zap.String("error_code", run.Code(runErr)), zap.Error(runErr))
		return &exitError{code: 1, err: runErr}
	}

	if eff.Show {
		if err := a.opener(eff.Output); err != nil {
			// 图像已经写出，打不开查看器不算失败。
			a.logger.Warn("无法打开查看器", zap.String("output", eff.Output), zap.Error(err))
		}
	}
	return nil
}
