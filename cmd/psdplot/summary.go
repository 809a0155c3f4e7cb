package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/psdplot/internal/app/run"
	"github.com/John-Robertt/psdplot/internal/config"
	"github.com/John-Robertt/psdplot/internal/domain"
	"github.com/John-Robertt/psdplot/internal/scan"
)

func (a *app) newSummaryCmd() *cobra.Command {
	var (
		labels  []string
		exclude []string
	)
	cmd := &cobra.Command{
		Use:   "summary <csv|dir>...",
		Short: "打印每个 CSV 的点数、频率范围、峰值与平均电平",
		Long: `加载规则与 plot 相同（缺失文件显示为 not_found，非数字单元格是致命错误）。
参数是目录时递归展开为其中的 .csv（按相对路径排序），--label 按展开后的顺序对应。
stdout 是终端时输出表格，否则输出 JSON 数组。`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return &exitError{code: 1, err: fmt.Errorf("读取当前目录失败：%w", err)}
			}
			paths, err := expandInputs(cwd, args, exclude)
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			if len(labels) > len(paths) {
				return &exitError{code: 2, err: fmt.Errorf("--label 数量（%d）多于输入文件数量（%d）", len(labels), len(paths))}
			}

			series := make([]domain.SeriesConfig, 0, len(paths))
			for i, p := range paths {
				label := config.DefaultLabel(p)
				if i < len(labels) && labels[i] != "" {
					label = labels[i]
				}
				series = append(series, domain.SeriesConfig{Path: p, Label: label})
			}

			_, items, err := run.LoadAll(cmd.Context(), series, newLogObserver(a.logger))
			if err != nil {
				a.logger.Error("加载失败", zap.String("error_code", run.Code(err)), zap.Error(err))
				return &exitError{code: 1, err: err}
			}

			if isTTY(a.out) {
				fmt.Fprintln(a.out, summaryTable(items))
				return nil
			}
			if err := writeSummaryJSON(a.out, items); err != nil {
				a.logger.Error("输出摘要失败", zap.Error(err))
				return &exitError{code: 1, err: err}
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&labels, "label", nil, "按位置对应 CSV 的标签（可重复）")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "展开目录时跳过的子目录（相对该目录）")
	return cmd
}

// expandInputs 把参数解析成绝对路径；目录展开为其中的 CSV，不存在的路径原样保留（加载时记为 not_found）。
func expandInputs(cwd string, args, exclude []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, p := range args {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cwd, p)
		}
		p = filepath.Clean(p)
		fi, err := os.Stat(p)
		if err != nil || !fi.IsDir() {
			out = append(out, p)
			continue
		}
		found, err := scan.CSVFiles(p, exclude)
		if err != nil {
			return nil, fmt.Errorf("扫描目录 %q 失败：%w", p, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("目录 %q 下没有 .csv 文件", p)
		}
		out = append(out, found...)
	}
	return out, nil
}

func summaryTable(items []domain.ItemResult) string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		if it.Stats == nil {
			rows = append(rows, []string{oneLine(it.Label), it.Status, strconv.Itoa(it.Points), "-", "-", "-", "-"})
			continue
		}
		st := it.Stats
		rows = append(rows, []string{
			oneLine(it.Label),
			it.Status,
			strconv.Itoa(it.Points),
			fmt.Sprintf("%.6g … %.6g", st.FreqMinHz, st.FreqMaxHz),
			fmt.Sprintf("%.6g", st.PeakHz),
			fmt.Sprintf("%.2f", st.PeakDB),
			fmt.Sprintf("%.2f", st.MeanDB),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("label", "status", "points", "freq range (Hz)", "peak (Hz)", "peak (dB)", "mean (dB)").
		Rows(rows...).
		Render()
}

func writeSummaryJSON(w io.Writer, items []domain.ItemResult) error {
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("编码摘要失败：%w", err)
	}
	_, err = w.Write(append(b, '\n'))
	return err
}
