package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/John-Robertt/psdplot/internal/infra/fsx"
	"github.com/John-Robertt/psdplot/internal/psdcsv"
	"github.com/John-Robertt/psdplot/internal/welch"
)

func (a *app) newWelchCmd() *cobra.Command {
	var (
		out        string
		linearOut  string
		force      bool
		maxSamples int
	)
	opts := welch.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "welch <cs8>",
		Short: "由 CS8 IQ 采样计算 PSD 并写出 CSV（frequency_hz,psd_db）",
		Long: `读取交织 int8 I/Q 采样（HackRF 的 CS8 格式），去直流后做 Welch 估计（Hann 窗），
fftshift 后转换为 dB（10*log10(P + 1e-15)），写出 plot 可直接读取的 CSV。
--fs 必须与采集时的采样率一致。`,
		Example: `  psdplot welch Samples/0 -o Outputs/resultado_psd_db.csv
  psdplot welch Samples/0 -o Outputs/resultado_psd_db.csv --linear Outputs/resultado_psd.csv --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return &exitError{code: 2, err: fmt.Errorf("必须用 -o 指定输出 CSV")}
			}

			started := time.Now()
			x, err := welch.LoadCS8(args[0], maxSamples)
			if err != nil {
				a.logger.Error("读取 CS8 失败", zap.String("path", args[0]), zap.Error(err))
				return &exitError{code: 1, err: fmt.Errorf("读取 CS8 失败：%w", err)}
			}
			a.logger.Info("CS8 已加载", zap.String("path", args[0]), zap.Int("samples", len(x)))

			res, err := welch.Spectrum(x, opts)
			if err != nil {
				code := 1
				if !errors.Is(err, welch.ErrTooFewSamples) {
					code = 2
				}
				return &exitError{code: code, err: err}
			}

			if err := psdcsv.WriteFile(out, res.Frequencies, res.PSDdB, force); err != nil {
				return a.writeFailed(out, err)
			}
			if linearOut != "" {
				if err := psdcsv.WriteFile(linearOut, res.Frequencies, res.PSD, force); err != nil {
					return a.writeFailed(linearOut, err)
				}
			}

			a.logger.Info("PSD 已写出",
				zap.String("output", out),
				zap.Int("bins", len(res.Frequencies)),
				zap.Float64("fs", opts.SampleRate),
				zap.Duration("dur", time.Since(started)),
			)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&out, "output", "o", "", "输出 CSV（dB）")
	fl.StringVar(&linearOut, "linear", "", "可选：同时写出线性 PSD 的 CSV")
	fl.BoolVar(&force, "force", false, "覆盖已存在的输出文件")
	fl.IntVar(&maxSamples, "max-samples", 0, "最多读取的采样点数（0 = 全部）")
	fl.Float64Var(&opts.SampleRate, "fs", opts.SampleRate, "采样率 Hz")
	fl.IntVar(&opts.SegmentLength, "segment", opts.SegmentLength, "Welch 分段长度（输出点数）")
	fl.Float64Var(&opts.Overlap, "overlap", opts.Overlap, "分段重叠比例 [0, 1)")
	return cmd
}

func (a *app) writeFailed(path string, err error) error {
	switch {
	case errors.Is(err, os.ErrExist):
		err = fmt.Errorf("%q 已存在（使用 --force 覆盖）", path)
	case fsx.IsPathTypeConflict(err):
		err = fmt.Errorf("%w（-o/--linear 必须指向文件，--force 也不会替换目录）", err)
	case fsx.IsCrossDevice(err):
		err = fmt.Errorf("%w（输出目录可能是挂载点，换一个普通目录再试）", err)
	}
	a.logger.Error("写出 CSV 失败", zap.String("path", path), zap.Error(err))
	return &exitError{code: 1, err: err}
}
