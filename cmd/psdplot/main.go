package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// exitError 让子命令决定退出码（2 = 参数错误，1 = 运行失败）。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// app 持有一次 CLI 调用的 I/O 与依赖；测试时全部可替换。
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	verbose bool
	logger  *zap.Logger

	// opener 用系统查看器打开生成的图像（--show）。
	opener func(path string) error
}

func main() {
	a := &app{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		opener: openWithViewer,
	}
	os.Exit(a.execute(os.Args[1:]))
}

func (a *app) execute(args []string) int {
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(a.errOut, "%v\n", ee.err)
		}
		return ee.code
	}
	// cobra 自身的参数/flag 错误。
	fmt.Fprintf(a.errOut, "参数错误：%v\n", err)
	return 2
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "psdplot",
		Short: "读取 PSD CSV 并绘制叠加图或并排子图",
		Long: `psdplot 读取两列 CSV（frequency_hz,psd_db，首行为表头）并绘图。

  overlay：所有曲线画在同一坐标轴，每条按自己的 offset_hz 水平平移
  panel：  每个输入一个子图，共享 Y 轴；缺失文件显示 "No encontrado" 占位标题`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(a.errOut, a.verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "输出 debug 日志")

	root.AddCommand(
		a.newPlotCmd(),
		a.newInteractiveCmd(),
		a.newWelchCmd(),
		a.newSummaryCmd(),
	)
	return root
}

// newLogger 构造写到 w（stderr）的 zap logger：stdout 只留给 JSON 报告。
// 交互终端用 console 编码，否则用 JSON 编码。
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	encCfg := cfg.EncoderConfig
	var enc zapcore.Encoder
	if isTTY(w) {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), cfg.Level)
	return zap.New(core)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
