package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/psdplot/internal/domain"
	"github.com/John-Robertt/psdplot/internal/infra/fsx"
)

// emitReport 输出 RunReport。
//
// stdout 是 TTY：人类可读摘要；否则 stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
// 编码失败时 stdout 不写任何内容，错误返回给调用方。
func emitReport(out, errOut io.Writer, rr domain.RunReport) error {
	if isTTY(out) {
		fmt.Fprintf(out, "完成：loaded=%d not_found=%d points=%d\n",
			rr.Summary.Loaded, rr.Summary.NotFound, rr.Summary.Points,
		)
		for _, it := range rr.Items {
			if it.Status == domain.StatusNotFound {
				fmt.Fprintf(errOut, "%s: 未找到（%s）\n", it.Path, oneLine(it.Label))
			}
		}
		if rr.Output != "" {
			fmt.Fprintf(out, "output: %s\n", rr.Output)
		}
		return nil
	}

	// 先整体编码再写出，保证失败时 stdout 不残留半个 JSON。
	b, err := json.Marshal(rr)
	if err != nil {
		return fmt.Errorf("编码 RunReport 失败：%w", err)
	}
	if _, err := out.Write(append(b, '\n')); err != nil {
		return err
	}
	fmt.Fprintf(errOut, "完成：loaded=%d not_found=%d points=%d\n",
		rr.Summary.Loaded, rr.Summary.NotFound, rr.Summary.Points,
	)
	return nil
}

func writeReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	path = filepath.Clean(path)
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), b)
}

// oneLine 把多行标签（例如 "No encontrado\nPSD 20M"）压成一行用于终端输出。
func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
