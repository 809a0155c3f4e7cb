// Package psdcsv 读写两列 PSD CSV（frequency_hz,psd_db）。
//
// 读取规则（固定）：
// - 第一行视为表头，无条件丢弃
// - 列数 < 2 的行静默跳过；多余列忽略
// - 第 0/1 列按 float64 解析；解析失败是致命错误（整次运行终止）
// - 文件不存在不是错误：返回 domain.NotFound 占位
package psdcsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/John-Robertt/psdplot/internal/domain"
	"github.com/John-Robertt/psdplot/internal/infra/fsx"
)

// Header 是 Write 输出的表头。
var Header = []string{"frequency_hz", "psd_db"}

// ParseError 表示某个单元格不是合法数字。
type ParseError struct {
	Path   string
	Line   int
	Column int
	Value  string
	Err    error // 来自 strconv 的原始诊断
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d：第 %d 列无法解析为数字 %q：%v", e.Path, e.Line, e.Column+1, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError 判断 err 是否为数值解析失败。
func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// RowStats 记录读取过程中的行计数（用于报告）。
type RowStats struct {
	Rows        int // 不含表头的数据行数
	SkippedRows int // 因列数不足被跳过的行数
}

// Load 读取 path 并返回 LoadResult。
func Load(path, label string) (domain.LoadResult, error) {
	res, _, err := LoadDetailed(path, label)
	return res, err
}

// LoadDetailed 与 Load 相同，但额外返回行计数。
func LoadDetailed(path, label string) (domain.LoadResult, RowStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewNotFound(label, path), RowStats{}, nil
		}
		return nil, RowStats{}, err
	}
	defer f.Close()

	s, st, err := Read(f, path, label)
	if err != nil {
		return nil, st, err
	}
	return s, st, nil
}

// Read 从 r 解析一条 series。name 仅用于错误信息。
func Read(r io.Reader, name, label string) (domain.Series, RowStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	s := domain.Series{
		Frequencies:  make([]float64, 0, 1024),
		AmplitudesDB: make([]float64, 0, 1024),
		Label:        label,
	}
	var st RowStats

	// 表头：无论内容是什么都丢弃；空文件得到空 series。
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return s, st, nil
		}
		return domain.Series{}, st, fmt.Errorf("%s：读取表头失败：%w", name, err)
	}

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Series{}, st, fmt.Errorf("%s：读取 CSV 失败：%w", name, err)
		}
		st.Rows++
		if len(rec) < 2 {
			st.SkippedRows++
			continue
		}

		line, _ := cr.FieldPos(0)
		freq, err := parseCell(rec, 0, name, line)
		if err != nil {
			return domain.Series{}, st, err
		}
		amp, err := parseCell(rec, 1, name, line)
		if err != nil {
			return domain.Series{}, st, err
		}
		s.Frequencies = append(s.Frequencies, freq)
		s.AmplitudesDB = append(s.AmplitudesDB, amp)
	}
	return s, st, nil
}

func parseCell(rec []string, col int, name string, line int) (float64, error) {
	raw := rec[col]
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ParseError{Path: name, Line: line, Column: col, Value: raw, Err: err}
	}
	return v, nil
}

// Write 以 Header + 每行 (freq, db) 的格式写出 CSV。
func Write(w io.Writer, freqs, db []float64) error {
	if len(freqs) != len(db) {
		return fmt.Errorf("freqs=%d 与 db=%d 长度不一致", len(freqs), len(db))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	row := make([]string, 2)
	for i := range freqs {
		row[0] = strconv.FormatFloat(freqs[i], 'g', -1, 64)
		row[1] = strconv.FormatFloat(db[i], 'g', -1, 64)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile 原子写出 CSV；overwrite=false 时目标已存在返回 os.ErrExist。
func WriteFile(path string, freqs, db []float64, overwrite bool) error {
	var buf bytes.Buffer
	if err := Write(&buf, freqs, db); err != nil {
		return err
	}
	path = filepath.Clean(path)
	dir, name := filepath.Dir(path), filepath.Base(path)
	if overwrite {
		return fsx.WriteFileAtomicReplace(dir, name, buf.Bytes())
	}
	return fsx.WriteFileAtomicNoOverwrite(dir, name, buf.Bytes())
}
