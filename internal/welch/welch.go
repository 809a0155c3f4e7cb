// Package welch 从 CS8 IQ 采样估计 PSD（Welch 平均周期图），产出 psdcsv 可读的频率/dB 序列。
package welch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// 采集端的默认参数：采样率必须与采集时的 sample rate 一致。
const (
	DefaultSampleRate    = 20e6
	DefaultSegmentLength = 4096
	DefaultOverlap       = 0.75
)

// dbFloor 避免 log10(0)。
const dbFloor = 1e-15

var ErrTooFewSamples = errors.New("welch: 采样点少于一个分段")

// Options 是 Welch 估计的参数。
type Options struct {
	SampleRate    float64 // Hz
	SegmentLength int     // 每段点数（也是输出点数）
	Overlap       float64 // [0, 1)
}

// DefaultOptions 返回与采集工具一致的默认参数。
func DefaultOptions() Options {
	return Options{
		SampleRate:    DefaultSampleRate,
		SegmentLength: DefaultSegmentLength,
		Overlap:       DefaultOverlap,
	}
}

func (o Options) validate() error {
	if o.SampleRate <= 0 || math.IsNaN(o.SampleRate) || math.IsInf(o.SampleRate, 0) {
		return fmt.Errorf("welch: sample rate 必须为正数，实际 %v", o.SampleRate)
	}
	if o.SegmentLength < 2 {
		return fmt.Errorf("welch: segment length 至少为 2，实际 %d", o.SegmentLength)
	}
	if o.Overlap < 0 || o.Overlap >= 1 || math.IsNaN(o.Overlap) {
		return fmt.Errorf("welch: overlap 必须在 [0, 1) 内，实际 %v", o.Overlap)
	}
	return nil
}

func (o Options) step() int {
	step := o.SegmentLength - int(math.Round(o.Overlap*float64(o.SegmentLength)))
	if step < 1 {
		step = 1
	}
	return step
}

// ReadCS8 解码交织的 int8 I/Q 采样（I0 Q0 I1 Q1 ...），幅度归一化到 [-1, 1)。
// maxSamples <= 0 表示不限制；末尾不成对的字节被丢弃。
func ReadCS8(r io.Reader, maxSamples int) ([]complex128, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	out := make([]complex128, 0, 1<<16)
	var pair [2]byte
	for maxSamples <= 0 || len(out) < maxSamples {
		if _, err := io.ReadFull(br, pair[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, err
		}
		out = append(out, complex(float64(int8(pair[0]))/128, float64(int8(pair[1]))/128))
	}
	return out, nil
}

// LoadCS8 从文件读取 CS8 采样。
func LoadCS8(path string, maxSamples int) ([]complex128, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCS8(f, maxSamples)
}

// RemoveDC 原地减去复数均值（去掉中心频点的直流尖峰）。
func RemoveDC(x []complex128) {
	if len(x) == 0 {
		return
	}
	var mean complex128
	for _, v := range x {
		mean += v
	}
	mean /= complex(float64(len(x)), 0)
	for i := range x {
		x[i] -= mean
	}
}

// Estimate 计算双边 PSD（单位 1/Hz），输出按 FFT 顺序排列：
// freqs[k] = k*fs/N（k < N/2），其余为负频率 (k-N)*fs/N。
func Estimate(x []complex128, o Options) (freqs, pxx []float64, err error) {
	if err := o.validate(); err != nil {
		return nil, nil, err
	}
	n := o.SegmentLength
	if len(x) < n {
		return nil, nil, fmt.Errorf("%w：samples=%d segment=%d", ErrTooFewSamples, len(x), n)
	}

	w := window.Hann(n)
	var u float64
	for _, v := range w {
		u += v * v
	}

	acc := make([]float64, n)
	seg := make([]complex128, n)
	segments := 0
	for start := 0; start+n <= len(x); start += o.step() {
		for i := 0; i < n; i++ {
			seg[i] = x[start+i] * complex(w[i], 0)
		}
		spec := fft.FFT(seg)
		for k, c := range spec {
			a := cmplx.Abs(c)
			acc[k] += a * a
		}
		segments++
	}

	scale := 1 / (float64(segments) * o.SampleRate * u)
	pxx = make([]float64, n)
	for k := range acc {
		pxx[k] = acc[k] * scale
	}
	return Frequencies(n, o.SampleRate), pxx, nil
}

// Frequencies 返回 N 点 FFT 的频率轴（FFT 顺序）。
func Frequencies(n int, fs float64) []float64 {
	f := make([]float64, n)
	half := (n + 1) / 2
	for k := 0; k < n; k++ {
		if k < half {
			f[k] = float64(k) * fs / float64(n)
		} else {
			f[k] = float64(k-n) * fs / float64(n)
		}
	}
	return f
}

// FFTShift 把零频移到中间（与 numpy.fft.fftshift 相同），返回新切片。
func FFTShift(a []float64) []float64 {
	n := len(a)
	out := make([]float64, n)
	shift := n / 2
	for i, v := range a {
		out[(i+shift)%n] = v
	}
	return out
}

// ToDB 计算 10*log10(p + 1e-15)。
func ToDB(p []float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = 10 * math.Log10(v+dbFloor)
	}
	return out
}

// Result 是 Spectrum 的输出：频率升序（从 -fs/2 到 fs/2），线性与 dB 两种 PSD。
type Result struct {
	Frequencies []float64
	PSD         []float64
	PSDdB       []float64
}

// Spectrum 是采集工具的完整后处理：去直流 → Welch → fftshift → dB。
// x 会被原地修改（去直流）。
func Spectrum(x []complex128, o Options) (Result, error) {
	RemoveDC(x)
	f, p, err := Estimate(x, o)
	if err != nil {
		return Result{}, err
	}
	p = FFTShift(p)
	return Result{
		Frequencies: FFTShift(f),
		PSD:         p,
		PSDdB:       ToDB(p),
	}, nil
}
