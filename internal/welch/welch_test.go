package welch

import (
	"bytes"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func tone(n int, fs, f0 float64, dc complex128) []complex128 {
	x := make([]complex128, n)
	for i := range x {
		x[i] = cmplx.Exp(complex(0, 2*math.Pi*f0*float64(i)/fs))*0.5 + dc
	}
	return x
}

func TestSpectrum_TonePeak(t *testing.T) {
	fs := 1e6
	o := Options{SampleRate: fs, SegmentLength: 256, Overlap: 0.5}
	f0 := fs * 32 / 256 // 正好落在 bin 上

	res, err := Spectrum(tone(4096, fs, f0, 0.3), o)
	require.NoError(t, err)
	freqs, db := res.Frequencies, res.PSDdB
	require.Len(t, res.PSD, 256)
	require.Len(t, freqs, 256)
	require.Len(t, db, 256)

	// 频率轴升序，从 -fs/2 开始。
	assert.Equal(t, -fs/2, freqs[0])
	for i := 1; i < len(freqs); i++ {
		require.Less(t, freqs[i-1], freqs[i])
	}

	peak := floats.MaxIdx(db)
	assert.InDelta(t, f0, freqs[peak], 1e-6)

	// 去直流后 0 Hz 附近应远低于峰值。
	zero := -1
	for i, f := range freqs {
		if f == 0 {
			zero = i
		}
	}
	require.Equal(t, len(freqs)/2, zero)
	assert.Less(t, db[zero], db[peak]-60)
}

func TestEstimate_WhiteNoiseLevel(t *testing.T) {
	// 单位功率的常数相位旋转序列：总功率积分应接近 1。
	fs := 1e3
	o := Options{SampleRate: fs, SegmentLength: 64, Overlap: 0}
	x := tone(64*8, fs, fs*5/64, 0)
	for i := range x {
		x[i] *= 2 // 幅度 1 → 功率 1
	}

	_, pxx, err := Estimate(x, o)
	require.NoError(t, err)
	total := floats.Sum(pxx) * fs / float64(o.SegmentLength)
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestEstimate_Errors(t *testing.T) {
	_, _, err := Estimate(make([]complex128, 10), Options{SampleRate: 1, SegmentLength: 16, Overlap: 0})
	require.ErrorIs(t, err, ErrTooFewSamples)

	for _, o := range []Options{
		{SampleRate: 0, SegmentLength: 16},
		{SampleRate: 1, SegmentLength: 1},
		{SampleRate: 1, SegmentLength: 16, Overlap: 1},
		{SampleRate: 1, SegmentLength: 16, Overlap: -0.1},
	} {
		_, _, err := Estimate(make([]complex128, 64), o)
		require.Error(t, err, "%+v", o)
	}
}

func TestFrequenciesAndShift(t *testing.T) {
	assert.Equal(t, []float64{0, 1, -2, -1}, Frequencies(4, 4))
	assert.Equal(t, []float64{0, 1, 2, -2, -1}, Frequencies(5, 5))

	assert.Equal(t, []float64{-2, -1, 0, 1}, FFTShift(Frequencies(4, 4)))
	assert.Equal(t, []float64{-2, -1, 0, 1, 2}, FFTShift(Frequencies(5, 5)))
}

func TestToDB(t *testing.T) {
	got := ToDB([]float64{1, 0.01, 0})
	assert.InDelta(t, 0, got[0], 1e-9)
	assert.InDelta(t, -20, got[1], 1e-9)
	assert.InDelta(t, -150, got[2], 1e-9)
}

func TestReadCS8(t *testing.T) {
	raw := []byte{0x7f, 0x80, 0x00, 0xc0, 0x40} // 最后一个字节不成对，丢弃
	x, err := ReadCS8(bytes.NewReader(raw), 0)
	require.NoError(t, err)
	require.Len(t, x, 2)
	assert.Equal(t, complex(127.0/128, -1), x[0])
	assert.Equal(t, complex(0, -0.5), x[1])

	x, err = ReadCS8(bytes.NewReader(raw), 1)
	require.NoError(t, err)
	assert.Len(t, x, 1)
}

func TestLoadCS8_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "0")
	require.NoError(t, os.WriteFile(p, []byte{1, 2, 3, 4}, 0o644))

	x, err := LoadCS8(p, 0)
	require.NoError(t, err)
	assert.Len(t, x, 2)

	_, err = LoadCS8(filepath.Join(t.TempDir(), "missing"), 0)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemoveDC(t *testing.T) {
	x := []complex128{1 + 1i, 3 + 1i}
	RemoveDC(x)
	assert.Equal(t, []complex128{-1, 1}, x)
	RemoveDC(nil)
}
