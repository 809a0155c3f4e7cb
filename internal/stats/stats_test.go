package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/psdplot/internal/domain"
)

func TestSummarize(t *testing.T) {
	s := domain.Series{
		Frequencies:  []float64{3e6, 1e6, 2e6},
		AmplitudesDB: []float64{-30, -10, -20},
	}

	got := Summarize(s)
	require.NotNil(t, got)
	assert.Equal(t, 1e6, got.FreqMinHz)
	assert.Equal(t, 3e6, got.FreqMaxHz)
	assert.Equal(t, 1e6, got.PeakHz)
	assert.Equal(t, -10.0, got.PeakDB)
	assert.Equal(t, -30.0, got.MinDB)
	assert.InDelta(t, -20.0, got.MeanDB, 1e-12)
}

func TestSummarize_EmptyOrInvalid(t *testing.T) {
	assert.Nil(t, Summarize(domain.Series{}))
	assert.Nil(t, Summarize(domain.Series{Frequencies: []float64{1, 2}, AmplitudesDB: []float64{1}}))
}

func TestAmplitudeRange(t *testing.T) {
	lo, hi, ok := AmplitudeRange([]domain.Series{
		{AmplitudesDB: []float64{-20, -5}},
		{},
		{AmplitudesDB: []float64{-40, -30}},
	})
	require.True(t, ok)
	assert.Equal(t, -40.0, lo)
	assert.Equal(t, -5.0, hi)

	_, _, ok = AmplitudeRange([]domain.Series{{}})
	assert.False(t, ok)
}

func TestSummarize_IgnoresNonFinite(t *testing.T) {
	s := domain.Series{
		Frequencies:  []float64{1e6, 2e6, 3e6, math.NaN()},
		AmplitudesDB: []float64{math.Inf(-1), -22, math.NaN(), 0},
	}

	got := Summarize(s)
	require.NotNil(t, got)
	assert.Equal(t, 2e6, got.FreqMinHz)
	assert.Equal(t, 2e6, got.FreqMaxHz)
	assert.Equal(t, -22.0, got.PeakDB)
	assert.Equal(t, -22.0, got.MeanDB)

	// 结果必须能编码为 JSON（encoding/json 拒绝 NaN/Inf）。
	_, err := json.Marshal(got)
	require.NoError(t, err)

	assert.Nil(t, Summarize(domain.Series{Frequencies: []float64{1}, AmplitudesDB: []float64{math.Inf(-1)}}))
}

func TestAmplitudeRange_IgnoresNonFinite(t *testing.T) {
	lo, hi, ok := AmplitudeRange([]domain.Series{
		{Frequencies: []float64{1, 2, 3}, AmplitudesDB: []float64{math.Inf(-1), -20, math.Inf(1)}},
		{Frequencies: []float64{1}, AmplitudesDB: []float64{math.NaN()}},
	})
	require.True(t, ok)
	assert.Equal(t, -20.0, lo)
	assert.Equal(t, -20.0, hi)
}
