package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/John-Robertt/psdplot/internal/domain"
)

// Summarize 计算单条 series 的摘要；没有任何有限点时返回 nil。
//
// 频率或幅度为 ±Inf/NaN 的点（例如 -inf dB）不参与统计，与绘图时跳过它们一致，
// 因此结果总能编码为 JSON。
// MeanDB 是 dB 值的算术平均（不是功率平均），与图上肉眼读到的“平均高度”一致。
func Summarize(s domain.Series) *domain.SeriesStats {
	if s.Validate() != nil {
		return nil
	}
	f, a := finitePoints(s)
	if len(f) == 0 {
		return nil
	}
	peak := floats.MaxIdx(a)
	return &domain.SeriesStats{
		FreqMinHz: floats.Min(f),
		FreqMaxHz: floats.Max(f),
		PeakHz:    f[peak],
		PeakDB:    a[peak],
		MinDB:     floats.Min(a),
		MeanDB:    stat.Mean(a, nil),
	}
}

// AmplitudeRange 返回所有 series 有限幅度的 [min, max]；没有任何有限点时 ok=false。
// 面板模式用它让所有子图共享 Y 轴。
func AmplitudeRange(series []domain.Series) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.AmplitudesDB {
			if !isFinite(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			ok = true
		}
	}
	return lo, hi, ok
}

// finitePoints 返回频率与幅度都有限的点；全部有限时直接复用原切片。
func finitePoints(s domain.Series) (f, a []float64) {
	if allFinite(s.Frequencies) && allFinite(s.AmplitudesDB) {
		return s.Frequencies, s.AmplitudesDB
	}
	f = make([]float64, 0, len(s.Frequencies))
	a = make([]float64, 0, len(s.AmplitudesDB))
	for i := range s.Frequencies {
		if isFinite(s.Frequencies[i]) && isFinite(s.AmplitudesDB[i]) {
			f = append(f, s.Frequencies[i])
			a = append(a, s.AmplitudesDB[i])
		}
	}
	return f, a
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if !isFinite(x) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
