package domain

import "testing"

func TestSeries_Shifted_DoesNotMutate(t *testing.T) {
	s := Series{
		Frequencies:  []float64{1e6, 2e6},
		AmplitudesDB: []float64{-20.5, -22.1},
		Label:        "PSD test",
	}

	got := s.Shifted(5e6)

	if got.Frequencies[0] != 6e6 || got.Frequencies[1] != 7e6 {
		t.Fatalf("平移结果不正确：%v", got.Frequencies)
	}
	if got.AmplitudesDB[0] != -20.5 || got.AmplitudesDB[1] != -22.1 {
		t.Fatalf("幅度不应变化：%v", got.AmplitudesDB)
	}
	if s.Frequencies[0] != 1e6 {
		t.Fatalf("原 series 被修改：%v", s.Frequencies)
	}
}

func TestSeries_Validate(t *testing.T) {
	ok := Series{Frequencies: []float64{1}, AmplitudesDB: []float64{2}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	bad := Series{Frequencies: []float64{1, 2}, AmplitudesDB: []float64{2}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("期望长度不一致错误")
	}
}

func TestLoadResult_TypeSwitch(t *testing.T) {
	results := []LoadResult{
		Series{Label: "A"},
		NewNotFound("PSD 20M", "Outputs/resultado_psd_db.csv"),
	}

	var series, missing int
	for _, r := range results {
		switch r.(type) {
		case Series:
			series++
		case NotFound:
			missing++
		}
	}
	if series != 1 || missing != 1 {
		t.Fatalf("type switch 分类不正确：series=%d missing=%d", series, missing)
	}
	if results[1].Title() != "No encontrado\nPSD 20M" {
		t.Fatalf("占位标签不正确：%q", results[1].Title())
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"overlay", "panel"} {
		if _, err := ParseMode(s); err != nil {
			t.Fatalf("%q 不应报错：%v", s, err)
		}
	}
	for _, s := range []string{"", "subplots", "OVERLAY"} {
		if _, err := ParseMode(s); err == nil {
			t.Fatalf("%q 应报错", s)
		}
	}
}
