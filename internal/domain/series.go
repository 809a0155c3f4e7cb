package domain

import "fmt"

// NotFoundPrefix 是缺失文件占位标签的前缀（与历史脚本保持一致，面板标题会显示它）。
const NotFoundPrefix = "No encontrado\n"

// LoadResult 是一次 CSV 加载的结果：要么是 Series，要么是 NotFound。
//
// 这是一个封闭的 tagged variant：只有本包的两个类型实现它，
// 调用方用 type switch 区分，不再依赖 nil 判断。
type LoadResult interface {
	// Title 返回展示用标签（图例/面板标题）。
	Title() string
	isLoadResult()
}

// Series 是一条 PSD 曲线。
//
// 不变量：len(Frequencies) == len(AmplitudesDB)，顺序与文件行顺序一致（不排序、不去重）。
type Series struct {
	Frequencies  []float64
	AmplitudesDB []float64
	Label        string
}

func (s Series) Title() string { return s.Label }
func (Series) isLoadResult() {}

// Len 返回点数。
func (s Series) Len() int { return len(s.Frequencies) }

// Validate 检查长度不变量。
func (s Series) Validate() error {
	if len(s.Frequencies) != len(s.AmplitudesDB) {
		return fmt.Errorf("series %q：frequencies=%d 与 amplitudes_db=%d 长度不一致", s.Label, len(s.Frequencies), len(s.AmplitudesDB))
	}
	return nil
}

// Shifted 返回频率整体平移 offsetHz 后的副本；幅度不变，原 Series 不被修改。
func (s Series) Shifted(offsetHz float64) Series {
	f := make([]float64, len(s.Frequencies))
	for i, v := range s.Frequencies {
		f[i] = v + offsetHz
	}
	return Series{
		Frequencies:  f,
		AmplitudesDB: append([]float64(nil), s.AmplitudesDB...),
		Label:        s.Label,
	}
}

// NotFound 表示输入文件不存在时的占位结果，只携带展示标签。
type NotFound struct {
	Label string
	Path  string // 尝试读取的路径（仅用于报告）
}

func (n NotFound) Title() string { return n.Label }
func (NotFound) isLoadResult() {}

// NewNotFound 按约定格式构造占位标签："No encontrado\n<label>"。
func NewNotFound(label, path string) NotFound {
	return NotFound{Label: NotFoundPrefix + label, Path: path}
}
