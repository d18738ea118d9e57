package layout

import "errors"

// 该文件定义布局结果与输入块模型，供布局计算、渲染与调试 JSON 共用。

var (
	// ErrInvalidConfig 表示致命的配置错误（列数非法、margin 长度非法、画布尺寸使用相对单位等）。
	ErrInvalidConfig = errors.New("配置错误")
	// ErrInvalidUnit 表示单个数值的单位无法解析；只跳过出错的块或条目。
	ErrInvalidUnit = errors.New("无效的单位")
	// ErrMalformedBlock 表示块缺少必填字段；只跳过该块。
	ErrMalformedBlock = errors.New("块定义不完整")
)

// IsRecoverable 判断错误是否只影响单个块/条目。
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrInvalidUnit) || errors.Is(err, ErrMalformedBlock)
}

// Result 保存一张卡片的全部几何信息。
type Result struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Background Color          `json:"background"`
	Frame      *Rect          `json:"frame,omitempty"` // 画布级边框
	Code       *CodeBox       `json:"code,omitempty"`
	Texts      []TextBox      `json:"texts"`
	Lines      []Line         `json:"lines,omitempty"`
	Rects      []Rect         `json:"rects,omitempty"`
	Lists      []ListGeometry `json:"lists,omitempty"`
	Outcomes   []Outcome      `json:"outcomes,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// Margin 以像素为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// FontSpec 描述一次排版使用的字号（px）与样式。
type FontSpec struct {
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
}

// Extent 是字符串渲染后的包围盒尺寸（px）。
type Extent struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Font   FontSpec   `json:"font"`
	Color  Color      `json:"color"`
	Align  Align      `json:"align,omitempty"` // 行在 Width 内的对齐方式
	Lines  []TextLine `json:"lines"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// CodeBox 描述可扫描码在画布上的位置。
type CodeBox struct {
	Kind   string `json:"kind"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Line 表示一条线段（px）。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"`
}

// Rect 表示一个只描边的矩形（px）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor Color   `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// RowGeometry 记录列表中一行的纵向范围。行一旦完成即只读。
type RowGeometry struct {
	Top        float64 `json:"top"`        // 行锚点 y（上一行的 Bottom，或首行的 start.y + margin.top）
	ContentTop float64 `json:"contentTop"` // 本行条目实际绘制的最小 y
	Bottom     float64 `json:"bottom"`     // 加上条目上下 margin 之后的底部
	Height     float64 `json:"height"`     // 本行条目预测高度的最大值
}

// ListGeometry 保留列表块的计算结果，用于边框与调试输出。
type ListGeometry struct {
	Block       int           `json:"block"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
	Width       float64       `json:"width"`
	Height      float64       `json:"height"`
	ColumnWidth float64       `json:"columnWidth"`
	Columns     int           `json:"columns"`
	Margin      Margin        `json:"margin"`
	Rows        []RowGeometry `json:"rows"`
}

// Outcome 记录单个块（或条目）的处理结果；Item 为 -1 时表示整个块。
type Outcome struct {
	Block   int    `json:"block"`
	Item    int    `json:"item"`
	Kind    string `json:"kind"`
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
	Err     error  `json:"-"`
}
