package layout

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
}

// Typesetter 负责测量文本并在宽度约束下折行。
type Typesetter interface {
	// Measure 返回单行文本的包围盒，不产生绘制副作用。
	Measure(content string, font FontSpec) (Extent, error)
	// LayoutLines 在 width 内折行，见 WrapText。
	LayoutLines(content string, width float64, font FontSpec) ([]TextLine, error)
}

// Canvas 是已解析成像素的画布配置。
type Canvas struct {
	Width        int
	Height       int
	Background   Color
	DefaultFont  FontSpec
	DefaultColor Color
	Border       BorderSpec
}

// Basis 返回画布作为容器时的单位换算基准。
func (c Canvas) Basis() Basis {
	return Basis{FontSize: c.DefaultFont.Size, Width: float64(c.Width), Height: float64(c.Height)}
}
