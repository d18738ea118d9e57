package renderer

import (
	"image"

	"github.com/ByLCY/qrcard/layout"
)

// Renderer 将布局结果与已编码的码图合成为最终位图。
// code 为 nil 时不绘制码。
type Renderer interface {
	Render(result *layout.Result, code image.Image) (*image.RGBA, error)
}
