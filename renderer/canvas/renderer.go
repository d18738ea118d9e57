package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/qrcard/fonts"
	"github.com/ByLCY/qrcard/layout"
	"github.com/ByLCY/qrcard/renderer"
)

// mmPerPt 用于把像素字号换算成 canvas 的 pt 字号：画布 1 单位按 1px 栅格化。
const mmPerPt = 25.4 / 72

// Renderer draws layout results via github.com/tdewolff/canvas and measures text with x/image.
// 测量与绘制都在 fontMu 内使用字体面，一个 Renderer 可以被多个 goroutine 共享。
type Renderer struct {
	fonts *fonts.Manager

	fontMu     sync.Mutex
	loadedPath string
	parsed     map[fonts.Style]*opentype.Font
	faces      map[faceKey]font.Face
	family     *canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type faceKey struct {
	style fonts.Style
	size  float64
}

// NewRenderer creates a renderer that reads fonts from m; nil uses the built-in font.
func NewRenderer(m *fonts.Manager) *Renderer {
	if m == nil {
		m = fonts.NewManager()
	}
	return &Renderer{fonts: m}
}

// LoadFonts 立即加载并解析当前字体，让字体不可用的错误在生成之前暴露。
func (r *Renderer) LoadFonts() error {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	return r.ensureFonts()
}

// Measure 实现 layout.Typesetter：宽度为字形步进之和，高度为墨迹包围盒高度。
// 空串或纯空白没有墨迹，使用 ascent+descent 作为行高。
func (r *Renderer) Measure(content string, spec layout.FontSpec) (layout.Extent, error) {
	var ext layout.Extent
	err := r.withFace(spec, func(face font.Face) error {
		ext, _ = measureWith(face, content)
		return nil
	})
	return ext, err
}

// LayoutLines 实现 layout.Typesetter 接口，折行规则见 layout.WrapText。
func (r *Renderer) LayoutLines(content string, width float64, spec layout.FontSpec) ([]layout.TextLine, error) {
	var lines []layout.TextLine
	err := r.withFace(spec, func(face font.Face) error {
		var err error
		lines, err = layout.WrapText(content, width, func(s string) (layout.Extent, error) {
			ext, _ := measureWith(face, s)
			return ext, nil
		})
		return err
	})
	return lines, err
}

// measureWith 返回包围盒以及墨迹顶部到基线的距离。
func measureWith(face font.Face, s string) (layout.Extent, float64) {
	bounds, advance := font.BoundString(face, s)
	if bounds.Max.Y > bounds.Min.Y {
		return layout.Extent{Width: fromFixed(advance), Height: fromFixed(bounds.Max.Y - bounds.Min.Y)}, -fromFixed(bounds.Min.Y)
	}
	m := face.Metrics()
	return layout.Extent{Width: fromFixed(advance), Height: fromFixed(m.Ascent + m.Descent)}, fromFixed(m.Ascent)
}

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Render 按 背景 → 画布边框 → 可扫描码 → 列表边框与分隔线 → 文本 的顺序合成位图。
func (r *Renderer) Render(result *layout.Result, code image.Image) (*image.RGBA, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Width <= 0 || result.Height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %dx%d", result.Width, result.Height)
	}
	base := image.NewRGBA(image.Rect(0, 0, result.Width, result.Height))
	draw.Draw(base, base.Bounds(), image.NewUniform(rgba(result.Background)), image.Point{}, draw.Src)

	if result.Frame != nil {
		err := r.composite(base, result, func(ctx *canvas.Context) error {
			return r.drawRects(ctx, []layout.Rect{*result.Frame})
		})
		if err != nil {
			return nil, err
		}
	}
	if result.Code != nil && code != nil {
		pasteCode(base, *result.Code, code)
	}
	err := r.composite(base, result, func(ctx *canvas.Context) error {
		if err := r.drawRects(ctx, result.Rects); err != nil {
			return err
		}
		if err := r.drawLines(ctx, result.Lines); err != nil {
			return err
		}
		for _, tb := range result.Texts {
			if err := r.drawTextBox(ctx, tb); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return base, nil
}

// composite 在透明图层上绘制，再叠加到 base 上。
func (r *Renderer) composite(base *image.RGBA, result *layout.Result, paint func(ctx *canvas.Context) error) error {
	c := canvas.New(float64(result.Width), float64(result.Height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	if err := paint(ctx); err != nil {
		return err
	}
	layer := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	draw.Draw(base, base.Bounds(), layer, layer.Bounds().Min, draw.Over)
	return nil
}

// pasteCode 将码图贴到 CodeBox 区域，尺寸不符时最近邻缩放以保持模块边缘清晰。
func pasteCode(base *image.RGBA, box layout.CodeBox, code image.Image) {
	if box.Width <= 0 || box.Height <= 0 {
		return
	}
	b := code.Bounds()
	if b.Dx() != box.Width || b.Dy() != box.Height {
		code = imaging.Resize(code, box.Width, box.Height, imaging.NearestNeighbor)
		b = code.Bounds()
	}
	dst := image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height)
	draw.Draw(base, dst, code, b.Min, draw.Over)
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox) error {
	style := fonts.StyleOf(tb.Font.Bold, tb.Font.Italic)
	// 基线位置：行顶部加上墨迹上升部分，与布局阶段使用同一个字体面测量。
	ascents := make([]float64, len(tb.Lines))
	err := r.withFace(tb.Font, func(face font.Face) error {
		for i, line := range tb.Lines {
			_, ascents[i] = measureWith(face, line.Content)
		}
		return nil
	})
	if err != nil {
		return err
	}
	family, err := r.drawFamily()
	if err != nil {
		return err
	}
	face := family.Face(tb.Font.Size/mmPerPt, rgba(tb.Color), canvasStyle(style), canvas.FontNormal)

	tops := tb.LineTops()
	for i, line := range tb.Lines {
		if line.Content == "" {
			continue
		}
		// 行宽使用测量结果，保证与布局阶段一致。
		var x float64
		switch tb.Align {
		case layout.AlignCenter:
			x = tb.X + (tb.Width-line.Width)/2
		case layout.AlignEnd:
			x = tb.X + tb.Width - line.Width
		default:
			x = tb.X
		}
		ctx.DrawText(x, tops[i]+ascents[i], canvas.NewTextLine(face, line.Content, canvas.Left))
	}
	return nil
}

// drawLines 绘制直线列表（px）
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) error {
	for _, ln := range lines {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(rgba(ln.Color))
		ctx.SetStrokeWidth(ln.Width)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
	return nil
}

// drawRects 绘制只描边的矩形
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) error {
	for _, rc := range rects {
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(rgba(rc.StrokeColor))
		ctx.SetStrokeWidth(rc.StrokeWidth)
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
	return nil
}

// ensureFonts 在字体管理器切换字体后重新加载，并清空缓存的字体面。
// 调用方需持有 fontMu。
func (r *Renderer) ensureFonts() error {
	path := r.fonts.Path()
	if r.parsed != nil && r.loadedPath == path {
		return nil
	}
	variants, err := r.fonts.Variants()
	if err != nil {
		return err
	}
	parsed := make(map[fonts.Style]*opentype.Font, len(variants))
	family := canvas.NewFontFamily(r.fonts.Name())
	for style, data := range variants {
		f, err := opentype.Parse(data)
		if err != nil {
			return fmt.Errorf("解析字体 %s 失败: %w", path, err)
		}
		parsed[style] = f
		if err := family.LoadFont(data, 0, canvasStyle(style)); err != nil {
			return fmt.Errorf("加载字体 %s 失败: %w", path, err)
		}
	}
	r.loadedPath = path
	r.parsed = parsed
	r.family = family
	r.faces = map[faceKey]font.Face{}
	return nil
}

// withFace 在持有 fontMu 期间调用 fn。x/image 的字体面带内部缓冲，不能并发使用，
// 所以字体面不会离开锁的范围。
func (r *Renderer) withFace(spec layout.FontSpec, fn func(font.Face) error) error {
	if spec.Size <= 0 {
		return fmt.Errorf("字号必须为正数，实际 %g", spec.Size)
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if err := r.ensureFonts(); err != nil {
		return err
	}
	style := fonts.StyleOf(spec.Bold, spec.Italic)
	if _, ok := r.parsed[style]; !ok {
		style = fonts.Regular
	}
	key := faceKey{style: style, size: spec.Size}
	face, ok := r.faces[key]
	if !ok {
		var err error
		face, err = opentype.NewFace(r.parsed[style], &opentype.FaceOptions{
			Size:    spec.Size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			return fmt.Errorf("创建字体面失败: %w", err)
		}
		r.faces[key] = face
	}
	return fn(face)
}

func (r *Renderer) drawFamily() (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if err := r.ensureFonts(); err != nil {
		return nil, err
	}
	return r.family, nil
}

func canvasStyle(s fonts.Style) canvas.FontStyle {
	switch s {
	case fonts.Bold:
		return canvas.FontBold
	case fonts.Italic:
		return canvas.FontRegular | canvas.FontItalic
	case fonts.BoldItalic:
		return canvas.FontBold | canvas.FontItalic
	default:
		return canvas.FontRegular
	}
}

func rgba(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
