// Package card 把可扫描码与文本、列表块合成为一张固定尺寸的卡片图片。
package card

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ByLCY/qrcard/fonts"
	"github.com/ByLCY/qrcard/layout"
	canvasrenderer "github.com/ByLCY/qrcard/renderer/canvas"
	"github.com/ByLCY/qrcard/scancode"
)

// Output 是一次生成的结果。Bytes 总是 PNG 数据；Text 只在 base64 形式下设置，
// Path 只在 temp/path 形式下设置。
type Output struct {
	Form   OutputForm
	Bytes  []byte
	Text   string
	Path   string
	Image  *image.RGBA
	Result *layout.Result
}

// Skipped 返回被跳过的块与条目。
func (o *Output) Skipped() []layout.Outcome {
	var out []layout.Outcome
	for _, oc := range o.Result.Outcomes {
		if oc.Skipped {
			out = append(out, oc)
		}
	}
	return out
}

// Generator 持有一张画布的配置与一个临时文件槽位。
// 并发调用请各自使用独立的 Generator；同一实例上的调用会串行执行。
type Generator struct {
	opts     Options
	canvas   layout.Canvas
	code     layout.CodeBox
	encoder  scancode.Encoder
	renderer *canvasrenderer.Renderer

	mu       sync.Mutex
	tempPath string
}

// New 校验配置并加载字体。画布尺寸不能使用 vw/vh；字体不可用属于资源错误。
func New(opts Options) (*Generator, error) {
	if opts.Font == nil {
		opts.Font = fonts.NewManager()
	}
	if opts.Output == "" {
		opts.Output = OutputBytes
	}
	if opts.DefaultFontSize <= 0 {
		return nil, fmt.Errorf("%w: 默认字号必须为正数，实际 %g", layout.ErrInvalidConfig, opts.DefaultFontSize)
	}
	if opts.Size[0].IsContainerRelative() || opts.Size[1].IsContainerRelative() {
		return nil, fmt.Errorf("%w: 画布尺寸不能使用 vw/vh，实际 %s x %s", layout.ErrInvalidConfig, opts.Size[0], opts.Size[1])
	}
	w, h := opts.Size.Resolve(layout.Basis{FontSize: opts.DefaultFontSize})
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: 画布尺寸必须为正数，实际 %dx%d", layout.ErrInvalidConfig, w, h)
	}
	encoder, err := scancode.New(opts.CodeKind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", layout.ErrInvalidConfig, err)
	}

	canvas := layout.Canvas{
		Width:        w,
		Height:       h,
		Background:   opts.Background,
		DefaultFont:  layout.FontSpec{Size: opts.DefaultFontSize, Bold: opts.DefaultBold, Italic: opts.DefaultItalic},
		DefaultColor: opts.DefaultColor,
		Border:       opts.Border,
	}
	basis := canvas.Basis()
	cw, ch := opts.CodeSize.Resolve(basis)
	cx, cy := opts.CodePosition.Resolve(basis)
	if cw <= 0 || ch <= 0 {
		return nil, fmt.Errorf("%w: 码尺寸必须为正数，实际 %dx%d", layout.ErrInvalidConfig, cw, ch)
	}

	r := canvasrenderer.NewRenderer(opts.Font)
	if err := r.LoadFonts(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResource, err)
	}
	g := &Generator{
		opts:     opts,
		canvas:   canvas,
		code:     layout.CodeBox{Kind: opts.CodeKind, X: cx, Y: cy, Width: cw, Height: ch},
		encoder:  encoder,
		renderer: r,
	}
	g.logger().Debug("生成器已创建", "width", w, "height", h, "font", opts.Font.Name(), "output", opts.Output)
	return g, nil
}

// logger 在每次使用时解析，未指定 Options.Logger 时跟随 SetLogger 的最新设置。
func (g *Generator) logger() *slog.Logger {
	if g.opts.Logger != nil {
		return g.opts.Logger
	}
	return Logger()
}

// Canvas 返回解析后的画布配置。
func (g *Generator) Canvas() layout.Canvas { return g.canvas }

// CodeBox 返回码在画布上的区域。
func (g *Generator) CodeBox() layout.CodeBox { return g.code }

// GenerateRaw 先解析全部块，配置错误在任何绘制之前返回。
func (g *Generator) GenerateRaw(payload string, raws []map[string]any) (*Output, error) {
	blocks, err := layout.ParseBlocks(raws)
	if err != nil {
		g.mu.Lock()
		g.removeTemp()
		g.mu.Unlock()
		return nil, err
	}
	return g.Generate(payload, blocks)
}

// Generate 依次绘制背景、画布边框、码与各个块，并按配置的形式输出。
// 上一次生成留下的临时文件在开始时删除；失败时不会留下新的临时文件。
func (g *Generator) Generate(payload string, blocks []layout.Block) (*Output, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeTemp()

	form := g.opts.Output
	switch form {
	case OutputBytes, OutputTemp, OutputBase64:
	case OutputPath:
		if g.opts.OutputPath == "" {
			return nil, fmt.Errorf("%w: 输出形式 path 需要 OutputPath", layout.ErrInvalidConfig)
		}
	default:
		return nil, fmt.Errorf("%w: 未知的输出形式 %q", layout.ErrInvalidConfig, form)
	}

	res, err := layout.Build(g.canvas, blocks, layout.BuildOptions{Typesetter: g.renderer})
	if err != nil {
		return nil, err
	}
	code := g.code
	res.Code = &code
	for _, o := range res.Outcomes {
		if o.Skipped {
			g.logger().Warn("跳过块", "block", o.Block, "item", o.Item, "kind", o.Kind, "reason", o.Reason)
		}
	}

	codeImg, err := g.encoder.Encode(payload, code.Width, code.Height)
	if err != nil {
		return nil, err
	}
	img, err := g.renderer.Render(res, codeImg)
	if err != nil {
		return nil, err
	}
	if g.opts.VerifyCode {
		if err := verify(img, code, payload); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	out := &Output{Form: form, Bytes: buf.Bytes(), Image: img, Result: res}
	switch form {
	case OutputBase64:
		out.Text = base64.StdEncoding.EncodeToString(out.Bytes)
	case OutputPath:
		if err := os.MkdirAll(filepath.Dir(g.opts.OutputPath), 0o755); err != nil {
			return nil, fmt.Errorf("%w: 创建目录 %s 失败: %v", ErrResource, filepath.Dir(g.opts.OutputPath), err)
		}
		if err := os.WriteFile(g.opts.OutputPath, out.Bytes, 0o644); err != nil {
			return nil, fmt.Errorf("%w: 写入 %s 失败: %v", ErrResource, g.opts.OutputPath, err)
		}
		out.Path = g.opts.OutputPath
	case OutputTemp:
		path, err := writeTemp(out.Bytes)
		if err != nil {
			return nil, err
		}
		g.tempPath = path
		out.Path = path
	}
	g.logger().Debug("卡片已生成", "form", form, "path", out.Path, "bytes", len(out.Bytes))
	return out, nil
}

// Close 删除生成器持有的临时文件。可以重复调用。
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeTemp()
}

// removeTemp 调用方需持有 mu。
func (g *Generator) removeTemp() error {
	if g.tempPath == "" {
		return nil
	}
	path := g.tempPath
	g.tempPath = ""
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		g.logger().Warn("删除临时文件失败", "path", path, "err", err)
		return err
	}
	return nil
}

func writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "qrcard-*.png")
	if err != nil {
		return "", fmt.Errorf("%w: 创建临时文件失败: %v", ErrResource, err)
	}
	path := f.Name()
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(path)
		return "", fmt.Errorf("%w: 写入临时文件失败: %v", ErrResource, errors.Join(werr, cerr))
	}
	return path, nil
}

// ExtractCode 裁出码区域并在四周补白，便于独立解码。
func ExtractCode(img image.Image, box layout.CodeBox) image.Image {
	const pad = 16
	region := imaging.Crop(img, image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height))
	b := region.Bounds()
	bg := imaging.New(b.Dx()+2*pad, b.Dy()+2*pad, color.White)
	return imaging.Paste(bg, region, image.Pt(pad, pad))
}

func verify(img image.Image, box layout.CodeBox, payload string) error {
	got, err := scancode.Decode(ExtractCode(img, box))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerify, err)
	}
	if got != payload {
		return fmt.Errorf("%w: 期望 %q，解码得到 %q", ErrVerify, payload, got)
	}
	return nil
}
