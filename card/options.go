package card

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ByLCY/qrcard/fonts"
	"github.com/ByLCY/qrcard/layout"
	"github.com/ByLCY/qrcard/scancode"
)

var (
	// ErrResource 表示字体不可用或输出路径不可写，属于致命错误。
	ErrResource = errors.New("资源错误")
	// ErrVerify 表示贴到画布上的码无法解码回原负载。
	ErrVerify = errors.New("码校验失败")
)

// OutputForm 选择生成结果的形式。
type OutputForm string

const (
	OutputBytes  OutputForm = "bytes"  // PNG 字节
	OutputTemp   OutputForm = "temp"   // 由生成器持有、自动清理的临时文件
	OutputPath   OutputForm = "path"   // 调用方指定的文件
	OutputBase64 OutputForm = "base64" // PNG 的 base64 文本
)

// Options 是生成器配置。请从 DefaultOptions 开始修改。
type Options struct {
	Size            layout.Pair // 不允许 vw/vh
	Background      layout.Color
	CodeSize        layout.Pair
	CodePosition    layout.Pair
	CodeKind        string
	DefaultFontSize float64 // px，也是 rem 的基准
	DefaultColor    layout.Color
	DefaultBold     bool
	DefaultItalic   bool
	Border          layout.BorderSpec
	Output          OutputForm
	OutputPath      string
	Font            *fonts.Manager
	Logger          *slog.Logger
	VerifyCode      bool
}

// DefaultOptions 返回 350x180 白底、100x100 二维码位于 (20,40)、12px 黑色字体的配置。
func DefaultOptions() Options {
	return Options{
		Size:            layout.Pair{layout.Px(350), layout.Px(180)},
		Background:      layout.White,
		CodeSize:        layout.Pair{layout.Px(100), layout.Px(100)},
		CodePosition:    layout.Pair{layout.Px(20), layout.Px(40)},
		CodeKind:        scancode.KindQR,
		DefaultFontSize: 12,
		DefaultColor:    layout.Black,
		Output:          OutputBytes,
	}
}

// ParseOptions 从任务文件的 card 段构建配置，未出现的键保持默认值。
// 单位或取值错误在这里都是致命的配置错误。
func ParseOptions(raw map[string]any) (Options, error) {
	opts := DefaultOptions()
	if raw == nil {
		return opts, nil
	}
	if v := lookup(raw, "font_size", "default_font_size"); v != nil {
		l, err := layout.ParseLength(v)
		if err != nil || l.Unit != layout.UnitPX || l.Value <= 0 {
			return Options{}, fmt.Errorf("%w: font_size 必须是正的像素值，实际 %v", layout.ErrInvalidConfig, v)
		}
		opts.DefaultFontSize = l.Value
	}
	if v := lookup(raw, "size", "canvas_size"); v != nil {
		p, err := layout.ParsePair(v)
		if err != nil {
			return Options{}, fmt.Errorf("%w: size: %v", layout.ErrInvalidConfig, err)
		}
		opts.Size = p
	}
	var err error
	if opts.CodeSize, err = pairOption(raw, opts.CodeSize, "code_size", "qr_size"); err != nil {
		return Options{}, err
	}
	if opts.CodePosition, err = pairOption(raw, opts.CodePosition, "code_position", "qr_position"); err != nil {
		return Options{}, err
	}
	if opts.Background, err = colorOption(raw, opts.Background, "background", "background_color"); err != nil {
		return Options{}, err
	}
	if opts.DefaultColor, err = colorOption(raw, opts.DefaultColor, "color", "font_color"); err != nil {
		return Options{}, err
	}
	if v := lookup(raw, "code_kind", "code_type"); v != nil {
		opts.CodeKind = fmt.Sprint(v)
	}
	if opts.DefaultBold, err = boolOption(raw, opts.DefaultBold, "bold", "font_bold"); err != nil {
		return Options{}, err
	}
	if opts.DefaultItalic, err = boolOption(raw, opts.DefaultItalic, "italic", "font_italic"); err != nil {
		return Options{}, err
	}
	if opts.VerifyCode, err = boolOption(raw, opts.VerifyCode, "verify", "verify_code"); err != nil {
		return Options{}, err
	}
	if v := lookup(raw, "border", "out_border"); v != nil {
		b, err := layout.ParseBorderSpec(v)
		if err != nil {
			return Options{}, fmt.Errorf("%w: border: %v", layout.ErrInvalidConfig, err)
		}
		opts.Border = b
	}
	if v := lookup(raw, "output", "output_type"); v != nil {
		opts.Output = OutputForm(strings.ToLower(fmt.Sprint(v)))
	}
	if v := lookup(raw, "output_path"); v != nil {
		opts.OutputPath = fmt.Sprint(v)
	}
	if v := lookup(raw, "font_path", "font"); v != nil {
		m := fonts.NewManager()
		name, _ := lookup(raw, "font_name").(string)
		if !m.SetFont(fmt.Sprint(v), name) {
			return Options{}, fmt.Errorf("%w: 字体文件 %v 不存在", ErrResource, v)
		}
		opts.Font = m
	}
	return opts, nil
}

func lookup(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func pairOption(raw map[string]any, def layout.Pair, keys ...string) (layout.Pair, error) {
	v := lookup(raw, keys...)
	if v == nil {
		return def, nil
	}
	p, err := layout.ParsePair(v)
	if err != nil {
		return layout.Pair{}, fmt.Errorf("%w: %s: %v", layout.ErrInvalidConfig, keys[0], err)
	}
	return p, nil
}

func colorOption(raw map[string]any, def layout.Color, keys ...string) (layout.Color, error) {
	v := lookup(raw, keys...)
	if v == nil {
		return def, nil
	}
	c, err := layout.ParseColor(v)
	if err != nil {
		return layout.Color{}, fmt.Errorf("%w: %s: %v", layout.ErrInvalidConfig, keys[0], err)
	}
	return c, nil
}

func boolOption(raw map[string]any, def bool, keys ...string) (bool, error) {
	v := lookup(raw, keys...)
	if v == nil {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s 需要布尔值，实际为 %v", layout.ErrInvalidConfig, keys[0], v)
	}
	return b, nil
}
