package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Block 是输入块的联合类型：*TextBlock、*ListBlock 或 *InvalidBlock。
type Block interface {
	Kind() string
}

// Align 是条目在可用宽度内的水平对齐方式。
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// TextBlock 是带显式坐标的自由文本。
type TextBlock struct {
	Text      string
	Position  Pair
	FontSize  *Length
	Color     *Color
	Bold      *bool
	Italic    *bool
	Wrap      bool
	WrapWidth Length // 仅在 Wrap 为 true 时使用
	Align     Align
}

func (*TextBlock) Kind() string { return "text" }

// Item 是列表中的一个条目，位置完全由序号、列数与 margin 推导。
type Item struct {
	Text     string
	FontSize *Length
	Color    *Color
	Bold     *bool
	Italic   *bool
	Wrap     bool
	Margin   *MarginSpec // 覆盖列表级 margin，不做合并
	Align    Align
	Invalid  error // 非空时该条目被跳过
}

// ListBlock 是按行优先流式排布的条目网格。
type ListBlock struct {
	Items         []Item
	StartPosition Pair
	Margin        MarginSpec
	OutBorder     BorderSpec
	InnerBorder   BorderSpec
	Columns       int
	Width         Length
	Height        Length
}

func (*ListBlock) Kind() string { return "list" }

// InvalidBlock 保存解析阶段可恢复的错误，布局时只记录跳过结果。
type InvalidBlock struct {
	Shape string
	Err   error
}

func (b *InvalidBlock) Kind() string {
	if b.Shape == "" {
		return "invalid"
	}
	return b.Shape
}

// BorderSpec 描述外边框或内分隔线。
type BorderSpec struct {
	Enabled bool
	Color   Color
	Width   Length
}

// DefaultBorder 对应 `true` 的写法：黑色、0.2rem。
var DefaultBorder = BorderSpec{Enabled: true, Color: Black, Width: Length{Value: 0.2, Unit: UnitREM}}

// ParseBorderSpec 接受 nil/false、true 或 (color, width)。
func ParseBorderSpec(v any) (BorderSpec, error) {
	switch b := v.(type) {
	case nil:
		return BorderSpec{}, nil
	case bool:
		if b {
			return DefaultBorder, nil
		}
		return BorderSpec{}, nil
	}
	items, ok := toSlice(v)
	if !ok || len(items) != 2 {
		return BorderSpec{}, fmt.Errorf("%w: 边框需要 true 或 (颜色, 宽度)，实际为 %v", ErrInvalidConfig, v)
	}
	col, err := ParseColor(items[0])
	if err != nil {
		return BorderSpec{}, err
	}
	width, err := ParseLength(items[1])
	if err != nil {
		return BorderSpec{}, err
	}
	return BorderSpec{Enabled: true, Color: col, Width: width}, nil
}

// ParseColor 支持颜色名称、#rgb/#rrggbb/#rrggbbaa 以及 [r, g, b]。
func ParseColor(v any) (Color, error) {
	switch c := v.(type) {
	case Color:
		return c, nil
	case string:
		return parseColorString(c)
	}
	items, ok := toSlice(v)
	if !ok || (len(items) != 3 && len(items) != 4) {
		return Color{}, fmt.Errorf("%w: 颜色值 %v 无法解析", ErrInvalidUnit, v)
	}
	var rgb [3]int
	for i := 0; i < 3; i++ {
		l, err := ParseLength(items[i])
		if err != nil || l.Unit != UnitPX {
			return Color{}, fmt.Errorf("%w: 颜色分量 %v 无法解析", ErrInvalidUnit, items[i])
		}
		rgb[i] = clampByte(l.Value)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

func parseColorString(value string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := colornames.Map[v]; ok {
		return Color{R: int(c.R), G: int(c.G), B: int(c.B)}, nil
	}
	if !strings.HasPrefix(v, "#") {
		return Color{}, fmt.Errorf("%w: 颜色值 %s 无法解析", ErrInvalidUnit, value)
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	if len(v) != 6 && len(v) != 8 {
		return Color{}, fmt.Errorf("%w: 颜色值 %s 无法解析", ErrInvalidUnit, value)
	}
	var rgb [3]int
	for i := range rgb {
		n, err := strconv.ParseUint(v[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("%w: 颜色值 %s 无法解析", ErrInvalidUnit, value)
		}
		rgb[i] = int(n)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

func clampByte(v float64) int {
	return int(math.Max(0, math.Min(255, math.Round(v))))
}

// ParseAlign 规范化对齐方式，left/right 作为 start/end 的别名。
func ParseAlign(v any) (Align, error) {
	if v == nil {
		return AlignStart, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: 对齐方式 %v 无法解析", ErrInvalidConfig, v)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "start", "left":
		return AlignStart, nil
	case "center", "middle":
		return AlignCenter, nil
	case "end", "right":
		return AlignEnd, nil
	default:
		return "", fmt.Errorf("%w: 对齐方式 %q 无法解析", ErrInvalidConfig, s)
	}
}

// ParseBlocks 在布局之前一次性解析全部输入块。
// 可恢复的问题变成 *InvalidBlock（或 Item.Invalid），配置错误直接返回。
func ParseBlocks(raws []map[string]any) ([]Block, error) {
	blocks := make([]Block, 0, len(raws))
	for i, raw := range raws {
		b, err := ParseBlock(raw)
		if err != nil {
			if !IsRecoverable(err) {
				return nil, fmt.Errorf("第 %d 个块: %w", i, err)
			}
			blocks = append(blocks, &InvalidBlock{Shape: shapeOf(raw), Err: err})
			continue
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// ParseBlock 根据是否存在 list 键决定块的形状。
func ParseBlock(raw map[string]any) (Block, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: 空块", ErrMalformedBlock)
	}
	if _, ok := raw["list"]; ok {
		return parseListBlock(raw)
	}
	return parseTextBlock(raw)
}

func shapeOf(raw map[string]any) string {
	if _, ok := raw["list"]; ok {
		return "list"
	}
	return "text"
}

func parseTextBlock(raw map[string]any) (*TextBlock, error) {
	text, okText := raw["text"]
	pos, okPos := raw["position"]
	if !okText || !okPos {
		return nil, fmt.Errorf("%w: 文本块缺少 text 或 position", ErrMalformedBlock)
	}
	b := &TextBlock{Text: fmt.Sprint(text), WrapWidth: Length{Value: 100, Unit: UnitVW}}
	var err error
	if b.Position, err = ParsePair(pos); err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	if b.FontSize, err = optionalLength(raw, "font_size"); err != nil {
		return nil, err
	}
	if b.Color, err = optionalColor(raw, "color"); err != nil {
		return nil, err
	}
	if b.Bold, err = optionalBool(raw, "bold", "font_bold"); err != nil {
		return nil, err
	}
	if b.Italic, err = optionalBool(raw, "italic", "font_italic"); err != nil {
		return nil, err
	}
	wrap, err := optionalBool(raw, "text_wrap", "wrap")
	if err != nil {
		return nil, err
	}
	b.Wrap = wrap != nil && *wrap
	if ww, err := optionalLength(raw, "text_wrap_width", "wrap_width"); err != nil {
		return nil, err
	} else if ww != nil {
		b.WrapWidth = *ww
	}
	if b.Align, err = ParseAlign(lookup(raw, "text_align", "align")); err != nil {
		return nil, err
	}
	return b, nil
}

func parseListBlock(raw map[string]any) (*ListBlock, error) {
	start, ok := raw["start_position"]
	if !ok {
		return nil, fmt.Errorf("%w: 列表块缺少 start_position", ErrMalformedBlock)
	}
	b := &ListBlock{
		Margin:  MarginSpec{{Value: 0.5, Unit: UnitREM}, {Value: 0.5, Unit: UnitREM}, {Value: 0.5, Unit: UnitREM}, {Value: 0.5, Unit: UnitREM}},
		Columns: 1,
		Width:   Length{Value: 100, Unit: UnitVW},
		Height:  Length{Value: 100, Unit: UnitVH},
	}
	var err error
	if b.StartPosition, err = ParsePair(start); err != nil {
		return nil, fmt.Errorf("start_position: %w", err)
	}
	if v, ok := raw["margin"]; ok {
		if b.Margin, err = ParseMarginSpec(v); err != nil {
			return nil, fmt.Errorf("margin: %w", err)
		}
	}
	if b.OutBorder, err = ParseBorderSpec(raw["out_border"]); err != nil {
		return nil, fmt.Errorf("out_border: %w", err)
	}
	if b.InnerBorder, err = ParseBorderSpec(raw["inner_border"]); err != nil {
		return nil, fmt.Errorf("inner_border: %w", err)
	}
	if v := lookup(raw, "column", "column_count"); v != nil {
		n, err := ParseLength(v)
		if err != nil || n.Unit != UnitPX || n.Value != math.Trunc(n.Value) {
			return nil, fmt.Errorf("%w: column 必须是整数，实际为 %v", ErrInvalidConfig, v)
		}
		b.Columns = int(n.Value)
	}
	if b.Columns <= 0 {
		return nil, fmt.Errorf("%w: column 必须大于 0，实际为 %d", ErrInvalidConfig, b.Columns)
	}
	if l, err := optionalLength(raw, "width"); err != nil {
		return nil, err
	} else if l != nil {
		b.Width = *l
	}
	if l, err := optionalLength(raw, "height"); err != nil {
		return nil, err
	} else if l != nil {
		b.Height = *l
	}

	items, ok := toSlice(raw["list"])
	if !ok && raw["list"] != nil {
		return nil, fmt.Errorf("%w: list 必须是数组", ErrMalformedBlock)
	}
	for _, entry := range items {
		item, err := parseItem(entry)
		if err != nil {
			if !IsRecoverable(err) {
				return nil, err
			}
			item = Item{Invalid: err}
		}
		b.Items = append(b.Items, item)
	}
	return b, nil
}

func parseItem(v any) (Item, error) {
	raw, ok := v.(map[string]any)
	if !ok {
		return Item{}, fmt.Errorf("%w: 列表条目必须是对象", ErrMalformedBlock)
	}
	text, ok := raw["text"]
	if !ok {
		return Item{}, fmt.Errorf("%w: 列表条目缺少 text", ErrMalformedBlock)
	}
	item := Item{Text: fmt.Sprint(text)}
	var err error
	if item.FontSize, err = optionalLength(raw, "font_size"); err != nil {
		return Item{}, err
	}
	if item.Color, err = optionalColor(raw, "color"); err != nil {
		return Item{}, err
	}
	if item.Bold, err = optionalBool(raw, "bold", "font_bold"); err != nil {
		return Item{}, err
	}
	if item.Italic, err = optionalBool(raw, "italic", "font_italic"); err != nil {
		return Item{}, err
	}
	wrap, err := optionalBool(raw, "text_wrap", "wrap")
	if err != nil {
		return Item{}, err
	}
	item.Wrap = wrap != nil && *wrap
	if v, ok := raw["margin"]; ok {
		m, err := ParseMarginSpec(v)
		if err != nil {
			return Item{}, fmt.Errorf("margin: %w", err)
		}
		item.Margin = &m
	}
	if item.Align, err = ParseAlign(lookup(raw, "text_align", "align")); err != nil {
		return Item{}, err
	}
	return item, nil
}

func lookup(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v
		}
	}
	return nil
}

func optionalLength(raw map[string]any, keys ...string) (*Length, error) {
	v := lookup(raw, keys...)
	if v == nil {
		return nil, nil
	}
	l, err := ParseLength(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", keys[0], err)
	}
	return &l, nil
}

func optionalColor(raw map[string]any, key string) (*Color, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	c, err := ParseColor(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &c, nil
}

func optionalBool(raw map[string]any, keys ...string) (*bool, error) {
	v := lookup(raw, keys...)
	if v == nil {
		return nil, nil
	}
	switch b := v.(type) {
	case bool:
		return &b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %s 需要布尔值，实际为 %q", ErrInvalidConfig, keys[0], b)
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("%w: %s 需要布尔值，实际为 %v", ErrInvalidConfig, keys[0], v)
	}
}
