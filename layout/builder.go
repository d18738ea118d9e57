package layout

import (
	"fmt"
	"math"
)

// Build 根据画布配置与输入块生成全部文本、分隔线与边框的几何信息。
// 可恢复的错误在块边界被转换为 Outcome；其余错误直接返回，结果作废。
func Build(canvas Canvas, blocks []Block, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return nil, fmt.Errorf("%w: 画布尺寸必须为正数，实际 %dx%d", ErrInvalidConfig, canvas.Width, canvas.Height)
	}
	if canvas.DefaultFont.Size <= 0 {
		return nil, fmt.Errorf("%w: 默认字号必须为正数", ErrInvalidConfig)
	}
	// 在任何绘制之前先校验配置类错误。
	for i, block := range blocks {
		if lb, ok := block.(*ListBlock); ok && lb.Columns <= 0 {
			return nil, fmt.Errorf("第 %d 个块: %w: column 必须大于 0，实际为 %d", i, ErrInvalidConfig, lb.Columns)
		}
	}

	ctx := &buildContext{
		canvas:     canvas,
		basis:      canvas.Basis(),
		typesetter: opts.Typesetter,
	}
	res := &Result{
		Width:      canvas.Width,
		Height:     canvas.Height,
		Background: canvas.Background,
		Texts:      []TextBox{},
	}
	res.Frame = frameRect(canvas.Border, canvas.Width, canvas.Height, ctx.basis)

	for i, block := range blocks {
		acc := &blockAccumulator{}
		var err error
		kind := "invalid"
		switch b := block.(type) {
		case *TextBlock:
			kind = b.Kind()
			err = ctx.layoutText(b, acc)
		case *ListBlock:
			kind = b.Kind()
			err = ctx.layoutList(i, b, acc)
		case *InvalidBlock:
			kind = b.Kind()
			err = b.Err
		case nil:
			err = fmt.Errorf("%w: 空块", ErrMalformedBlock)
		default:
			return nil, fmt.Errorf("第 %d 个块: %w: 未知块类型 %T", i, ErrInvalidConfig, block)
		}
		if err != nil {
			if !IsRecoverable(err) {
				return nil, fmt.Errorf("第 %d 个块: %w", i, err)
			}
			res.Outcomes = append(res.Outcomes, Outcome{Block: i, Item: -1, Kind: kind, Skipped: true, Reason: err.Error(), Err: err})
			continue
		}
		acc.commit(res)
		res.Outcomes = append(res.Outcomes, Outcome{Block: i, Item: -1, Kind: kind})
		res.Outcomes = append(res.Outcomes, acc.outcomes...)
	}
	return res, nil
}

type buildContext struct {
	canvas     Canvas
	basis      Basis
	typesetter Typesetter
}

// blockAccumulator 暂存单个块的几何，块成功后才并入结果，避免半成品污染已绘制内容。
type blockAccumulator struct {
	texts    []TextBox
	lines    []Line
	rects    []Rect
	lists    []ListGeometry
	outcomes []Outcome
}

func (a *blockAccumulator) commit(res *Result) {
	res.Texts = append(res.Texts, a.texts...)
	res.Lines = append(res.Lines, a.lines...)
	res.Rects = append(res.Rects, a.rects...)
	res.Lists = append(res.Lists, a.lists...)
}

func (ctx *buildContext) fontFor(size *Length, bold, italic *bool) (FontSpec, error) {
	font := ctx.canvas.DefaultFont
	if size != nil {
		font.Size = float64(size.Resolve(ctx.basis))
		if font.Size <= 0 {
			return FontSpec{}, fmt.Errorf("%w: 字号 %s 解析后不是正数", ErrInvalidUnit, size)
		}
	}
	if bold != nil {
		font.Bold = *bold
	}
	if italic != nil {
		font.Italic = *italic
	}
	return font, nil
}

func (ctx *buildContext) colorFor(c *Color) Color {
	if c != nil {
		return *c
	}
	return ctx.canvas.DefaultColor
}

// measureLines 返回文本的行；不折行时整段作为一行测量。
func (ctx *buildContext) measureLines(text string, wrap bool, width float64, font FontSpec) ([]TextLine, error) {
	if wrap {
		lines, err := ctx.typesetter.LayoutLines(text, width, font)
		if err != nil {
			return nil, fmt.Errorf("文本折行失败: %w", err)
		}
		return lines, nil
	}
	ext, err := ctx.typesetter.Measure(text, font)
	if err != nil {
		return nil, fmt.Errorf("文本测量失败: %w", err)
	}
	return []TextLine{{Content: text, Width: ext.Width, Height: ext.Height}}, nil
}

// layoutText 处理自由文本块：坐标原样使用，不做溢出处理。
func (ctx *buildContext) layoutText(b *TextBlock, acc *blockAccumulator) error {
	x, y := b.Position.Resolve(ctx.basis)
	font, err := ctx.fontFor(b.FontSize, b.Bold, b.Italic)
	if err != nil {
		return err
	}
	tb := TextBox{
		X:     float64(x),
		Y:     float64(y),
		Font:  font,
		Color: ctx.colorFor(b.Color),
		Align: AlignStart,
	}
	width := 0.0
	if b.Wrap {
		width = float64(b.WrapWidth.Resolve(ctx.basis))
		tb.Align = b.Align
	}
	if tb.Lines, err = ctx.measureLines(b.Text, b.Wrap, width, font); err != nil {
		return err
	}
	tb.Width = width
	if !b.Wrap {
		tb.Width = MaxWidth(tb.Lines)
	}
	tb.Height = StackHeight(tb.Lines)
	acc.texts = append(acc.texts, tb)
	return nil
}

type measuredItem struct {
	item   *Item
	font   FontSpec
	color  Color
	margin Margin
	lines  []TextLine
	width  float64
	height float64
}

// layoutList 两遍处理列表块：先预测每个条目的高度，再逐行定位。
func (ctx *buildContext) layoutList(blockIdx int, b *ListBlock, acc *blockAccumulator) error {
	if b.Columns <= 0 {
		return fmt.Errorf("%w: column 必须大于 0，实际为 %d", ErrInvalidConfig, b.Columns)
	}
	sx, sy := b.StartPosition.Resolve(ctx.basis)
	startX, startY := float64(sx), float64(sy)
	listMargin := b.Margin.Resolve(ctx.basis)
	width := float64(b.Width.Resolve(ctx.basis))
	colWidth := (width - listMargin.Left - listMargin.Right) / float64(b.Columns)

	// 第一遍：字号、有效 margin 与总高度。
	measured := make([]measuredItem, 0, len(b.Items))
	for i := range b.Items {
		it := &b.Items[i]
		if it.Invalid != nil {
			acc.outcomes = append(acc.outcomes, Outcome{Block: blockIdx, Item: i, Kind: "item", Skipped: true, Reason: it.Invalid.Error(), Err: it.Invalid})
			continue
		}
		font, err := ctx.fontFor(it.FontSize, it.Bold, it.Italic)
		if err != nil {
			acc.outcomes = append(acc.outcomes, Outcome{Block: blockIdx, Item: i, Kind: "item", Skipped: true, Reason: err.Error(), Err: err})
			continue
		}
		margin := listMargin
		if it.Margin != nil {
			margin = it.Margin.Resolve(ctx.basis)
		}
		lines, err := ctx.measureLines(it.Text, it.Wrap, colWidth-margin.Left-margin.Right, font)
		if err != nil {
			return err
		}
		measured = append(measured, measuredItem{
			item:   it,
			font:   font,
			color:  ctx.colorFor(it.Color),
			margin: margin,
			lines:  lines,
			width:  MaxWidth(lines),
			height: StackHeight(lines),
		})
	}
	if len(b.Items) == 0 {
		return nil
	}

	// 第二遍：逐行定位，行高取本行最大值，条目在单元格内垂直居中。
	geo := ListGeometry{
		Block:       blockIdx,
		X:           startX,
		Y:           startY,
		Width:       width,
		ColumnWidth: colWidth,
		Columns:     b.Columns,
		Margin:      listMargin,
	}
	for rowStart := 0; rowStart < len(measured); rowStart += b.Columns {
		row := measured[rowStart:min(rowStart+b.Columns, len(measured))]
		rowHeight, marginTB := 0.0, 0.0
		for _, mi := range row {
			rowHeight = math.Max(rowHeight, mi.height)
			marginTB = math.Max(marginTB, mi.margin.Top+mi.margin.Bottom)
		}
		top := startY + listMargin.Top
		if n := len(geo.Rows); n > 0 {
			top = geo.Rows[n-1].Bottom
		}
		contentTop := math.Inf(1)
		for c, mi := range row {
			cellHeight := rowHeight + mi.margin.Top + mi.margin.Bottom
			y := top + (cellHeight-mi.height)/2
			x := startX + listMargin.Left + float64(c)*colWidth + mi.margin.Left
			slack := math.Max(colWidth-mi.margin.Left-mi.margin.Right-mi.width, 0)
			switch mi.item.Align {
			case AlignCenter:
				x += slack / 2
			case AlignEnd:
				x += slack
			}
			contentTop = math.Min(contentTop, y)
			acc.texts = append(acc.texts, TextBox{
				X:      x,
				Y:      y,
				Width:  mi.width,
				Height: mi.height,
				Font:   mi.font,
				Color:  mi.color,
				Align:  mi.item.Align,
				Lines:  mi.lines,
			})
		}
		geo.Rows = append(geo.Rows, RowGeometry{
			Top:        top,
			ContentTop: contentTop,
			Bottom:     top + rowHeight + marginTB,
			Height:     rowHeight,
		})
	}
	geo.Height = contentHeight(geo, float64(b.Height.Resolve(ctx.basis)))
	if len(geo.Rows) == 0 {
		// 条目全部被跳过时只保留外框，高度取 height。
		if rc := outerRect(geo, b.OutBorder, ctx.basis); rc != nil {
			acc.rects = append(acc.rects, *rc)
		}
		return nil
	}

	acc.lists = append(acc.lists, geo)
	acc.lines = append(acc.lines, innerSeparators(geo, b.InnerBorder, ctx.basis)...)
	if rc := outerRect(geo, b.OutBorder, ctx.basis); rc != nil {
		acc.rects = append(acc.rects, *rc)
	}
	return nil
}
