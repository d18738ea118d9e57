package layout

import "math"

// 边框与分隔线只由列表已完成的行几何推导，不含任何排版逻辑。

// resolveBorder 返回描边颜色与宽度；未启用时 ok 为 false。
// 启用但宽度解析为 0 时至少使用 1px。
func resolveBorder(spec BorderSpec, basis Basis) (Color, float64, bool) {
	if !spec.Enabled {
		return Color{}, 0, false
	}
	w := float64(spec.Width.Resolve(basis))
	if w < 1 {
		w = 1
	}
	return spec.Color, w, true
}

// contentHeight 是最后一行底部到起点的距离加上列表下边距；没有行时退回 fallback。
func contentHeight(geo ListGeometry, fallback float64) float64 {
	if len(geo.Rows) == 0 {
		return fallback
	}
	return geo.Rows[len(geo.Rows)-1].Bottom - geo.Y + geo.Margin.Bottom
}

// innerSeparators 生成 columns-1 条竖线与每个行间隙一条横线。
// 横线位于上一行 Bottom 与下一行 ContentTop 的中点。
func innerSeparators(geo ListGeometry, spec BorderSpec, basis Basis) []Line {
	col, w, ok := resolveBorder(spec, basis)
	if !ok {
		return nil
	}
	var lines []Line
	for c := 1; c < geo.Columns; c++ {
		x := geo.X + geo.Margin.Left + float64(c)*geo.ColumnWidth
		lines = append(lines, Line{X1: x, Y1: geo.Y, X2: x, Y2: geo.Y + geo.Height, Color: col, Width: w})
	}
	for i := 0; i+1 < len(geo.Rows); i++ {
		y := (geo.Rows[i].Bottom + geo.Rows[i+1].ContentTop) / 2
		lines = append(lines, Line{X1: geo.X, Y1: y, X2: geo.X + geo.Width, Y2: y, Color: col, Width: w})
	}
	return lines
}

// outerRect 从起点画到 (起点 x + width, 起点 y + 实际内容高度)。
func outerRect(geo ListGeometry, spec BorderSpec, basis Basis) *Rect {
	col, w, ok := resolveBorder(spec, basis)
	if !ok {
		return nil
	}
	return &Rect{X: geo.X, Y: geo.Y, Width: geo.Width, Height: geo.Height, StrokeColor: col, StrokeWidth: w}
}

// frameRect 是画布级边框，向内收半个线宽以保证描边完整可见。
func frameRect(spec BorderSpec, width, height int, basis Basis) *Rect {
	col, w, ok := resolveBorder(spec, basis)
	if !ok {
		return nil
	}
	half := w / 2
	return &Rect{
		X:           half,
		Y:           half,
		Width:       math.Max(float64(width)-w, 0),
		Height:      math.Max(float64(height)-w, 0),
		StrokeColor: col,
		StrokeWidth: w,
	}
}
