package layout

import (
	"strings"
)

// LineGap 是相邻两行之间固定的行间距（px）。
const LineGap = 4.0

// MeasureFunc 返回字符串渲染后的包围盒；只查询，不绘制。
type MeasureFunc func(s string) (Extent, error)

// WrapText 按脚本类型折行：段落含 CJK 统一表意文字时逐字符折行，否则按空格逐词折行。
// 每个 "\n" 分隔的段落单独处理，空段落保留为一个空行。
// 行高为该行自身的包围盒高度，除首行外每行带 LineGap 的 GapBefore。
func WrapText(content string, maxWidth float64, measure MeasureFunc) ([]TextLine, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var lines []TextLine
	for _, para := range strings.Split(content, "\n") {
		var (
			segs []string
			err  error
		)
		switch {
		case para == "":
			segs = []string{""}
		case containsCJK(para):
			segs, err = wrapRunes(para, maxWidth, measure)
		default:
			segs, err = wrapWords(para, maxWidth, measure)
		}
		if err != nil {
			return nil, err
		}
		for _, seg := range segs {
			ext, err := measure(seg)
			if err != nil {
				return nil, err
			}
			lines = append(lines, TextLine{Content: seg, Width: ext.Width, Height: ext.Height})
		}
	}
	for i := range lines {
		if i > 0 {
			lines[i].GapBefore = LineGap
		}
	}
	return lines, nil
}

// StackHeight 返回多行文本的总高度：Σ(GapBefore + Height)。
func StackHeight(lines []TextLine) float64 {
	total := 0.0
	for _, ln := range lines {
		total += ln.GapBefore + ln.Height
	}
	return total
}

// MaxWidth 返回最宽一行的宽度。
func MaxWidth(lines []TextLine) float64 {
	w := 0.0
	for _, ln := range lines {
		if ln.Width > w {
			w = ln.Width
		}
	}
	return w
}

func containsCJK(s string) bool {
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

// wrapRunes 逐字符追加，超宽时以该字符开启新行。单个字符本身超宽时独占一行。
func wrapRunes(para string, maxWidth float64, measure MeasureFunc) ([]string, error) {
	var (
		out     []string
		current []rune
	)
	for _, r := range para {
		candidate := append(append([]rune{}, current...), r)
		ext, err := measure(string(candidate))
		if err != nil {
			return nil, err
		}
		if ext.Width > maxWidth && len(current) > 0 {
			out = append(out, string(current))
			current = []rune{r}
			continue
		}
		current = candidate
	}
	if len(current) > 0 {
		out = append(out, string(current))
	}
	return out, nil
}

// wrapWords 逐词追加，不在词内断开；每行至少保留一个词。
func wrapWords(para string, maxWidth float64, measure MeasureFunc) ([]string, error) {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}, nil
	}
	var out []string
	current := ""
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		candidate := current + " " + word
		ext, err := measure(candidate)
		if err != nil {
			return nil, err
		}
		if ext.Width > maxWidth {
			out = append(out, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(out, current), nil
}

// LineTops 返回文本框内每一行顶部的 y 坐标。
func (tb TextBox) LineTops() []float64 {
	tops := make([]float64, len(tb.Lines))
	y := tb.Y
	for i, ln := range tb.Lines {
		y += ln.GapBefore
		tops[i] = y
		y += ln.Height
	}
	return tops
}
