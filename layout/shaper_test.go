package layout

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// fixedMeasure 每个字符宽 10px，行高 20px；空串同样返回行高。
func fixedMeasure(s string) (Extent, error) {
	return Extent{Width: float64(utf8.RuneCountInString(s)) * 10, Height: 20}, nil
}

// TestWrapTextOneWordPerLine 宽度只够一个词时每个词独占一行。
func TestWrapTextOneWordPerLine(t *testing.T) {
	lines, err := WrapText("a b c", 10, fixedMeasure)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("期望 3 行，实际 %d: %+v", len(lines), lines)
	}
	for i, want := range []string{"a", "b", "c"} {
		if lines[i].Content != want {
			t.Fatalf("第 %d 行期望 %q，实际 %q", i, want, lines[i].Content)
		}
	}
	if lines[0].GapBefore != 0 || lines[1].GapBefore != LineGap || lines[2].GapBefore != LineGap {
		t.Fatalf("行间距不符合预期: %+v", lines)
	}
	if got := StackHeight(lines); got != 3*20+2*LineGap {
		t.Fatalf("总高度期望 %g，实际 %g", 3*20+2*LineGap, got)
	}
}

// TestWrapTextNeverSplitsWords 拉丁文本只在空格处断开，超宽的单词独占一行。
func TestWrapTextNeverSplitsWords(t *testing.T) {
	input := "a supercalifragilistic word list"
	lines, err := WrapText(input, 60, fixedMeasure)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	var words []string
	for _, ln := range lines {
		if ln.Content == "" {
			t.Fatalf("不应产生空行: %+v", lines)
		}
		if ln.Width > 60 && strings.Contains(ln.Content, " ") {
			t.Fatalf("多词行超宽: %q (%g)", ln.Content, ln.Width)
		}
		words = append(words, strings.Fields(ln.Content)...)
	}
	if strings.Join(words, " ") != input {
		t.Fatalf("折行改变了单词序列: %v", words)
	}
	found := false
	for _, ln := range lines {
		if ln.Content == "supercalifragilistic" {
			found = true
		}
	}
	if !found {
		t.Fatalf("超宽单词应独占一行: %+v", lines)
	}
}

// TestWrapTextCJKWidth CJK 段落逐字符折行，除单字超宽外每行不超过宽度。
func TestWrapTextCJKWidth(t *testing.T) {
	input := "设备标识牌设备标识牌"
	for _, width := range []float64{5, 10, 35, 55, 1000} {
		lines, err := WrapText(input, width, fixedMeasure)
		if err != nil {
			t.Fatalf("折行失败: %v", err)
		}
		var joined strings.Builder
		for _, ln := range lines {
			if ln.Width > width && utf8.RuneCountInString(ln.Content) > 1 {
				t.Fatalf("width=%g 时行 %q 超宽 (%g)", width, ln.Content, ln.Width)
			}
			joined.WriteString(ln.Content)
		}
		if joined.String() != input {
			t.Fatalf("width=%g 时折行丢失字符: %q", width, joined.String())
		}
	}
	lines, _ := WrapText(input, 35, fixedMeasure)
	if len(lines) != 4 || lines[0].Content != "设备标" {
		t.Fatalf("width=35 期望每行 3 个字共 4 行，实际 %+v", lines)
	}
}

// TestWrapTextKeepsBlankLines 连续换行保留为空行，空行也占一行高度。
func TestWrapTextKeepsBlankLines(t *testing.T) {
	lines, err := WrapText("foo\r\n\nbar", 1000, fixedMeasure)
	if err != nil {
		t.Fatalf("折行失败: %v", err)
	}
	if len(lines) != 3 || lines[1].Content != "" {
		t.Fatalf("期望 foo/空行/bar，实际 %+v", lines)
	}
	if lines[1].Height != 20 {
		t.Fatalf("空行高度期望 20，实际 %g", lines[1].Height)
	}
}

func TestLineTops(t *testing.T) {
	tb := TextBox{Y: 100, Lines: []TextLine{
		{Content: "a", Height: 20},
		{Content: "b", Height: 10, GapBefore: LineGap},
		{Content: "c", Height: 20, GapBefore: LineGap},
	}}
	tops := tb.LineTops()
	want := []float64{100, 124, 138}
	for i := range want {
		if tops[i] != want[i] {
			t.Fatalf("第 %d 行顶部期望 %g，实际 %g", i, want[i], tops[i])
		}
	}
}
