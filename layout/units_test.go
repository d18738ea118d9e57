package layout

import (
	"errors"
	"testing"
)

var testBasis = Basis{FontSize: 12, Width: 350, Height: 180}

// TestRelativeUnitsResolve 覆盖 vw/vh/rem 与纯数字的换算。
func TestRelativeUnitsResolve(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{"50vw", 175},
		{"100vw", 350},
		{"10vh", 18},
		{"2rem", 24},
		{"0.5rem", 6},
		{"12px", 12},
		{"12", 12},
		{12, 12},
		{10.6, 11},
		{"-5", -5},
	}
	for _, c := range cases {
		l, err := ParseLength(c.in)
		if err != nil {
			t.Fatalf("解析 %v 失败: %v", c.in, err)
		}
		if got := l.Resolve(testBasis); got != c.want {
			t.Fatalf("%v 期望 %d，实际 %d", c.in, c.want, got)
		}
	}
}

// TestNumericResolveIdempotent 纯数字解析后再解析一次结果不变。
func TestNumericResolveIdempotent(t *testing.T) {
	for _, v := range []float64{0, 1, 20, 150, 349} {
		first := Px(v).Resolve(testBasis)
		second := Px(float64(first)).Resolve(testBasis)
		if first != second {
			t.Fatalf("数值 %g 两次解析不一致: %d vs %d", v, first, second)
		}
	}
}

func TestParseRawLengthStrRejectsMalformed(t *testing.T) {
	for _, s := range []string{"abcvw", "vw", "1.2.3rem", "12em", ""} {
		if _, err := ParseRawLengthStr(s); !errors.Is(err, ErrInvalidUnit) {
			t.Fatalf("%q 期望 ErrInvalidUnit，实际 %v", s, err)
		}
	}
}

func TestParsePair(t *testing.T) {
	p, err := ParsePair([]any{"10vw", 40})
	if err != nil {
		t.Fatalf("解析坐标失败: %v", err)
	}
	x, y := p.Resolve(testBasis)
	if x != 35 || y != 40 {
		t.Fatalf("坐标期望 (35,40)，实际 (%d,%d)", x, y)
	}
	if _, err := ParsePair([]any{1, 2, 3}); err == nil {
		t.Fatalf("三个分量的坐标应报错")
	}
}

// TestParseMarginSpec 覆盖 1/2/4 值规则，3 个值属于配置错误。
func TestParseMarginSpec(t *testing.T) {
	cases := []struct {
		in   any
		want Margin
	}{
		{[]any{2}, Margin{2, 2, 2, 2}},
		{2, Margin{2, 2, 2, 2}},
		{[]any{2, 4}, Margin{Top: 2, Right: 4, Bottom: 2, Left: 4}},
		{[]any{2, 2, 3, 4}, Margin{Top: 2, Right: 2, Bottom: 3, Left: 4}},
		{[]any{"1rem", "0"}, Margin{Top: 12, Right: 0, Bottom: 12, Left: 0}},
	}
	for _, c := range cases {
		spec, err := ParseMarginSpec(c.in)
		if err != nil {
			t.Fatalf("解析 margin %v 失败: %v", c.in, err)
		}
		if got := spec.Resolve(testBasis); got != c.want {
			t.Fatalf("margin %v 期望 %+v，实际 %+v", c.in, c.want, got)
		}
	}
	if _, err := ParseMarginSpec([]any{1, 2, 3}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("3 个值的 margin 期望 ErrInvalidConfig，实际 %v", err)
	}
}
