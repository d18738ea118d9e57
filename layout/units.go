package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths used by cards and blocks.

// Unit represents the original unit of a length value as specified by the caller.
type Unit int

const (
	UnitPX  Unit = iota // absolute pixels
	UnitREM             // relative to the basis font size
	UnitVW              // percent of the container width
	UnitVH              // percent of the container height
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitREM:
		return "rem"
	case UnitVW:
		return "vw"
	case UnitVH:
		return "vh"
	default:
		return ""
	}
}

// Basis carries everything needed to turn a relative length into pixels.
type Basis struct {
	FontSize float64 // px
	Width    float64 // container width, px
	Height   float64 // container height, px
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Px builds an absolute length.
func Px(v float64) Length { return Length{Value: v, Unit: UnitPX} }

func (l Length) IsZero() bool { return l.Value == 0 }

// IsContainerRelative reports whether the length depends on the container size.
func (l Length) IsContainerRelative() bool { return l.Unit == UnitVW || l.Unit == UnitVH }

// Pixels converts the length to (unrounded) pixels against the basis.
func (l Length) Pixels(b Basis) float64 {
	switch l.Unit {
	case UnitREM:
		return l.Value * b.FontSize
	case UnitVW:
		return l.Value / 100 * b.Width
	case UnitVH:
		return l.Value / 100 * b.Height
	default:
		return l.Value
	}
}

// Resolve converts the length to whole pixels. Rounds to nearest to avoid systematic drift.
func (l Length) Resolve(b Basis) int {
	return int(math.Round(l.Pixels(b)))
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// ParseRawLengthStr parses "12", "12px", "0.5rem", "10vw" or "5vh".
func ParseRawLengthStr(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("%w: 空字符串", ErrInvalidUnit)
	}
	unit := UnitPX
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"rem", UnitREM}, {"px", UnitPX}, {"vw", UnitVW}, {"vh", UnitVH}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Length{}, fmt.Errorf("%w: %q", ErrInvalidUnit, value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParseLength accepts the loosely typed values produced by JSON, YAML or the DSL.
func ParseLength(v any) (Length, error) {
	switch n := v.(type) {
	case Length:
		return n, nil
	case int:
		return Px(float64(n)), nil
	case int64:
		return Px(float64(n)), nil
	case uint64:
		return Px(float64(n)), nil
	case float32:
		return Px(float64(n)), nil
	case float64:
		return Px(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return Length{}, fmt.Errorf("%w: %q", ErrInvalidUnit, n.String())
		}
		return Px(f), nil
	case string:
		return ParseRawLengthStr(n)
	default:
		return Length{}, fmt.Errorf("%w: 不支持的长度类型 %T", ErrInvalidUnit, v)
	}
}

// Pair is an (x, y) or (width, height) couple of lengths.
type Pair [2]Length

// ParsePair parses a two element sequence.
func ParsePair(v any) (Pair, error) {
	items, ok := toSlice(v)
	if !ok || len(items) != 2 {
		return Pair{}, fmt.Errorf("%w: 需要两个值，实际为 %v", ErrInvalidUnit, v)
	}
	var p Pair
	for i, item := range items {
		l, err := ParseLength(item)
		if err != nil {
			return Pair{}, err
		}
		p[i] = l
	}
	return p, nil
}

// Resolve resolves both elements with the same basis.
func (p Pair) Resolve(b Basis) (int, int) {
	return p[0].Resolve(b), p[1].Resolve(b)
}

// MarginSpec keeps the unresolved (top, right, bottom, left) lengths.
type MarginSpec [4]Length

// ParseMarginSpec applies the 1/2/4 value rule:
//
//	(a)          -> a a a a
//	(a, b)       -> a b a b   (top/bottom, left/right)
//	(a, b, c, d) -> top right bottom left
//
// Any other length is a configuration error.
func ParseMarginSpec(v any) (MarginSpec, error) {
	items, ok := toSlice(v)
	if !ok {
		items = []any{v}
	}
	vals := make([]Length, 0, len(items))
	for _, item := range items {
		l, err := ParseLength(item)
		if err != nil {
			return MarginSpec{}, err
		}
		vals = append(vals, l)
	}
	switch len(vals) {
	case 1:
		return MarginSpec{vals[0], vals[0], vals[0], vals[0]}, nil
	case 2:
		return MarginSpec{vals[0], vals[1], vals[0], vals[1]}, nil
	case 4:
		return MarginSpec{vals[0], vals[1], vals[2], vals[3]}, nil
	default:
		return MarginSpec{}, fmt.Errorf("%w: margin 只支持 1、2、4 个值，实际 %d 个", ErrInvalidConfig, len(vals))
	}
}

// Resolve converts the margin to pixels.
func (m MarginSpec) Resolve(b Basis) Margin {
	return Margin{
		Top:    float64(m[0].Resolve(b)),
		Right:  float64(m[1].Resolve(b)),
		Bottom: float64(m[2].Resolve(b)),
		Left:   float64(m[3].Resolve(b)),
	}
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []Length:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}
