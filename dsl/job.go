package dsl

import (
	"fmt"
	"strconv"
)

// payloadKeys 是码负载的两种写法，其余顶层赋值都视为卡片属性。
var payloadKeys = map[string]bool{"code": true, "payload": true}

// Job 把文档转换为与 YAML/JSON 任务文件相同的结构：
//
//	{name, code, card: {...}, blocks: [...]}
func (d *Document) Job() (map[string]any, error) {
	if d == nil || d.Body == nil {
		return nil, fmt.Errorf("文档为空")
	}
	cardMap := map[string]any{}
	job := map[string]any{"name": d.Name, "card": cardMap}
	blocks := []any{}
	for _, st := range d.Body.Statements {
		switch {
		case st.Assignment != nil:
			v, err := st.Assignment.Value.Interface()
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", st.Assignment.Pos, st.Assignment.Key, err)
			}
			if payloadKeys[st.Assignment.Key] {
				job["code"] = v
				continue
			}
			cardMap[st.Assignment.Key] = v
		case st.Text != nil:
			m, err := textBlock(st.Text)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, m)
		case st.List != nil:
			m, err := listBlock(st.List)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, m)
		case st.Item != nil:
			return nil, fmt.Errorf("%s: item 只能出现在 list 中", st.Item.Pos)
		}
	}
	job["blocks"] = blocks
	return job, nil
}

func textBlock(t *TextStatement) (map[string]any, error) {
	m := map[string]any{"text": string(t.Content)}
	if err := assignInto(m, t.Block, "text"); err != nil {
		return nil, fmt.Errorf("%s: %w", t.Pos, err)
	}
	return m, nil
}

func listBlock(l *ListStatement) (map[string]any, error) {
	items := []any{}
	m := map[string]any{}
	for _, st := range l.Block.Statements {
		switch {
		case st.Item != nil:
			item := map[string]any{"text": string(st.Item.Content)}
			if err := assignInto(item, st.Item.Block, "item"); err != nil {
				return nil, fmt.Errorf("%s: %w", st.Item.Pos, err)
			}
			items = append(items, item)
		case st.Assignment != nil:
			v, err := st.Assignment.Value.Interface()
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", st.Assignment.Pos, st.Assignment.Key, err)
			}
			m[st.Assignment.Key] = v
		default:
			return nil, fmt.Errorf("%s: list 中只允许 item 与属性赋值", l.Pos)
		}
	}
	m["list"] = items
	return m, nil
}

// assignInto 只接受赋值语句。
func assignInto(m map[string]any, b *Block, owner string) error {
	if b == nil {
		return nil
	}
	for _, st := range b.Statements {
		if st.Assignment == nil {
			return fmt.Errorf("%s 中只允许属性赋值", owner)
		}
		v, err := st.Assignment.Value.Interface()
		if err != nil {
			return fmt.Errorf("%s: %w", st.Assignment.Key, err)
		}
		m[st.Assignment.Key] = v
	}
	return nil
}

// Interface 把值转换为 JSON 风格的 Go 值：不带单位的数字为 float64，带单位的保留字符串。
func (v *Value) Interface() (any, error) {
	switch {
	case v == nil:
		return nil, nil
	case v.String != nil:
		return string(*v.String), nil
	case v.Number != nil:
		if f, err := strconv.ParseFloat(*v.Number, 64); err == nil {
			return f, nil
		}
		return *v.Number, nil
	case v.Color != nil:
		return *v.Color, nil
	case v.Bool != nil:
		return bool(*v.Bool), nil
	case v.Array != nil:
		elems := v.Array.Values
		if elems == nil {
			elems = v.Array.Tuple
		}
		out := make([]any, 0, len(elems))
		for _, e := range elems {
			x, err := e.Interface()
			if err != nil {
				return nil, err
			}
			out = append(out, x)
		}
		return out, nil
	case v.Ident != nil:
		return *v.Ident, nil
	default:
		return nil, fmt.Errorf("空值")
	}
}
