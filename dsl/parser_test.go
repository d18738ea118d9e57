package dsl_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/qrcard/dsl"
)

const sampleDSL = `
// 设备标识牌
card Equipment {
  code: "JDY20180928-093"
  size: [350, 180]
  background: white
  code_position: (20, 40)
  font_size: 12
  border: true

  text "设备标识牌" {
    position: [150, 40]
    font_size: 32
    color: #333
  }

  list {
    start_position: ["40vw", 90]
    margin: [0.5rem, 0]
    column: 2
    inner_border: true
    out_border: ["#333333", 1px]
    item "名称: ${name}"
    item "型号: X-1" { color: red; align: center }
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Equipment" {
		t.Fatalf("expected card name Equipment, got %s", doc.Name)
	}
	var texts, lists int
	for _, st := range doc.Body.Statements {
		if st.Text != nil {
			texts++
		}
		if st.List != nil {
			lists++
		}
	}
	if texts != 1 || lists != 1 {
		t.Fatalf("expected 1 text and 1 list, got %d/%d", texts, lists)
	}
}

func TestDocumentJob(t *testing.T) {
	doc, err := dsl.Parse(strings.NewReader(sampleDSL))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	job, err := doc.Job()
	if err != nil {
		t.Fatalf("job failed: %v", err)
	}
	if job["code"] != "JDY20180928-093" {
		t.Fatalf("unexpected code %v", job["code"])
	}
	card := job["card"].(map[string]any)
	if !reflect.DeepEqual(card["size"], []any{350.0, 180.0}) {
		t.Fatalf("unexpected size %v", card["size"])
	}
	if !reflect.DeepEqual(card["code_position"], []any{20.0, 40.0}) {
		t.Fatalf("tuple should become array, got %v", card["code_position"])
	}
	if card["background"] != "white" || card["border"] != true {
		t.Fatalf("unexpected card fields %v", card)
	}

	blocks := job["blocks"].([]any)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	text := blocks[0].(map[string]any)
	if text["text"] != "设备标识牌" || text["color"] != "#333" || text["font_size"] != 32.0 {
		t.Fatalf("unexpected text block %v", text)
	}
	list := blocks[1].(map[string]any)
	if !reflect.DeepEqual(list["margin"], []any{"0.5rem", 0.0}) {
		t.Fatalf("unexpected margin %v", list["margin"])
	}
	if list["out_border"].([]any)[1] != "1px" {
		t.Fatalf("unit suffix should be kept, got %v", list["out_border"])
	}
	items := list["list"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	second := items[1].(map[string]any)
	if second["text"] != "型号: X-1" || second["color"] != "red" || second["align"] != "center" {
		t.Fatalf("unexpected item %v", second)
	}
}

func TestItemOutsideList(t *testing.T) {
	doc, err := dsl.ParseString(`card A { item "x" }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, err := doc.Job(); err == nil {
		t.Fatalf("item outside list should fail")
	}
}

func TestParseError(t *testing.T) {
	if _, err := dsl.ParseString(`card { }`); err == nil {
		t.Fatalf("missing card name should fail")
	}
}
