package fonts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func TestDefaultFont(t *testing.T) {
	m := NewManager()
	data, err := m.Load()
	if err != nil {
		t.Fatalf("加载默认字体失败: %v", err)
	}
	if !bytes.Equal(data, unifontTTF) {
		t.Fatalf("默认字体应为内置 unifont")
	}
}

// TestDefaultFontCoversCJK 默认字体必须能画出标签上的汉字，而不是缺字方框。
func TestDefaultFontCoversCJK(t *testing.T) {
	data, err := NewManager().Load()
	if err != nil {
		t.Fatalf("加载默认字体失败: %v", err)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		t.Fatalf("解析默认字体失败: %v", err)
	}
	var buf sfnt.Buffer
	for _, r := range "设备标识牌名称位置Ab1:" {
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			t.Fatalf("查询 %q 失败: %v", r, err)
		}
		if idx == 0 {
			t.Fatalf("默认字体缺少字形 %q", r)
		}
	}
}

// TestSetFontRequiresExistingFile 文件不存在时保持原字体不变。
func TestSetFontRequiresExistingFile(t *testing.T) {
	m := NewManager()
	if m.SetFont(filepath.Join(t.TempDir(), "missing.ttf"), "Missing") {
		t.Fatalf("不存在的文件不应生效")
	}
	if m.Path() != DefaultPath {
		t.Fatalf("字体路径不应改变，实际 %s", m.Path())
	}

	path := filepath.Join(t.TempDir(), "Custom-Regular.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatalf("写入字体失败: %v", err)
	}
	if !m.SetFont(path, "") {
		t.Fatalf("存在的文件应生效")
	}
	if m.Name() != "Custom-Regular" {
		t.Fatalf("字体名称期望 Custom-Regular，实际 %s", m.Name())
	}
	if data, err := m.Load(); err != nil || len(data) != len(goregular.TTF) {
		t.Fatalf("读取自定义字体失败: %v", err)
	}
}

func TestBuiltinFonts(t *testing.T) {
	m := NewManager()
	if !m.SetFont("embed:gobold", "") || m.Name() != "gobold" {
		t.Fatalf("切换到内置 gobold 失败")
	}
	if m.SetFont("embed:nope", "") {
		t.Fatalf("未知内置字体不应生效")
	}
}

func TestVariants(t *testing.T) {
	m := NewManager()
	v, err := m.Variants()
	if err != nil || len(v) != 1 {
		t.Fatalf("默认字体只应有 Regular 变体: %d %v", len(v), err)
	}
	m.SetFont("embed:goregular", "Go")
	if v, err = m.Variants(); err != nil || len(v) != 4 {
		t.Fatalf("goregular 应带四种变体: %d %v", len(v), err)
	}
}
