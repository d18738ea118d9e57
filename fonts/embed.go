package fonts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultPath 是未配置字体时使用的内置字体，覆盖常用汉字。
const DefaultPath = "embed:unifont"

//go:embed unifont/unifont-13.0.05.ttf
var unifontTTF []byte

var builtin = map[string][]byte{
	"unifont":      unifontTTF,
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomono":       gomono.TTF,
}

// Load 返回字体的字节数据，path 可写为 "embed:unifont"、"embed:goregular" 或本地 TTF/OTF 路径。
func Load(path string) ([]byte, error) {
	if name, ok := strings.CutPrefix(path, "embed:"); ok {
		data, ok := builtin[name]
		if !ok {
			return nil, fmt.Errorf("未知的内置字体 %s", name)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", path, err)
	}
	return data, nil
}

// Manager 保存当前使用的字体路径与名称，多个生成器可以共享同一个 Manager。
type Manager struct {
	mu   sync.RWMutex
	path string
	name string
}

// NewManager 返回使用内置字体的 Manager。
func NewManager() *Manager {
	return &Manager{path: DefaultPath, name: "Unifont"}
}

// SetFont 仅当文件存在时切换字体，返回是否生效。name 为空时取文件名。
func (m *Manager) SetFont(path, name string) bool {
	if !strings.HasPrefix(path, "embed:") {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return false
		}
	} else if _, ok := builtin[strings.TrimPrefix(path, "embed:")]; !ok {
		return false
	}
	if name == "" {
		name = fontName(path)
	}
	m.mu.Lock()
	m.path, m.name = path, name
	m.mu.Unlock()
	return true
}

func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

func (m *Manager) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

// Load 读取当前字体的字节数据。
func (m *Manager) Load() ([]byte, error) {
	return Load(m.Path())
}

func fontName(path string) string {
	path = strings.TrimPrefix(path, "embed:")
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.LastIndex(path, "."); i > 0 {
		path = path[:i]
	}
	return path
}

// Style 是字体变体。
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// StyleOf 根据粗体、斜体标记返回对应的变体。
func StyleOf(bold, italic bool) Style {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

// Variants 返回当前字体可用的变体。内置 goregular 带全部四种 Go 字体，
// 其他字体只有 Regular，其余变体由绘制端合成。
func (m *Manager) Variants() (map[Style][]byte, error) {
	path := m.Path()
	data, err := Load(path)
	if err != nil {
		return nil, err
	}
	out := map[Style][]byte{Regular: data}
	if path == "embed:goregular" {
		out[Bold] = gobold.TTF
		out[Italic] = goitalic.TTF
		out[BoldItalic] = gobolditalic.TTF
	}
	return out, nil
}
