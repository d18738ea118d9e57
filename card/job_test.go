package card

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ByLCY/qrcard/layout"
)

const yamlJob = `
name: equipment
code: ${asset.id}
card:
  size: [350, 180]
  background: "#ffffff"
  qr_position: [20, 40]
  font_size: 14
  border: ["#333", 2]
blocks:
  - text: 设备标识牌
    position: [150, 40]
    font_size: 32
  - list:
      - text: "名称: ${asset.name}"
      - text: "位置: ${asset.site}"
    start_position: [150, 90]
    column: 1
    inner_border: true
`

const jsonJob = `{
  "code": "JDY20180928-093",
  "card": {"size": [350, 180]},
  "blocks": [{"text": "设备标识牌", "position": [150, 40], "font_size": 32}]
}`

const cardJob = `
card Equipment {
  code: "JDY20180928-093"
  size: [350, 180]
  text "设备标识牌" { position: [150, 40]; font_size: 32 }
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入 %s 失败: %v", name, err)
	}
	return path
}

func TestLoadJobFormats(t *testing.T) {
	for name, content := range map[string]string{"job.json": jsonJob, "job.card": cardJob, "job.yaml": yamlJob} {
		job, err := LoadJob(writeFile(t, name, content))
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", name, err)
		}
		if len(job.Blocks) == 0 || job.Blocks[0]["text"] != "设备标识牌" {
			t.Fatalf("%s 的块解析错误: %+v", name, job.Blocks)
		}
		opts, err := job.Options()
		if err != nil {
			t.Fatalf("%s 的配置解析失败: %v", name, err)
		}
		if w, h := opts.Size.Resolve(layout.Basis{}); w != 350 || h != 180 {
			t.Fatalf("%s 的画布尺寸错误: %dx%d", name, w, h)
		}
	}
}

func TestLoadJobMissingFile(t *testing.T) {
	if _, err := LoadJob(filepath.Join(t.TempDir(), "none.yaml")); !errors.Is(err, ErrResource) {
		t.Fatalf("期望 ErrResource，实际 %v", err)
	}
}

// TestJobBindAndRun 绑定数据后生成，未找到的占位符原样保留并被报告。
func TestJobBindAndRun(t *testing.T) {
	job, err := LoadJob(writeFile(t, "job.yml", yamlJob))
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	data := map[string]any{"asset": map[string]any{"id": "JDY20180928-093", "name": "泵"}}
	bound, missing := job.Bind(data)
	if bound.Payload != "JDY20180928-093" {
		t.Fatalf("负载绑定错误: %q", bound.Payload)
	}
	if !reflect.DeepEqual(missing, []string{"asset.site"}) {
		t.Fatalf("期望缺失 [asset.site]，实际 %v", missing)
	}
	if job.Payload != "${asset.id}" {
		t.Fatalf("原任务不应被修改")
	}

	opts, err := bound.Options()
	if err != nil {
		t.Fatalf("配置解析失败: %v", err)
	}
	if opts.DefaultFontSize != 14 || !opts.Border.Enabled {
		t.Fatalf("配置字段错误: %+v", opts)
	}
	opts.VerifyCode = true
	g, out, err := bound.Run(opts)
	if err != nil {
		t.Fatalf("生成失败: %v", err)
	}
	defer g.Close()
	items := out.Result.Lists
	if len(items) != 1 || len(items[0].Rows) != 2 {
		t.Fatalf("列表几何错误: %+v", items)
	}
	if out.Result.Frame == nil {
		t.Fatalf("期望画布边框")
	}
}

func TestParseOptionsErrors(t *testing.T) {
	cases := []map[string]any{
		{"size": []any{"100vw", 180}},
		{"size": []any{"abc", 180}},
		{"qr_size": []any{1, 2, 3}},
		{"background": "nope"},
		{"font_size": "2rem"},
		{"bold": "yes"},
		{"border": "thick"},
	}
	for _, raw := range cases {
		opts, err := ParseOptions(raw)
		if err == nil {
			_, err = New(opts)
		}
		if !errors.Is(err, layout.ErrInvalidConfig) {
			t.Fatalf("%v 期望 ErrInvalidConfig，实际 %v", raw, err)
		}
	}
	if _, err := ParseOptions(map[string]any{"font_path": "/nonexistent/font.ttf"}); !errors.Is(err, ErrResource) {
		t.Fatalf("字体不存在期望 ErrResource，实际 %v", err)
	}
}

func TestJobFromMapErrors(t *testing.T) {
	if _, err := JobFromMap(map[string]any{"blocks": "x"}); err == nil {
		t.Fatalf("blocks 不是数组时应报错")
	}
	if _, err := JobFromMap(map[string]any{"card": []any{1}}); err == nil {
		t.Fatalf("card 不是对象时应报错")
	}
	job, err := JobFromMap(map[string]any{"payload": 42})
	if err != nil || job.Payload != "42" {
		t.Fatalf("payload 键应被接受: %+v %v", job, err)
	}
}

func TestSampleJobs(t *testing.T) {
	for _, path := range []string{"../examples/equipment.yaml", "../examples/equipment.card"} {
		job, err := LoadJob(path)
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", path, err)
		}
		job, _ = job.Bind(map[string]any{"asset": map[string]any{"id": "A-1", "name": "泵", "site": "一号车间"}, "name": "泵"})
		opts, err := job.Options()
		if err != nil {
			t.Fatalf("%s 配置解析失败: %v", path, err)
		}
		g, out, err := job.Run(opts)
		if err != nil {
			t.Fatalf("%s 生成失败: %v", path, err)
		}
		g.Close()
		if len(out.Skipped()) != 0 {
			t.Fatalf("%s 不应跳过任何块: %+v", path, out.Skipped())
		}
	}
}
