package card

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/qrcard/binding"
	"github.com/ByLCY/qrcard/dsl"
)

// Job 是一次生成所需的全部输入：码负载、卡片配置与块列表。
//
//	name: equipment
//	code: JDY20180928-093
//	card: {size: [350, 180], font_size: 12}
//	blocks:
//	  - {text: 设备标识牌, position: [150, 40], font_size: 32}
type Job struct {
	Name    string           `yaml:"name" json:"name"`
	Payload string           `yaml:"code" json:"code"`
	Card    map[string]any   `yaml:"card" json:"card"`
	Blocks  []map[string]any `yaml:"blocks" json:"blocks"`
}

// LoadJob 读取 .yaml/.yml/.json 或 .card 任务文件。
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取任务文件 %s 失败: %v", ErrResource, path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".card":
		doc, err := dsl.ParseString(string(data))
		if err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
		}
		m, err := doc.Job()
		if err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
		}
		return JobFromMap(m)
	default:
		// JSON 是 YAML 的子集，两种格式共用一个解码器。
		var m map[string]any
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("解析 %s 失败: %w", path, err)
		}
		return JobFromMap(m)
	}
}

// JobFromMap 从通用 map 构建任务。payload 也可以写成 payload 键。
func JobFromMap(m map[string]any) (*Job, error) {
	if m == nil {
		return nil, fmt.Errorf("任务为空")
	}
	job := &Job{}
	if v, ok := m["name"]; ok && v != nil {
		job.Name = fmt.Sprint(v)
	}
	switch {
	case m["code"] != nil:
		job.Payload = fmt.Sprint(m["code"])
	case m["payload"] != nil:
		job.Payload = fmt.Sprint(m["payload"])
	}
	if v, ok := m["card"]; ok && v != nil {
		cardMap, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("card 必须是对象，实际为 %T", v)
		}
		job.Card = cardMap
	}
	if v, ok := m["blocks"]; ok && v != nil {
		list, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("blocks 必须是数组，实际为 %T", v)
		}
		for i, item := range list {
			block, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("第 %d 个块必须是对象，实际为 %T", i, item)
			}
			job.Blocks = append(job.Blocks, block)
		}
	}
	return job, nil
}

// Bind 返回替换了 ${path} 占位符的新任务，原任务不变。
// 找不到的占位符保留原文，排序去重后作为第二个返回值给出。
func (j *Job) Bind(data any) (*Job, []string) {
	out := &Job{
		Name:    j.Name,
		Payload: binding.Interpolate(j.Payload, data),
		Card:    j.Card,
	}
	missing := binding.Missing(j.Payload, data)
	for _, block := range j.Blocks {
		bound := binding.Value(block, data).(map[string]any)
		out.Blocks = append(out.Blocks, bound)
		missing = append(missing, missingIn(block, data)...)
	}
	slices.Sort(missing)
	return out, slices.Compact(missing)
}

func missingIn(v any, data any) []string {
	switch t := v.(type) {
	case string:
		return binding.Missing(t, data)
	case map[string]any:
		var out []string
		for _, item := range t {
			out = append(out, missingIn(item, data)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, missingIn(item, data)...)
		}
		return out
	default:
		return nil
	}
}

// Options 解析 card 段。
func (j *Job) Options() (Options, error) {
	return ParseOptions(j.Card)
}

// Run 按任务配置创建生成器并生成一次。调用方负责 Close 返回的生成器。
func (j *Job) Run(opts Options) (*Generator, *Output, error) {
	g, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	out, err := g.GenerateRaw(j.Payload, j.Blocks)
	if err != nil {
		g.Close()
		return nil, nil, err
	}
	return g, out, nil
}
