package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/qrcard/card"
	"github.com/ByLCY/qrcard/fonts"
	"github.com/ByLCY/qrcard/layout"
)

func main() {
	input := flag.String("in", "examples/equipment.yaml", "任务文件路径（.yaml/.json/.card）")
	output := flag.String("out", "output/card.png", "PNG 输出路径，仅在 -output=path 时使用")
	form := flag.String("output", "path", "输出形式：bytes|path|base64")
	fontPath := flag.String("font", "", "字体文件路径，默认使用内置字体")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	dataJSON := flag.String("data", "", "绑定到任务的 JSON 数据")
	verify := flag.Bool("verify", false, "生成后解码校验码内容")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	card.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	cfg := config{
		input:    *input,
		output:   *output,
		form:     card.OutputForm(*form),
		fontPath: *fontPath,
		debug:    *debug,
		verify:   *verify,
	}
	out, err := run(cfg, inputData)
	if err != nil {
		log.Fatalf("生成卡片失败: %v", err)
	}
	switch out.Form {
	case card.OutputBase64:
		fmt.Println(out.Text)
	case card.OutputBytes:
		os.Stdout.Write(out.Bytes)
	default:
		fmt.Fprintf(os.Stderr, "已生成卡片：%s\n", out.Path)
	}
}

type config struct {
	input    string
	output   string
	form     card.OutputForm
	fontPath string
	debug    string
	verify   bool
}

// run 串联任务加载、数据绑定、布局与渲染。
func run(cfg config, data any) (*card.Output, error) {
	job, err := card.LoadJob(cfg.input)
	if err != nil {
		return nil, err
	}
	if data != nil {
		var missing []string
		job, missing = job.Bind(data)
		if len(missing) > 0 {
			card.Logger().Warn("占位符未绑定", "paths", missing)
		}
	}

	opts, err := job.Options()
	if err != nil {
		return nil, fmt.Errorf("解析卡片配置失败: %w", err)
	}
	// 临时文件在生成器关闭时删除，对一次性的命令行进程没有意义。
	if cfg.form == card.OutputTemp {
		return nil, fmt.Errorf("命令行不支持输出形式 %s，请使用 path、bytes 或 base64", cfg.form)
	}
	opts.Output = cfg.form
	if cfg.form == card.OutputPath {
		opts.OutputPath = cfg.output
	}
	if cfg.fontPath != "" {
		if opts.Font == nil {
			opts.Font = fonts.NewManager()
		}
		if !opts.Font.SetFont(cfg.fontPath, "") {
			return nil, fmt.Errorf("%w: 字体文件 %s 不存在", card.ErrResource, cfg.fontPath)
		}
	}
	if cfg.verify {
		opts.VerifyCode = true
	}

	g, out, err := job.Run(opts)
	if err != nil {
		return nil, err
	}
	defer g.Close()
	if cfg.debug != "" {
		if err := writeDebug(out.Result, cfg.debug); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
