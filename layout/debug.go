package layout

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

// debugReport 在几何之外附带跳过的块数量，便于快速检查输入问题。
type debugReport struct {
	*Result
	Skipped int `json:"skipped"`
}

// EncodeDebug 以缩进 JSON 写出布局结果。
func EncodeDebug(w io.Writer, res *Result) error {
	if res == nil {
		return errors.New("布局结果为空")
	}
	report := debugReport{Result: res}
	for _, o := range res.Outcomes {
		if o.Skipped {
			report.Skipped++
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

// WriteDebugJSON 将布局结果（几何与每个块的处理结果）写入 path。
func WriteDebugJSON(res *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeDebug(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
