// Package scancode 负责把负载编码成可扫描的码图，以及从位图中解码回负载。
package scancode

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

const (
	KindQR      = "qr"
	KindCode128 = "code128"
)

// ErrUnsupportedKind 表示未知的码类型。
var ErrUnsupportedKind = errors.New("不支持的码类型")

// Encoder 把负载编码成恰好 width x height 的图像。
type Encoder interface {
	Encode(payload string, width, height int) (image.Image, error)
}

// New 按名称返回编码器，空字符串视为 qr。
func New(kind string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindQR:
		return QREncoder{}, nil
	case KindCode128, "code-128":
		return Code128Encoder{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
}

// QREncoder 使用最低纠错等级，保留 1 个模块宽的静区。
type QREncoder struct {
	QuietZone int // 0 表示 1 个模块
}

func (e QREncoder) Encode(payload string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("二维码尺寸必须为正数，实际 %dx%d", width, height)
	}
	q, err := qrcode.New(payload, qrcode.Low)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()

	quiet := e.QuietZone
	if quiet <= 0 {
		quiet = 1
	}
	modules := len(bitmap) + 2*quiet
	// 先按整数倍放大，再缩放到目标尺寸，避免模块边缘模糊。
	scale := max(min(width, height)/modules, 1)
	img := image.NewGray(image.Rect(0, 0, modules*scale, modules*scale))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for y, row := range bitmap {
		for x, dark := range row {
			if !dark {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetGray((x+quiet)*scale+dx, (y+quiet)*scale+dy, color.Gray{Y: 0})
				}
			}
		}
	}
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return img, nil
	}
	return imaging.Resize(img, width, height, imaging.NearestNeighbor), nil
}

// Code128Encoder 生成一维 Code128 条码，条宽按目标宽度缩放。
type Code128Encoder struct{}

func (Code128Encoder) Encode(payload string, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("条码尺寸必须为正数，实际 %dx%d", width, height)
	}
	bc, err := code128.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("生成 Code128 失败: %w", err)
	}
	scaled, err := barcode.Scale(bc, width, height)
	if err != nil {
		return nil, fmt.Errorf("缩放 Code128 到 %dx%d 失败: %w", width, height, err)
	}
	return scaled, nil
}

// Decode 依次尝试二维码与 Code128，返回第一个成功解码的文本。
func Decode(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("待解码图像为空")
	}
	src := gozxing.NewLuminanceSourceFromImage(img)
	bmp, err := gozxing.NewBinaryBitmap(gozxing.NewHybridBinarizer(src))
	if err != nil {
		return "", fmt.Errorf("图像二值化失败: %w", err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	readers := []gozxing.Reader{zxqr.NewQRCodeReader(), oned.NewCode128Reader()}
	var lastErr error
	for _, reader := range readers {
		res, err := reader.Decode(bmp, hints)
		if err == nil {
			return res.GetText(), nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("未能识别码图: %w", lastErr)
}
