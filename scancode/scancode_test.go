package scancode

import (
	"errors"
	"image"
	"image/draw"
	"testing"
)

// TestQRRoundTrip 编码后的二维码能被解码回原负载，尺寸与请求一致。
func TestQRRoundTrip(t *testing.T) {
	for _, payload := range []string{"JDY20180928-093", "https://example.com/asset?id=42"} {
		img, err := QREncoder{}.Encode(payload, 100, 100)
		if err != nil {
			t.Fatalf("编码 %q 失败: %v", payload, err)
		}
		if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
			t.Fatalf("二维码尺寸期望 100x100，实际 %v", b)
		}
		got, err := Decode(pad(img, 20))
		if err != nil {
			t.Fatalf("解码 %q 失败: %v", payload, err)
		}
		if got != payload {
			t.Fatalf("解码结果期望 %q，实际 %q", payload, got)
		}
	}
}

func TestQRNonSquare(t *testing.T) {
	img, err := QREncoder{}.Encode("abc", 120, 80)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Fatalf("尺寸期望 120x80，实际 %v", b)
	}
}

func TestCode128RoundTrip(t *testing.T) {
	img, err := Code128Encoder{}.Encode("JDY-093", 240, 60)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 60 {
		t.Fatalf("条码尺寸期望 240x60，实际 %v", b)
	}
	got, err := Decode(pad(img, 20))
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if got != "JDY-093" {
		t.Fatalf("解码结果期望 JDY-093，实际 %q", got)
	}
}

func TestEncodeRejectsBadSize(t *testing.T) {
	if _, err := (QREncoder{}).Encode("x", 0, 10); err == nil {
		t.Fatalf("零宽度应报错")
	}
	if _, err := (Code128Encoder{}).Encode("a long payload that needs more bars", 10, 10); err == nil {
		t.Fatalf("过窄的条码应报错")
	}
}

func TestNew(t *testing.T) {
	if e, err := New(""); err != nil || e == nil {
		t.Fatalf("空类型应返回二维码编码器: %v", err)
	}
	if _, err := New("CODE128"); err != nil {
		t.Fatalf("code128 应被支持: %v", err)
	}
	if _, err := New("pdf417"); !errors.Is(err, ErrUnsupportedKind) {
		t.Fatalf("期望 ErrUnsupportedKind，实际 %v", err)
	}
}

func TestDecodeBlankImage(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 50, 50))
	draw.Draw(blank, blank.Bounds(), image.White, image.Point{}, draw.Src)
	if _, err := Decode(blank); err == nil {
		t.Fatalf("空白图像不应解码成功")
	}
}

// pad 在码图四周补白，模拟贴在画布上的情形。
func pad(img image.Image, n int) image.Image {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()+2*n, b.Dy()+2*n))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(n, n, n+b.Dx(), n+b.Dy()), img, b.Min, draw.Src)
	return out
}
