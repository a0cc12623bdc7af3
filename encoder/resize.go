package encoder

import (
	"image"

	"golang.org/x/image/draw"
)

// TargetWidth derives the output width for a target height, keeping the aspect ratio.
// Integer division truncates: 1920x1080 at 720 gives 1280, 1000x3 at 2 gives 666.
// The result is never below 1.
func TargetWidth(srcW, srcH, height int) int {
	if srcH <= 0 {
		return 1
	}
	w := srcW * height / srcH
	if w < 1 {
		w = 1
	}
	return w
}

// Resize scales img to exactly width x height into a fresh RGBA buffer.
func Resize(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
