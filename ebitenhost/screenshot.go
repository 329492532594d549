package ebitenhost

import (
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pkg/errors"
)

// ScreenshotName returns the file name a screenshot taken at the given time is saved under.
func ScreenshotName(at time.Time) string {
	return "screenshot-" + at.Format("2006-01-02_15-04-05.000") + ".webp"
}

// SaveScreenshot encodes img as a lossless WebP file in dir, named after the given time, and returns the file's path.
func SaveScreenshot(dir string, img image.Image, at time.Time) (string, error) {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating screenshot directory")
	}

	path := filepath.Join(dir, ScreenshotName(at))

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating screenshot file")
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return "", errors.Wrap(err, "encoding screenshot")
	}

	return path, nil

}

// capture copies the pixels of an image that lives on the GPU into one that can be encoded.
func capture(src interface {
	Bounds() image.Rectangle
	ReadPixels(pixels []byte)
}) *image.RGBA {
	b := src.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	src.ReadPixels(img.Pix)
	return img
}
