package assets

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/webp"
)

// imageDecoders maps image extensions to their decoders. The decoder is picked by extension rather than sniffed with
// image.Decode, as the tga package registers itself with an empty magic string that matches any input.
var imageDecoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
	".tga":  tga.Decode,
}

func decodeImage(p string, data []byte, maxSize int) (image.Image, error) {

	ext := strings.ToLower(path.Ext(p))
	decode, ok := imageDecoders[ext]
	if !ok {
		return nil, errors.Errorf("no image decoder for %q", ext)
	}

	img, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding image")
	}

	return fitImage(img, maxSize), nil

}

// fitImage scales img down (keeping its aspect ratio) so neither side exceeds maxSize. Images that already fit, or a
// maxSize of zero, return img unchanged.
func fitImage(img image.Image, maxSize int) image.Image {

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	scale := float64(maxSize) / float64(w)
	if h > w {
		scale = float64(maxSize) / float64(h)
	}

	nw, nh := int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst

}

func decodeFont(data []byte) (*opentype.Font, error) {
	font, err := opentype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing font")
	}
	return font, nil
}
