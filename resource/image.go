package resource

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MIMESVG is MIME type of SVG images.
const MIMESVG = "image/svg+xml"

// ImageData is decoded image ready to be placed into layout. Width and
// Height are in pixels. For SVG images Data keeps original markup and Image
// holds rasterized version of intrinsic size.
type ImageData struct {
	Source    string
	MIME      string
	Data      []byte
	Width     int
	Height    int
	Grayscale bool
	Image     image.Image
}

// DecodeImage detects image type and decodes it. Raster images are
// auto-oriented according to their EXIF data.
func DecodeImage(source string, data []byte) (*ImageData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image '%s' is empty", source)
	}

	if isSVG(data) {
		img, err := RasterizeSVG(data, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize svg '%s': %w", source, err)
		}
		b := img.Bounds()
		return &ImageData{Source: source, MIME: MIMESVG, Data: data, Width: b.Dx(), Height: b.Dy(), Image: img}, nil
	}

	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("unable to detect type of image '%s'", source)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unable to decode %s image '%s': %w", kind.MIME.Value, source, err)
	}
	b := img.Bounds()
	return &ImageData{
		Source:    source,
		MIME:      kind.MIME.Value,
		Data:      data,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Grayscale: isGrayscale(img),
		Image:     img,
	}, nil
}

// isGrayscale reports whether all pixels have R==G==B.
func isGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R != c.G || c.G != c.B {
				return false
			}
		}
	}
	return true
}
