package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"whitted/vmath/vec2"
	"whitted/vmath/vec3"
)

// Image samples a decoded picture with nearest-texel lookup and repeat
// wrapping.
type Image struct {
	width, height int
	texels        []vec3.T

	// FlipV makes v = 0 the bottom row of the picture rather than the top.
	FlipV bool
}

// FromImage converts img to linear float texels.  The result has FlipV set.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	result := &Image{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		FlipV:  true,
	}
	result.texels = make([]vec3.T, result.width*result.height)

	for y := 0; y < result.height; y++ {
		for x := 0; x < result.width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			result.texels[y*result.width+x] = vec3.T{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(b) / 65535.0,
			}
		}
	}

	return result
}

// Load decodes a PNG, JPEG, BMP or TIFF file.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening texture: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("while decoding texture %q: %w", path, err)
	}

	return FromImage(img), nil
}

func (im *Image) Bounds() (width, height int) {
	return im.width, im.height
}

func (im *Image) Sample(uv vec2.T) vec3.T {
	if im.width == 0 || im.height == 0 || math.IsNaN(uv[0]) || math.IsNaN(uv[1]) {
		return White
	}

	u := uv[0] - math.Floor(uv[0])
	v := uv[1] - math.Floor(uv[1])
	if im.FlipV {
		v = 1 - v
	}

	x := clampIndex(int(u*float64(im.width)), im.width)
	y := clampIndex(int(v*float64(im.height)), im.height)
	return im.texels[y*im.width+x]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
