// Package raster holds rendered images as float RGB, with the encoders the
// renderer writes them out through.
package raster

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"whitted/vmath/vec3"
)

const dataLayoutVersion = 1

// Image is a row-major RGB raster with (0, 0) at the top left.
type Image struct {
	RowSize int
	ColSize int

	// Pix holds three channels per pixel.
	Pix []float32
}

func New(rowSize, colSize int) *Image {
	im := &Image{}
	im.Resize(rowSize, colSize)
	return im
}

func (im *Image) Resize(rowSize, colSize int) {
	im.RowSize = rowSize
	im.ColSize = colSize
	im.Pix = make([]float32, rowSize*colSize*3)
}

func (im *Image) Set(r, c int, rgb vec3.T) {
	i := (r*im.ColSize + c) * 3
	im.Pix[i+0] = float32(rgb[0])
	im.Pix[i+1] = float32(rgb[1])
	im.Pix[i+2] = float32(rgb[2])
}

func (im *Image) At(r, c int) vec3.T {
	i := (r*im.ColSize + c) * 3
	return vec3.T{float64(im.Pix[i+0]), float64(im.Pix[i+1]), float64(im.Pix[i+2])}
}

// Cut copies out the sub-raster [rowSrc, rowLim) x [colSrc, colLim).
func (im *Image) Cut(rowSrc, rowLim, colSrc, colLim int) *Image {
	dst := New(rowLim-rowSrc, colLim-colSrc)
	for r := rowSrc; r < rowLim; r++ {
		srcIndex := (r*im.ColSize + colSrc) * 3
		dstIndex := (r - rowSrc) * dst.ColSize * 3
		copy(dst.Pix[dstIndex:dstIndex+dst.ColSize*3], im.Pix[srcIndex:srcIndex+dst.ColSize*3])
	}
	return dst
}

// Paste writes src over im with its top-left corner at (rowSrc, colSrc).
func (im *Image) Paste(src *Image, rowSrc, colSrc int) {
	for r := 0; r < src.RowSize; r++ {
		dstIndex := ((r+rowSrc)*im.ColSize + colSrc) * 3
		srcIndex := r * src.ColSize * 3
		copy(im.Pix[dstIndex:dstIndex+src.ColSize*3], src.Pix[srcIndex:srcIndex+src.ColSize*3])
	}
}

func to8(x float32) uint8 {
	if math.IsNaN(float64(x)) || x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return uint8(math.Round(float64(x) * 255))
}

// ToNRGBA clamps every channel to [0, 1] and quantizes to 8 bits.
func (im *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.ColSize, im.RowSize))
	for r := 0; r < im.RowSize; r++ {
		for c := 0; c < im.ColSize; c++ {
			i := (r*im.ColSize + c) * 3
			out.SetNRGBA(c, r, color.NRGBA{
				R: to8(im.Pix[i+0]),
				G: to8(im.Pix[i+1]),
				B: to8(im.Pix[i+2]),
				A: 255,
			})
		}
	}
	return out
}

func EncodePNG(im *Image, w io.Writer) error {
	if err := png.Encode(w, im.ToNRGBA()); err != nil {
		return fmt.Errorf("while encoding png: %w", err)
	}
	return nil
}

// ReadRaw reads the format written by WriteRaw: an 8-byte little-endian
// header length, a protobuf-encoded header, and a zlib-compressed body of
// little-endian float32 channels.
func ReadRaw(in io.Reader) (*Image, error) {
	var headerLength uint64
	if err := binary.Read(in, binary.LittleEndian, &headerLength); err != nil {
		return nil, fmt.Errorf("while reading header length: %w", err)
	}

	headerBytes := make([]byte, int(headerLength))
	if _, err := io.ReadFull(in, headerBytes); err != nil {
		return nil, fmt.Errorf("while reading header bytes: %w", err)
	}

	hdr := &structpb.Struct{}
	if err := proto.Unmarshal(headerBytes, hdr); err != nil {
		return nil, fmt.Errorf("while unmarshaling header: %w", err)
	}

	fields := hdr.GetFields()
	if v := fields["dataLayoutVersion"].GetNumberValue(); v != dataLayoutVersion {
		return nil, fmt.Errorf("bad data layout version: %v", v)
	}

	rowSize := int(fields["rowSize"].GetNumberValue())
	colSize := int(fields["colSize"].GetNumberValue())
	if rowSize < 0 || colSize < 0 {
		return nil, fmt.Errorf("bad raster size %dx%d", rowSize, colSize)
	}
	im := New(rowSize, colSize)

	zipReader, err := zlib.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("while opening zip reader: %w", err)
	}
	defer zipReader.Close()

	if err := binary.Read(zipReader, binary.LittleEndian, im.Pix); err != nil {
		return nil, fmt.Errorf("while reading pixels: %w", err)
	}

	return im, nil
}

func ReadRawFromFile(name string) (*Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("while opening file: %w", err)
	}
	defer f.Close()

	return ReadRaw(f)
}

func WriteRaw(im *Image, w io.Writer) error {
	hdr, err := structpb.NewStruct(map[string]interface{}{
		"rowSize":           im.RowSize,
		"colSize":           im.ColSize,
		"dataLayoutVersion": dataLayoutVersion,
	})
	if err != nil {
		return fmt.Errorf("while building header: %w", err)
	}

	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("while marshaling header: %w", err)
	}

	headerLengthBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(headerLengthBytes, uint64(len(hdrBytes)))
	if _, err := w.Write(headerLengthBytes); err != nil {
		return fmt.Errorf("while writing header length: %w", err)
	}

	if _, err := w.Write(hdrBytes); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	zipWriter := zlib.NewWriter(w)

	if err := binary.Write(zipWriter, binary.LittleEndian, im.Pix); err != nil {
		return fmt.Errorf("while writing pixels: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("while closing zip writer: %w", err)
	}

	return nil
}
