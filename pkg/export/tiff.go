package export

import (
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"
)

// DeviceImage renders device levels as a 16-bit grayscale image, one pixel
// per cell. Levels are truncated and clamped to [0, 65535].
func DeviceImage(field mat.Matrix) *image.Gray16 {
	rows, cols := field.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := math.Trunc(field.At(y, x))
			v = math.Max(0, math.Min(v, math.MaxUint16))
			img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
		}
	}
	return img
}

// WriteTIFF encodes field as a deflate-compressed 16-bit TIFF
func WriteTIFF(w io.Writer, field mat.Matrix) error {
	return tiff.Encode(w, DeviceImage(field), &tiff.Options{Compression: tiff.Deflate})
}

// SaveTIFF writes the device image under the same collision rules as SaveCSV
func SaveTIFF(field mat.Matrix, path string, policy Policy) (string, error) {
	f, target, err := create(path, policy)
	if err != nil {
		return "", err
	}
	err = WriteTIFF(f, field)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return "", err
	}
	return target, nil
}
