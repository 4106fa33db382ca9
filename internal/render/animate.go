package render

import (
	"fmt"
	"image"
	colorpalette "image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
)

// Animate stitches PNG frames, in order, into an animated GIF. delay is the
// time per frame in 100ths of a second.
func Animate(frames []string, path string, delay int) error {
	if len(frames) == 0 {
		return ErrEmpty
	}

	anim := &gif.GIF{}
	for _, fname := range frames {
		img, err := openPNG(fname)
		if err != nil {
			return err
		}
		paletted := image.NewPaletted(img.Bounds(), colorpalette.Plan9)
		draw.Draw(paletted, img.Bounds(), img, image.Point{}, draw.Over)
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(out, anim); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}

func openPNG(fname string) (image.Image, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fname, err)
	}
	return img, nil
}
