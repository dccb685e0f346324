package loaders

import (
	"image"
	"os"

	// decoders registered with image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo is the header of an image file.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// TextureLoader reads image headers for the texture system. Pixel data is
// left to the renderer.
type TextureLoader struct{}

func (TextureLoader) Load(path string) (*ImageInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}
	return &ImageInfo{
		Width:  config.Width,
		Height: config.Height,
		Format: format,
	}, nil
}
