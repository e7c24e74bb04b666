package tables

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/specialistvlad/neurogrid/internal/operation"
	"github.com/zclconf/go-cty/cty"
)

var channels = map[string]int64{
	"grayscale": 1,
	"rgb":       3,
	"rgba":      4,
}

// ImagesArgs are the arguments of Images data.
type ImagesArgs struct {
	Files     []string `cty:"files"`
	ColorMode string   `cty:"color_mode"`
}

// OpenImages reads the dimensions of every image. All images must share
// one size; the output shape is (count, height, width, channels).
func OpenImages(_ context.Context, in *ImagesArgs, _ []cty.Value) (any, error) {
	if len(in.Files) == 0 {
		return nil, operation.InvalidArgument("no files selected")
	}
	ch, ok := channels[in.ColorMode]
	if !ok {
		return nil, operation.InvalidArgument("unknown color mode %q", in.ColorMode)
	}

	var width, height int
	for i, path := range in.Files {
		cfg, err := decodeConfig(path)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			width, height = cfg.Width, cfg.Height
			continue
		}
		if cfg.Width != width || cfg.Height != height {
			return nil, operation.InvalidArgument("%s is %dx%d, expected %dx%d", path, cfg.Width, cfg.Height, width, height)
		}
	}

	return cty.ObjectVal(map[string]cty.Value{
		"shape": cty.TupleVal([]cty.Value{
			cty.NumberIntVal(int64(len(in.Files))),
			cty.NumberIntVal(int64(height)),
			cty.NumberIntVal(int64(width)),
			cty.NumberIntVal(ch),
		}),
		"color_mode": cty.StringVal(in.ColorMode),
	}), nil
}

func decodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return image.Config{}, operation.FailedPrecondition("file %s does not exist", path)
		}
		return image.Config{}, operation.Internal(fmt.Errorf("failed to open %s: %w", path, err))
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, operation.InvalidArgument("%s is not a supported image: %v", path, err)
	}
	return cfg, nil
}
