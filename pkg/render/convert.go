package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	perrors "github.com/matzehuels/plategen/pkg/errors"
)

// rsvgConvert is the converter binary. Tests point it elsewhere.
var rsvgConvert = "rsvg-convert"

// Available reports whether rsvg-convert is on PATH.
func Available() bool {
	_, err := exec.LookPath(rsvgConvert)
	return err == nil
}

// ToPDF converts an SVG document to PDF.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// ToPNG converts an SVG document to PNG at the given scale.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

func convert(svg []byte, args ...string) ([]byte, error) {
	path, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeUnsupported, err,
			"%s not found: install librsvg (brew install librsvg, apt install librsvg2-bin)", rsvgConvert)
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", rsvgConvert, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", rsvgConvert, err)
	}
	return stdout.Bytes(), nil
}
