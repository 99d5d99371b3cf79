// Package qr renders provisioning URIs into the presentation formats the
// enrollment surface can return.
package qr

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// Format selects how a provisioning URI is rendered for the caller.
type Format string

const (
	// FormatText returns the raw URI for the caller to render itself.
	FormatText Format = "text"
	// FormatPNG returns a base64 PNG data URI.
	FormatPNG Format = "png"
	// FormatImageTag returns an HTML <img> element embedding the PNG.
	FormatImageTag Format = "img"
	// FormatSVG returns standalone SVG markup.
	FormatSVG Format = "svg"
)

// ParseFormat maps a caller-supplied format name to a Format, defaulting to
// FormatText for empty or unrecognized input.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPNG:
		return FormatPNG
	case FormatImageTag:
		return FormatImageTag
	case FormatSVG:
		return FormatSVG
	default:
		return FormatText
	}
}

// Renderer encodes provisioning URIs as QR codes.
type Renderer struct {
	size int
}

// NewRenderer constructs a Renderer producing images of the given pixel
// size. Sizes below 64 fall back to 256.
func NewRenderer(size int) *Renderer {
	if size < 64 {
		size = 256
	}

	return &Renderer{size: size}
}

// Render returns the URI in the requested presentation format.
func (r *Renderer) Render(uri string, format Format) (string, error) {
	switch format {
	case FormatPNG:
		return r.pngDataURI(uri)
	case FormatImageTag:
		dataURI, err := r.pngDataURI(uri)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`<img src="%s" alt="QR code" width="%d" height="%d">`, dataURI, r.size, r.size), nil
	case FormatSVG:
		return r.svg(uri)
	default:
		return uri, nil
	}
}

func (r *Renderer) pngDataURI(uri string) (string, error) {
	png, err := qrcode.Encode(uri, qrcode.Medium, r.size)
	if err != nil {
		return "", fmt.Errorf("qr: png encode failed: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func (r *Renderer) svg(uri string) (string, error) {
	code, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("qr: svg encode failed: %w", err)
	}

	bitmap := code.Bitmap()
	modules := len(bitmap)

	var sb strings.Builder
	fmt.Fprintf(&sb,
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		modules, modules)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#ffffff"/>`, modules, modules)

	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="1" height="1" fill="#000000"/>`, x, y)
			}
		}
	}
	sb.WriteString(`</svg>`)

	return sb.String(), nil
}
