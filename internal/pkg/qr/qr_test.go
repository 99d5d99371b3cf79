package qr

import (
	"strings"
	"testing"
)

const testURI = "otpauth://totp/Forumkit:alice?secret=JBSWY3DPEHPK3PXP&issuer=Forumkit"

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":      FormatText,
		"text":  FormatText,
		"bogus": FormatText,
		"png":   FormatPNG,
		" PNG ": FormatPNG,
		"img":   FormatImageTag,
		"svg":   FormatSVG,
	}

	for in, want := range cases {
		if got := ParseFormat(in); got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRender(t *testing.T) {
	renderer := NewRenderer(256)

	t.Run("Text", func(t *testing.T) {
		out, err := renderer.Render(testURI, FormatText)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if out != testURI {
			t.Fatalf("text format must return the uri unchanged, got %q", out)
		}
	})

	t.Run("PNG", func(t *testing.T) {
		out, err := renderer.Render(testURI, FormatPNG)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.HasPrefix(out, "data:image/png;base64,") {
			t.Fatalf("expected png data uri, got %q", out[:32])
		}
	})

	t.Run("ImageTag", func(t *testing.T) {
		out, err := renderer.Render(testURI, FormatImageTag)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.HasPrefix(out, `<img src="data:image/png;base64,`) {
			t.Fatalf("expected img element, got %q", out[:40])
		}
	})

	t.Run("SVG", func(t *testing.T) {
		out, err := renderer.Render(testURI, FormatSVG)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.HasPrefix(out, "<svg ") || !strings.HasSuffix(out, "</svg>") {
			t.Fatalf("expected svg markup")
		}
	})
}
