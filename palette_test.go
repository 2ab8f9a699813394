package unmagic

import (
	"image/color"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	p := DefaultPalette()
	if want := (color.NRGBA{0x66, 0x77, 0x88, 0xff}); p.Fill != want {
		t.Errorf("Fill = %v, want %v", p.Fill, want)
	}
	if want := (color.NRGBA{0x11, 0x11, 0x11, 0xff}); p.Stroke != want {
		t.Errorf("Stroke = %v, want %v", p.Stroke, want)
	}
	if p.Text != p.Stroke {
		t.Errorf("Text = %v, want %v", p.Text, p.Stroke)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#678", color.NRGBA{0x66, 0x77, 0x88, 0xff}},
		{"#ff000080", color.NRGBA{0xff, 0, 0, 0x80}},
		{"white", color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		{"rgb(17, 17, 17)", color.NRGBA{17, 17, 17, 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if err != nil {
				t.Fatalf("ParseColor: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParsePaletteError(t *testing.T) {
	if _, err := ParsePalette("#678", "not-a-colour", "#111"); err == nil {
		t.Error("expected error for an invalid stroke colour")
	}
}
