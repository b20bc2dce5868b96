// internal/util/util_test.go
package util

import (
	"strings"
	"testing"
)

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "no truncation", in: "hello", max: 10, want: "hello"},
		{name: "ascii truncation", in: "helloworld", max: 5, want: "hello…"},
		{name: "umlaut truncation", in: "Führungskräfte", max: 4, want: "Führ…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateRunes(tt.in, tt.max); got != tt.want {
				t.Fatalf("TruncateRunes(%q,%d)=%q want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestCountAndTruncateWords(t *testing.T) {
	t.Parallel()

	text := "Kündigung\n\nBleiben Sie  ruhig und sachlich."
	if got := CountWords(text); got != 6 {
		t.Fatalf("CountWords=%d want 6", got)
	}
	if got := TruncateWords(text, 3); got != "Kündigung Bleiben Sie" {
		t.Fatalf("TruncateWords(3)=%q", got)
	}
	if got := TruncateWords(text, 6); got != text {
		t.Fatalf("TruncateWords should keep text that fits, got %q", got)
	}
	if got := TruncateWords(text, 0); got != "" {
		t.Fatalf("TruncateWords(0)=%q want empty", got)
	}
}

func TestWrapToWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		width int
		want  string
	}{
		{
			name:  "wrap words",
			text:  "one two three four",
			width: 10,
			want:  "one two\nthree four",
		},
		{
			name:  "long word split",
			text:  "supercalifragilisticexpialidocious",
			width: 5,
			want: strings.Join([]string{
				"super",
				"calif",
				"ragil",
				"istic",
				"expia",
				"lidoc",
				"ious",
			}, "\n"),
		},
		{
			name:  "preserve blank lines",
			text:  "para one\n\npara two",
			width: 20,
			want:  "para one\n\npara two",
		},
		{
			name:  "multibyte width",
			text:  "Größe über Maß",
			width: 10,
			want:  "Größe über\nMaß",
		},
		{
			name:  "non-positive width no-op",
			text:  "no wrap",
			width: 0,
			want:  "no wrap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WrapToWidth(tt.text, tt.width); got != tt.want {
				t.Fatalf("WrapToWidth(%q,%d)=%q want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}
