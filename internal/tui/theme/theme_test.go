package theme

import (
	"strings"
	"testing"
)

func TestCurrent_DefaultsToCatppuccinMocha(t *testing.T) {
	th := Current()
	if th.Name != "catppuccin-mocha" {
		t.Fatalf("expected catppuccin-mocha theme, got %s", th.Name)
	}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Primary (Mauve)", th.Primary, "#cba6f7"},
		{"Tertiary (Lavender)", th.Tertiary, "#b4befe"},
		{"BgBase", th.BgBase, "#1e1e2e"},
		{"FgBase (Text)", th.FgBase, "#cdd6f4"},
		{"Success (Green)", th.Success, "#a6e3a1"},
		{"Error (Red)", th.Error, "#f38ba8"},
		{"BorderDefault (Surface2)", th.BorderDefault, "#585b70"},
		{"BorderFocused (Mauve)", th.BorderFocused, "#cba6f7"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.expected)
		}
	}
}

func TestSet(t *testing.T) {
	if Set("solarized-nope") {
		t.Error("unknown theme should not be accepted")
	}
	if !Set("catppuccin-mocha") {
		t.Error("registered theme should be accepted")
	}
	if Current().Name != "catppuccin-mocha" {
		t.Errorf("unexpected theme %s", Current().Name)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) == 0 || names[0] != "catppuccin-mocha" {
		t.Errorf("unexpected theme names %v", names)
	}
}

func TestStylesInitialized(t *testing.T) {
	s := Current().S()
	if s != Current().S() {
		t.Error("styles should be built once")
	}

	for name, render := range map[string]func() string{
		"StepActive":     func() string { return s.StepActive.Render("1") },
		"StatusBar":      func() string { return s.StatusBar.Render("x") },
		"AlertContainer": func() string { return s.AlertContainer.Render("x") },
		"ButtonFocused":  func() string { return s.ButtonFocused.Render("x") },
	} {
		if render() == "" {
			t.Errorf("%s: rendered empty string", name)
		}
	}
}

func TestInterpolateColor(t *testing.T) {
	tests := []struct {
		pos  float64
		want string
	}{
		{0, "#000000"},
		{1, "#ffffff"},
		{0.5, "#7f7f7f"},
	}
	for _, tt := range tests {
		if got := InterpolateColor("#000000", "#ffffff", tt.pos); got != tt.want {
			t.Errorf("InterpolateColor(%v) = %s, want %s", tt.pos, got, tt.want)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	r, g, b := ParseHexColor("#cba6f7")
	if r != 0xcb || g != 0xa6 || b != 0xf7 {
		t.Errorf("unexpected rgb %d %d %d", r, g, b)
	}
	r, g, b = ParseHexColor("bad")
	if r != 0 || g != 0 || b != 0 {
		t.Error("invalid hex should parse to black")
	}
	if FormatHexColor(1, 2, 3) != "#010203" {
		t.Error("unexpected hex formatting")
	}
}

func TestHexToColor(t *testing.T) {
	r, g, b, _ := HexToColor("#ff0000").RGBA()
	if r>>8 != 0xff || g != 0 || b != 0 {
		t.Errorf("unexpected color %d %d %d", r, g, b)
	}
}

func TestApplyGradient(t *testing.T) {
	if ApplyGradient("", "#000000", "#ffffff") != "" {
		t.Error("empty text should stay empty")
	}
	out := ApplyGradient("a b", "#000000", "#ffffff")
	if !strings.Contains(out, "a") || !strings.Contains(out, "b") {
		t.Errorf("gradient dropped characters: %q", out)
	}
}
