package deckexport

import "testing"

func TestMapFont(t *testing.T) {
	tests := map[string]string{
		"Arial":                      "Arial",
		"arial":                      "Arial",
		"HELVETICA":                  "Helvetica",
		"Times New Roman":            "Times New Roman",
		`"Times New Roman", serif`:   "Times New Roman",
		"Georgia":                    "Georgia",
		"Verdana":                    "Verdana",
		"Courier New":                "Courier New",
		"Geist":                      "Calibri",
		"Geist, sans-serif":          "Calibri",
		"sans-serif":                 "Calibri",
		"serif":                      "Times New Roman",
		"monospace":                  "Courier New",
		"Comic Sans MS":              "Calibri",
		"":                           "Calibri",
		"'Inter', Arial, sans-serif": "Calibri",
	}
	for in, want := range tests {
		if got := MapFont(in); got != want {
			t.Errorf("MapFont(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapColor(t *testing.T) {
	tests := []struct {
		in   string
		ctx  ColorContext
		want string
	}{
		{"#ff0000", TextOnLight, "FF0000"},
		{"#F00", TextOnLight, "FF0000"},
		{"#11223380", TextOnLight, "112233"},
		{"rgb(255, 128, 0)", TextOnLight, "FF8000"},
		{"rgba(0,0,255,0.5)", TextOnLight, "0000FF"},
		{"white", TextOnLight, "FFFFFF"},
		{"Navy", TextOnLight, "000080"},
		{"", TextOnLight, "000000"},
		{"", TextOnDark, "FFFFFF"},
		{"", ShapeFill, "CCCCCC"},
		{"", ShapeLine, "000000"},
		{"", BackgroundFill, "FFFFFF"},
		{"not-a-colour", ShapeFill, "CCCCCC"},
		{"#12345", TextOnLight, "000000"},
		{"rgb(300,0,0)", TextOnDark, "FFFFFF"},
		{"transparent", ShapeFill, "CCCCCC"},
	}
	for _, tt := range tests {
		if got := MapColor(tt.in, tt.ctx); got != tt.want {
			t.Errorf("MapColor(%q, %d) = %q, want %q", tt.in, tt.ctx, got, tt.want)
		}
	}
}

func TestIsTransparent(t *testing.T) {
	if !IsTransparent(" Transparent ") {
		t.Error("expected transparent")
	}
	if IsTransparent("#fff") || IsTransparent("") {
		t.Error("unexpected transparent")
	}
}

func TestMapAlignment(t *testing.T) {
	tests := map[string]Alignment{
		"left": AlignLeft, "CENTER": AlignCenter, "right": AlignRight,
		"justify": AlignJustify, "": AlignLeft, "start": AlignLeft,
	}
	for in, want := range tests {
		if got := MapAlignment(in); got != want {
			t.Errorf("MapAlignment(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapTheme(t *testing.T) {
	tests := map[string]string{
		"white": "FFFFFF", "black": "000000", "league": "2B2B2B", "beige": "F7F3DE",
		"sky": "E6F3FF", "night": "1A1A2E", "serif": "F5F5F5", "simple": "FFFFFF",
	}
	for theme, want := range tests {
		bg := MapTheme(theme)
		if bg.IsGradient() || bg.Color != want {
			t.Errorf("MapTheme(%q) = %+v, want flat %s", theme, bg, want)
		}
	}

	bg := MapTheme("dracula")
	if !bg.IsGradient() || *bg.Gradient != DefaultGradient {
		t.Errorf("unknown theme should use the default gradient, got %+v", bg)
	}
}

func TestIsDarkTheme(t *testing.T) {
	for _, theme := range []string{"black", "League", "night"} {
		if !IsDarkTheme(theme) {
			t.Errorf("%s should be dark", theme)
		}
	}
	for _, theme := range []string{"white", "sky", "unknown", ""} {
		if IsDarkTheme(theme) {
			t.Errorf("%s should not be dark", theme)
		}
	}
	if TextContext("night") != TextOnDark || TextContext("white") != TextOnLight {
		t.Error("TextContext does not follow theme darkness")
	}
}

func TestParseGradient(t *testing.T) {
	tests := []struct {
		in   string
		want *Gradient
		flat string
	}{
		{in: "linear-gradient(90deg, #ff0000, #0000ff)", want: &Gradient{From: "FF0000", To: "0000FF", Angle: 90}},
		{in: "linear-gradient(to bottom right, #fff 0%, rgb(0, 0, 0) 100%)", want: &Gradient{From: "FFFFFF", To: "000000", Angle: 135}},
		{in: "linear-gradient(#111111, #222222, #333333)", want: &Gradient{From: "111111", To: "333333", Angle: 180}},
		{in: "linear-gradient(-90deg, #111111, #222222)", want: &Gradient{From: "111111", To: "222222", Angle: 270}},
		{in: "linear-gradient(45deg, var(--a), var(--b))", want: &Gradient{From: "1E293B", To: "1E3A8A", Angle: 45}},
		{in: "bg-gradient-to-r from-blue-500 to-purple-600", want: &Gradient{From: "1E293B", To: "1E3A8A", Angle: 90}},
		{in: "bg-gradient-to-tl from-[#112233] to-[#445566]", want: &Gradient{From: "112233", To: "445566", Angle: 315}},
		{in: "radial-gradient(circle, red, blue)", want: &DefaultGradient},
		{in: "#abcdef", flat: "ABCDEF"},
		{in: "nonsense", flat: "FFFFFF"},
	}
	for _, tt := range tests {
		got := ParseGradient(tt.in)
		if tt.want == nil {
			if got.IsGradient() || got.Color != tt.flat {
				t.Errorf("ParseGradient(%q) = %+v, want flat %s", tt.in, got, tt.flat)
			}
			continue
		}
		if !got.IsGradient() || *got.Gradient != *tt.want {
			t.Errorf("ParseGradient(%q) = %+v, want %+v", tt.in, got.Gradient, tt.want)
		}
	}
}

func TestResolveBackgroundPriority(t *testing.T) {
	settings := Settings{Theme: "beige"}

	if bg := ResolveBackground(&Slide{}, settings); bg.Color != "F7F3DE" || bg.IsGradient() {
		t.Errorf("theme fallback = %+v", bg)
	}

	s := &Slide{Background: &Background{Color: "#112233", Gradient: "linear-gradient(90deg, #000, #fff)"}}
	if bg := ResolveBackground(s, settings); bg.Color != "112233" || bg.IsGradient() {
		t.Errorf("colour should win over gradient, got %+v", bg)
	}

	s = &Slide{Background: &Background{Gradient: "linear-gradient(90deg, #000, #fff)", Image: " bg.png "}}
	bg := ResolveBackground(s, settings)
	if !bg.IsGradient() || bg.Gradient.Angle != 90 {
		t.Errorf("gradient should win over theme, got %+v", bg)
	}
	if bg.Image != "bg.png" {
		t.Errorf("image = %q", bg.Image)
	}
}
