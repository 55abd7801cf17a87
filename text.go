package deckexport

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PlaceholderText replaces an image that could not be resolved.
const PlaceholderText = "[Image placeholder]"

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u2028", "\n", "\u2029", "\n")

// normalizeText converts every line-break convention to "\n" and composes
// the text to NFC so that precomposed glyphs are used by every target.
func normalizeText(s string) string {
	return norm.NFC.String(lineBreaks.Replace(s))
}

// textLines splits normalized text into lines.
func textLines(s string) []string {
	return strings.Split(normalizeText(s), "\n")
}

// boldFlag reads a CSS font-weight. Nil means the value was absent or not
// understood and the target default applies.
func boldFlag(weight string) *bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	switch w {
	case "":
		return nil
	case "bold", "bolder":
		return boolPtr(true)
	case "normal", "lighter":
		return boolPtr(false)
	}
	if n, err := strconv.Atoi(w); err == nil {
		return boolPtr(n >= 600)
	}
	return nil
}

// italicFlag reads a CSS font-style with the same tri-state rules.
func italicFlag(style string) *bool {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "italic", "oblique":
		return boolPtr(true)
	case "normal":
		return boolPtr(false)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }

func isSet(b *bool) bool { return b != nil && *b }
