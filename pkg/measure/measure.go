// Package measure estimates rendered text heights without a browser.
//
// The size estimator needs to know how tall a note's content renders at a
// candidate pixel width. On the server there is no layout engine, so this
// package approximates one: greedy word wrapping over per-rune advance
// widths derived from font size. The approximation deliberately mirrors the
// line-breaking behavior of CSS `overflow-wrap: break-word` — words wrap
// whole when they fit and break mid-word when they exceed a full line.
package measure

import (
	"strings"
	"unicode"
)

// Measurer reports the rendered pixel height of text constrained to a pixel
// width. Implementations must be pure: same inputs, same output.
type Measurer interface {
	Height(text string, widthPx float64) float64
}

// Ratios of advance width to font size for the width classes below. Tuned
// against a typical sans-serif at 14px.
const (
	charWidthRegular = 0.55
	charWidthNarrow  = 0.40
	charWidthWide    = 1.00
	charWidthSpace   = 0.35
)

// narrowRunes are visibly thin glyphs in most sans-serif fonts.
const narrowRunes = "iljtfI.,:;'|!()[]"

// FontMetrics is the default Measurer. LineHeight is a multiplier of
// FontPx, as in CSS.
type FontMetrics struct {
	FontPx     float64
	LineHeight float64
}

// DefaultFont matches the card body font of the note UI.
var DefaultFont = FontMetrics{FontPx: 14, LineHeight: 1.5}

// Height returns the pixel height of text wrapped at widthPx. A
// non-positive width is treated as one glyph per line. Empty text measures
// zero.
func (m FontMetrics) Height(text string, widthPx float64) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	lineHeightPx := m.FontPx * m.LineHeight
	if widthPx < m.runeWidth('M') {
		widthPx = m.runeWidth('M')
	}

	lines := 0
	for _, paragraph := range strings.Split(text, "\n") {
		lines += m.wrapCount(paragraph, widthPx)
	}
	return float64(lines) * lineHeightPx
}

// wrapCount returns the number of wrapped lines one paragraph occupies.
func (m FontMetrics) wrapCount(paragraph string, widthPx float64) int {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		// Blank lines still take a row.
		return 1
	}

	lines := 1
	lineWidth := 0.0
	spaceWidth := m.FontPx * charWidthSpace

	for _, word := range words {
		wordWidth := m.stringWidth(word)

		if wordWidth > widthPx {
			// Word longer than a full line: break it by rune.
			for _, r := range word {
				rw := m.runeWidth(r)
				if lineWidth > 0 && lineWidth+rw > widthPx {
					lines++
					lineWidth = 0
				}
				lineWidth += rw
			}
			continue
		}

		needed := wordWidth
		if lineWidth > 0 {
			needed += spaceWidth
		}
		if lineWidth+needed > widthPx {
			lines++
			lineWidth = wordWidth
		} else {
			lineWidth += needed
		}
	}
	return lines
}

func (m FontMetrics) stringWidth(s string) float64 {
	w := 0.0
	for _, r := range s {
		w += m.runeWidth(r)
	}
	return w
}

func (m FontMetrics) runeWidth(r rune) float64 {
	switch {
	case r == ' ':
		return m.FontPx * charWidthSpace
	case strings.ContainsRune(narrowRunes, r):
		return m.FontPx * charWidthNarrow
	case unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
		return m.FontPx * charWidthWide
	default:
		return m.FontPx * charWidthRegular
	}
}

var _ Measurer = FontMetrics{}
