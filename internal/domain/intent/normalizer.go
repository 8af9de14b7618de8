// Package intent classifies the purpose of a conversation from its
// user-authored messages using a multilingual keyword scorer.
package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticFolder strips combining marks after canonical decomposition, so
// "coûte" and "coute" normalize to the same text.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// letterReplacer handles curly quotes and the handful of letters that carry
// no canonical decomposition.
var letterReplacer = strings.NewReplacer(
	"’", "'", // right single quote
	"‘", "'", // left single quote
	"“", `"`,
	"”", `"`,
	"ı", "i",
	"ø", "o",
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"đ", "d",
	"ł", "l",
)

// Normalize lower-cases text, folds locale-specific letters to their base
// Latin form and straightens curly quotes. Pure function, never fails.
func Normalize(text string) string {
	text = strings.ToLower(text)
	if folded, _, err := transform.String(diacriticFolder, text); err == nil {
		text = folded
	}
	return letterReplacer.Replace(text)
}
