package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLowercasesAndStripsAccents(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain ascii", "Hello World", "hello world"},
		{"french accents", "Réservation confirmée", "reservation confirmee"},
		{"grave and circumflex", "Çà coûte très cher", "ca coute tres cher"},
		{"curly apostrophe", "aujourd’hui", "aujourd'hui"},
		{"oe ligature", "Œuvre", "oeuvre"},
		{"ae ligature", "Curriculum vitæ", "curriculum vitae"},
		{"sharp s", "Straße", "strasse"},
		{"dotless i", "ı", "i"},
		{"slashed o", "København", "kobenhavn"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Réservation confirmée",
		"Çà et là, Œuvres complètes",
		"aujourd’hui mixed ASCII 123",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalizeCollapsesAccentedAndPlainForms(t *testing.T) {
	assert.Equal(t, Normalize("réserver"), Normalize("reserver"))
	assert.Equal(t, Normalize("DEVIS"), Normalize("devis"))
	assert.Equal(t, Normalize("coûte"), Normalize("coute"))
}
