package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVocabulary_Recognizes(t *testing.T) {
	v := Default()

	tests := []struct {
		name     string
		text     string
		tolerant bool
		want     bool
	}{
		{"english statement", "Monthly Statement\nOpening Balance 1,000.00", false, true},
		{"german", "Kontoauszug Nr. 3 / Saldo alt", false, true},
		{"indonesian", "Mutasi Rekening 01/02/2024", false, true},
		{"mixed case", "ACCOUNT SUMMARY", false, true},
		{"recipe", "Preheat the oven to 180 degrees and whisk two eggs", false, false},
		{"ocr misread strict", "Monthly statemnt 01/02/2024", false, false},
		{"ocr misread tolerant", "Monthly statemnt 01/02/2024", true, true},
		{"ocr digit for letter", "Closng ba1ance 300.00", true, true},
		{"short tokens not fuzzed", "bonk cord", true, false},
		{"keyword inside a word", "Coffee beans were discarded", false, false},
		{"plural keywords", "Fees and charges apply", false, true},
		{"empty", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Recognizes(tt.text, tt.tolerant))
		})
	}
}

func TestVocabulary_Matches(t *testing.T) {
	v := NewVocabulary([]string{"Balance", " fee ", ""})

	got := v.Matches("Late FEE applied, balance due")
	assert.ElementsMatch(t, []string{"balance", "fee"}, got)

	assert.Empty(t, v.Matches("nothing here"))
	assert.Empty(t, v.Matches("coffee imbalanced"))
	assert.Equal(t, []string{"fee"}, v.Matches("coffee, then a fee"))
	assert.Equal(t, []string{"balance"}, v.Matches("Balances (EUR)"))
	assert.Empty(t, NewVocabulary(nil).Matches("balance"))
}
