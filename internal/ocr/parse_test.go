package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCardNumber(t *testing.T) {
	n, ok := ExtractCardNumber("Charizard\n4/102\n")
	assert.True(t, ok)
	assert.Equal(t, "4/102", n)

	n, ok = ExtractCardNumber("no number here")
	assert.False(t, ok)
	assert.Equal(t, "", n)
}

func TestExtractCardNumber_FirstMatchWins(t *testing.T) {
	n, ok := ExtractCardNumber("HP 120\n25/198 illus. 3/4")
	assert.True(t, ok)
	assert.Equal(t, "25/198", n)
}

func TestExtractCardName(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "longest line wins",
			text:   "Pikachu\nLightning Ball\nBasic Pokémon",
			want:   "Lightning Ball",
			wantOK: true,
		},
		{
			name:   "short and numeric lines are skipped",
			text:   "HP\n60\n12345\nMew",
			want:   "Mew",
			wantOK: true,
		},
		{
			name:   "lines with several numbers are skipped",
			text:   "Thunder Shock 10 20 30 40\nRaichu",
			want:   "Raichu",
			wantOK: true,
		},
		{
			name:   "one number is allowed",
			text:   "Mr. Mime\nStage 1 Pokémon",
			want:   "Stage 1 Pokémon",
			wantOK: true,
		},
		{
			name:   "noise characters are removed",
			text:   "★ Charizard ex ★",
			want:   "Charizard ex",
			wantOK: true,
		},
		{
			name:   "allowed punctuation survives",
			text:   "Farfetch'd - Lv: 4/102",
			want:   "Farfetch'd - Lv: 4/102",
			wantOK: true,
		},
		{
			name:   "first of equal length lines wins",
			text:   "Abra\nOnix",
			want:   "Abra",
			wantOK: true,
		},
		{
			name:   "unicode spaces are kept",
			text:   "Pikachu\u00a0VMAX\nab",
			want:   "Pikachu\u00a0VMAX",
			wantOK: true,
		},
		{
			name:   "only noise characters",
			text:   "★★★\n12",
			wantOK: false,
		},
		{
			name:   "nothing usable",
			text:   "12\n 7 \n\n123456",
			wantOK: false,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCardName(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
