package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	got, err := extractJSONObject("```json\n{\"name\": \"Mew\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Mew"}`, got)

	_, err = extractJSONObject("I cannot identify this card.")
	assert.Error(t, err)

	_, err = extractJSONObject("} {")
	assert.Error(t, err)
}

func TestParseIdentification(t *testing.T) {
	id, err := parseIdentification(`Here you go:
{"name": " Charizard ", "set_name": "Base Set", "number": "4/102", "rarity": "Rare Holo", "game": "Pokemon", "language": "English", "characteristics": ["Holo"], "confidence": 1.4, "raw_text": "Charizard\n4/102"}`)
	require.NoError(t, err)

	assert.Equal(t, "Charizard", id.Name)
	assert.Equal(t, "Base Set", id.SetName)
	assert.Equal(t, "4/102", id.Number)
	assert.Equal(t, []string{"Holo"}, id.Characteristics)
	assert.Equal(t, 1.0, id.Confidence)
	assert.Equal(t, "Charizard\n4/102", id.RawText)
}

func TestParseIdentification_Defaults(t *testing.T) {
	id, err := parseIdentification(`{"name": "Mew", "confidence": -0.2}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, id.Confidence)
	assert.NotNil(t, id.Characteristics)
	assert.Empty(t, id.Characteristics)

	_, err = parseIdentification(`{"name": 12}`)
	assert.Error(t, err)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Pokémon Charizard 4/102 Base Set Holo Rare NM/LP",
		cleanTitle("\"Pokémon Charizard 4/102 Base Set Holo Rare NM/LP\"\n"))
	assert.Equal(t, "MTG Lightning Bolt Beta NM/LP",
		cleanTitle("```text\nMTG Lightning Bolt Beta NM/LP\n```"))
	assert.Equal(t, "First line", cleanTitle("First line\nSecond line"))
}

func TestCalculateGeminiCost(t *testing.T) {
	assert.InDelta(t, 3.50, calculateGeminiCost(1_000_000, 1_000_000, 0.50, 3.00), 1e-9)
	assert.Equal(t, 0.0, calculateGeminiCost(0, 0, 0.50, 3.00))
}

func TestDetectImageType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 16))
	assert.Equal(t, "image/png", detectImageType(png))
	assert.Equal(t, "image/jpeg", detectImageType([]byte("not an image")))
}

func TestIdentifyPrompt(t *testing.T) {
	assert.True(t, strings.HasPrefix(identifyPrompt, "Identify the trading card"))
	assert.Contains(t, identifyPrompt, "raw_text")
	assert.NotContains(t, identifyPrompt, "\n\tRespond")
}
