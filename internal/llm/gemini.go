package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/dedent"
	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	geminiModel     = "gemini-3-flash-preview"
	geminiLiteModel = "gemini-2.5-flash-lite"
)

// Gemini pricing (per million tokens)
const (
	geminiInputPricePerMillion      = 0.50
	geminiOutputPricePerMillion     = 3.00
	geminiLiteInputPricePerMillion  = 0.075
	geminiLiteOutputPricePerMillion = 0.30
)

// Front and back are enough; anything beyond is noise.
const maxImagesPerCard = 4

var identifyPrompt = strings.TrimSpace(dedent.Dedent(`
	Identify the trading card shown in these images. The first image is the
	front of the card; a second image, if present, is the back.

	Respond in JSON format with these fields:
	- name: the card name exactly as printed, without HP or stage text
	- set_name: the full English set name (e.g. "Base Set", "Evolving Skies", "SWSH Black Star Promos")
	- number: the collector number as printed (e.g. "4/102", "SWSH039", "TG05/TG30"), empty string if none
	- rarity: the rarity (e.g. "Common", "Rare Holo", "Promo"), empty string if unknown
	- game: "Pokemon", "Magic: The Gathering" or the name of another game
	- language: the card language in English (e.g. "English", "Japanese")
	- characteristics: list of notable traits such as "1st Edition", "Shadowless", "Holo", "Reverse Holo", "Staff", "Stamped", "Prerelease", "Promo", "Foil", "Error"; empty list if none
	- confidence: how certain you are of name and set, from 0.0 to 1.0
	- raw_text: all text you can read on the front of the card, one line per printed line

	Example response:
	{"name": "Charizard", "set_name": "Base Set", "number": "4/102", "rarity": "Rare Holo", "game": "Pokemon", "language": "English", "characteristics": ["Holo", "Shadowless"], "confidence": 0.95, "raw_text": "Charizard\n120 HP\nFire Spin 100\n4/102"}

	Respond ONLY with the JSON object, no markdown or other text.
`))

const titlePrompt = `Write an eBay listing title for this trading card.

Template: [Game] {Card Name} {Number} {Set Name} {Rarity} {Finish} {Unique Characteristic} NM/LP

Rules:
- Start with "Pokémon" for Pokemon cards or "MTG" for Magic cards
- Skip default terms: Normal, Regular, Common, Uncommon (Pokemon), Non-Holo, Non-Foil, English
- Always include holo or foil finishes
- Use "Promo" only once
- Add "JP" at the end only for Japanese cards
- Never repeat words
- At most %d characters

Card:
- Game: %s
- Name: %s
- Number: %s
- Set: %s
- Rarity: %s
- Finish: %s
- Unique characteristics: %s
- Language: %s

Respond with ONLY the title, no quotes or explanation.`

// GeminiAnalyzer uses Google's Gemini API for card identification and
// title writing.
type GeminiAnalyzer struct {
	client *genai.Client
}

// NewGeminiAnalyzer creates a new Gemini-based analyzer using apiKey.
func NewGeminiAnalyzer(ctx context.Context, apiKey string) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiAnalyzer{client: client}, nil
}

// IdentifyCard implements the Analyzer interface using Gemini.
func (g *GeminiAnalyzer) IdentifyCard(ctx context.Context, images [][]byte) (*IdentifyResult, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images provided")
	}
	if len(images) > maxImagesPerCard {
		images = images[:maxImagesPerCard]
	}

	// Build parts: prompt first, then all images
	parts := []*genai.Part{
		genai.NewPartFromText(identifyPrompt),
	}
	for _, imgData := range images {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: imgData, MIMEType: detectImageType(imgData)},
		})
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	id, err := parseIdentification(result.Text())
	if err != nil {
		return nil, err
	}

	// Calculate usage and cost
	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = calculateGeminiCost(usage.InputTokens, usage.OutputTokens, geminiInputPricePerMillion, geminiOutputPricePerMillion)
	}

	log.Info().
		Str("model", geminiModel).
		Int("imageCount", len(images)).
		Int64("inputTokens", usage.InputTokens).
		Int64("outputTokens", usage.OutputTokens).
		Float64("costUSD", usage.CostUSD).
		Str("name", id.Name).
		Float64("confidence", id.Confidence).
		Msg("vision llm call")

	return &IdentifyResult{Card: id, Usage: usage}, nil
}

// GenerateTitle writes an eBay title for l with the lite model. Titles
// over MaxTitleLength are rejected so the caller can fall back.
func (g *GeminiAnalyzer) GenerateTitle(ctx context.Context, l *card.Listing) (string, error) {
	chars := strings.Join(l.Characteristics, ", ")
	if chars == "" {
		chars = "None"
	}
	lang := l.Language
	if lang == "" {
		lang = "English"
	}
	prompt := fmt.Sprintf(titlePrompt, MaxTitleLength, l.Game, l.Name, l.Number, l.SetName, l.Rarity, l.Finish, chars, lang)

	result, err := g.client.Models.GenerateContent(ctx, geminiLiteModel, []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("gemini title generation failed: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	title := cleanTitle(result.Text())

	// Log usage and cost
	if result.UsageMetadata != nil {
		cost := calculateGeminiCost(
			int64(result.UsageMetadata.PromptTokenCount),
			int64(result.UsageMetadata.CandidatesTokenCount),
			geminiLiteInputPricePerMillion,
			geminiLiteOutputPricePerMillion,
		)
		log.Info().
			Str("model", geminiLiteModel).
			Int("inputTokens", int(result.UsageMetadata.PromptTokenCount)).
			Int("outputTokens", int(result.UsageMetadata.CandidatesTokenCount)).
			Float64("costUSD", cost).
			Str("title", title).
			Msg("title llm call")
	}

	if title == "" {
		return "", fmt.Errorf("empty title from gemini")
	}
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return "", fmt.Errorf("title too long: %d characters", n)
	}

	return title, nil
}

func calculateGeminiCost(inputTokens, outputTokens int64, inputPrice, outputPrice float64) float64 {
	inputCost := float64(inputTokens) / 1_000_000 * inputPrice
	outputCost := float64(outputTokens) / 1_000_000 * outputPrice
	return inputCost + outputCost
}

// extractJSONObject extracts a JSON object from text that may contain markdown
// code blocks or other formatting. Returns the extracted JSON string or an error.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response: %s", text)
	}
	return text[start : end+1], nil
}

func parseIdentification(text string) (*card.Identification, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}

	var id card.Identification
	if err := json.Unmarshal([]byte(jsonStr), &id); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w (response: %s)", err, jsonStr)
	}

	id.Name = strings.TrimSpace(id.Name)
	id.SetName = strings.TrimSpace(id.SetName)
	id.Number = strings.TrimSpace(id.Number)
	if id.Confidence < 0 {
		id.Confidence = 0
	}
	if id.Confidence > 1 {
		id.Confidence = 1
	}
	if id.Characteristics == nil {
		id.Characteristics = []string{}
	}

	return &id, nil
}

func cleanTitle(text string) string {
	title := strings.TrimSpace(text)

	// Strip markdown code blocks if present
	title = strings.TrimPrefix(title, "```text")
	title = strings.TrimPrefix(title, "```")
	title = strings.TrimSuffix(title, "```")
	title = strings.TrimSpace(title)

	// Only the first line is the title
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}

	// Strip surrounding quotes
	return strings.Trim(title, `"'`)
}

func detectImageType(data []byte) string {
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "image/") {
		return mime
	}
	return "image/jpeg"
}
