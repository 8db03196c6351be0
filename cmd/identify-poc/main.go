package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/raine/tcg-card-lister/config"
	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/raine/tcg-card-lister/internal/listing"
	"github.com/raine/tcg-card-lister/internal/llm"
	"github.com/raine/tcg-card-lister/internal/ocr"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <front-image> [back-image]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Required\n")
		os.Exit(1)
	}

	config.LoadEnvFile()

	var images [][]byte
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read image: %v\n", err)
			os.Exit(1)
		}
		images = append(images, data)
	}

	ctx := context.Background()
	analyzer, err := llm.NewGeminiAnalyzer(ctx, os.Getenv(config.EnvGeminiAPIKey))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating Gemini analyzer: %v\n", err)
		os.Exit(1)
	}

	result, err := analyzer.IdentifyCard(ctx, images)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error identifying card: %v\n", err)
		os.Exit(1)
	}

	printResult(result)
}

func printResult(result *llm.IdentifyResult) {
	c := result.Card
	fmt.Printf("Name:            %s\n", c.Name)
	fmt.Printf("Set:             %s\n", c.SetName)
	fmt.Printf("Number:          %s\n", c.Number)
	fmt.Printf("Rarity:          %s\n", c.Rarity)
	fmt.Printf("Game:            %s\n", c.Game)
	fmt.Printf("Language:        %s\n", c.Language)
	fmt.Printf("Characteristics: %s\n", strings.Join(c.Characteristics, ", "))
	fmt.Printf("Confidence:      %.2f (%s)\n", c.Confidence, listing.ReviewFlag(c.Name, c.Confidence))

	name, _ := ocr.ExtractCardName(c.RawText)
	number, _ := ocr.ExtractCardNumber(c.RawText)
	fmt.Printf("Text name:       %s\n", name)
	fmt.Printf("Text number:     %s\n", number)
	fmt.Printf("Fallback title:  %s\n", listing.FallbackTitle(&card.Listing{
		Name:            c.Name,
		SetName:         c.SetName,
		Number:          c.Number,
		Rarity:          c.Rarity,
		Game:            c.Game,
		Language:        c.Language,
		Characteristics: c.Characteristics,
	}))
	fmt.Println()
	fmt.Printf("Tokens:          %d in / %d out / %d total\n",
		result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.TotalTokens)
	fmt.Printf("Cost:            $%.6f\n", result.Usage.CostUSD)
}
