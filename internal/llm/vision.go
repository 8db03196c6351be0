package llm

import (
	"context"

	"github.com/raine/tcg-card-lister/internal/card"
)

// Usage contains token usage and cost information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// IdentifyResult contains the card identification and usage information.
type IdentifyResult struct {
	Card  *card.Identification
	Usage Usage
}

// Analyzer identifies trading cards from images.
type Analyzer interface {
	// IdentifyCard takes the images of one card (front, optionally back)
	// and returns what is printed on it.
	IdentifyCard(ctx context.Context, images [][]byte) (*IdentifyResult, error)
}

// TitleWriter writes marketplace titles for processed cards.
type TitleWriter interface {
	GenerateTitle(ctx context.Context, l *card.Listing) (string, error)
}

// MaxTitleLength is eBay's title limit.
const MaxTitleLength = 80
