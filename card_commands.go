package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/raine/tcg-card-lister/internal/ocr"
	"github.com/raine/tcg-card-lister/internal/pricing"
	"github.com/spf13/cobra"
)

func newClassifyCommand() *cobra.Command {
	var priceCategory string

	cmd := &cobra.Command{
		Use:         "classify <card.json>",
		Short:       "Show the finish, features and prices of a saved Pokémon TCG API card",
		Args:        cobra.ExactArgs(1),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readRawCard(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderClassification(raw, priceCategory))
			return nil
		},
	}

	cmd.Flags().StringVar(&priceCategory, "price-category", "", "TCGPlayer price category, chosen from the card's prices if empty")

	return cmd
}

// readRawCard reads a card object, either bare or wrapped in the API's
// {"data": ...} envelope.
func readRawCard(path string) (card.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return card.Raw{}, fmt.Errorf("failed to read card: %w", err)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		data = envelope.Data
	}

	var raw card.Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return card.Raw{}, fmt.Errorf("failed to parse card: %w", err)
	}
	return raw, nil
}

func renderClassification(raw card.Raw, priceCategory string) string {
	market := "none"
	if raw.TCGPlayer != nil {
		if m, ok := pricing.SelectMarketPrice(raw.TCGPlayer.Prices, nil, "English", raw.Set.Name); ok {
			if priceCategory == "" {
				priceCategory = m.Category
			}
			market = fmt.Sprintf("%s (%s)", m.Price, m.Category)
		}
	}

	features := card.ExtractFeatures(raw, priceCategory)
	quote := pricing.NewPromoPricer(nil).FallbackPrice(raw.Name, raw.Set.Name, raw.Rarity, raw.Number, features)

	rows := [][]string{
		{"Name", raw.Name},
		{"Set", raw.Set.Name},
		{"Number", raw.Number},
		{"Rarity", raw.Rarity},
		{"Price category", priceCategory},
		{"Finish", string(card.ClassifyFinish(raw, priceCategory))},
		{"Features", strings.Join(features, ", ")},
		{"Market price", market},
		{"Fallback price", fmt.Sprintf("%s (%s)", quote.Price, quote.Source)},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func newPriceCommand() *cobra.Command {
	var name, setName, rarity, number string
	var characteristics []string
	var markup, floor float64

	cmd := &cobra.Command{
		Use:         "price",
		Short:       "Estimate the price of a card without market data",
		Args:        cobra.NoArgs,
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			quote := pricing.NewPromoPricer(nil).FallbackPrice(name, setName, rarity, number, characteristics)
			final := pricing.NewCalculator(markup, pricing.Dollars(floor)).Final(quote.Price)

			rows := [][]string{
				{"Source", quote.Source},
				{"Estimate", quote.Price.String()},
				{"Listing price", final.String()},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Card name")
	cmd.Flags().StringVar(&setName, "set", "", "Set name")
	cmd.Flags().StringVar(&rarity, "rarity", "", "Rarity")
	cmd.Flags().StringVar(&number, "number", "", "Collector number")
	cmd.Flags().StringSliceVar(&characteristics, "char", nil, "Characteristic, may be repeated")
	cmd.Flags().Float64Var(&markup, "markup", pricing.DefaultMarkup, "Markup applied to the estimate")
	cmd.Flags().Float64Var(&floor, "floor", pricing.DefaultFloor.Float64(), "Minimum listing price")

	return cmd
}

func newParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "parse [text-file]",
		Short:       "Extract the card name and number from card text (stdin if no file)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 0 || args[0] == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read text: %w", err)
			}

			text := string(data)
			name, ok := ocr.ExtractCardName(text)
			if !ok {
				name = "(none)"
			}
			number, ok := ocr.ExtractCardNumber(text)
			if !ok {
				number = "(none)"
			}

			rows := [][]string{{"Name", name}, {"Number", number}}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}
