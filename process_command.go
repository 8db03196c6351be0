package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/raine/tcg-card-lister/config"
	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/raine/tcg-card-lister/internal/export"
	"github.com/raine/tcg-card-lister/internal/listing"
	"github.com/raine/tcg-card-lister/internal/llm"
	"github.com/raine/tcg-card-lister/internal/pricing"
	"github.com/raine/tcg-card-lister/internal/scan"
	"github.com/raine/tcg-card-lister/internal/storage"
	"github.com/raine/tcg-card-lister/internal/tcgapi"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	// The Pokémon TCG API allows far more requests with a key.
	pokemonRateLimit        = time.Second
	pokemonRateLimitWithKey = 100 * time.Millisecond
	scryfallRateLimit       = 100 * time.Millisecond
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var concurrency int
	var noTitles bool

	cmd := &cobra.Command{
		Use:   "process [scans-dir]",
		Short: "Identify and price every card in a scans folder and write the listing workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := requireConfig(cfg); err != nil {
				return err
			}

			scansDir := cfg.ScansDir
			if len(args) > 0 {
				scansDir = args[0]
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if concurrency > 0 {
				cfg.Concurrency = concurrency
			}

			return runProcess(cmd.Context(), cmd.OutOrStdout(), cfg, scansDir, !noTitles)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for the listing workbook")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", 0, "Number of cards processed at once")
	cmd.Flags().BoolVar(&noTitles, "no-titles", false, "Use rule based titles instead of the LLM")

	return cmd
}

func runProcess(ctx context.Context, out io.Writer, cfg config.Config, scansDir string, llmTitles bool) error {
	start := time.Now()

	groups, err := scan.FindGroups(scansDir)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return fmt.Errorf("no card images found in %s", scansDir)
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath, time.Duration(cfg.PriceCacheDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer store.Close()
	log.Info().Str("dbPath", cfg.DBPath).Msg("store initialized")

	gemini, err := llm.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to initialize gemini vision analyzer: %w", err)
	}

	rateLimit := pokemonRateLimit
	if cfg.PokemonTCGAPIKey != "" {
		rateLimit = pokemonRateLimitWithKey
	}

	analyzer := llm.NewCachedAnalyzer(gemini, store)

	assembler := listing.NewAssembler(listing.AssemblerOpts{
		Analyzer: analyzer,
		Pokemon: tcgapi.NewPokemonClient(tcgapi.PokemonClientOpts{
			APIKey:    cfg.PokemonTCGAPIKey,
			RateLimit: rateLimit,
		}),
		MTG:        tcgapi.NewScryfallClient(tcgapi.ScryfallClientOpts{RateLimit: scryfallRateLimit}),
		PriceCache: store,
		Calculator: pricing.NewCalculator(cfg.Markup, pricing.Dollars(cfg.PriceFloor)),
	})

	processor := listing.NewProcessor(listing.ProcessorOpts{
		Assembler:   assembler,
		Recorder:    store,
		Concurrency: cfg.Concurrency,
		ScansDir:    scansDir,
	})

	res, err := processor.Run(ctx, groups)
	if err != nil {
		return err
	}
	if len(res.Listings) == 0 {
		return fmt.Errorf("no cards could be processed (%d failed)", len(res.Failed))
	}

	var writer llm.TitleWriter
	if g := llm.GetGeminiAnalyzer(analyzer); llmTitles && g != nil {
		writer = g
	}
	titles, err := writeTitles(ctx, writer, res.Listings, cfg.Concurrency)
	if err != nil {
		return err
	}

	opts := export.Options{
		Location:     cfg.Location,
		PostalCode:   cfg.PostalCode,
		ImageBaseURL: cfg.ImageBaseURL,
		Policies: export.Policies{
			Payment:         cfg.PaymentPolicy,
			ShippingUnder20: cfg.ShippingPolicyUnder20,
			ShippingOver20:  cfg.ShippingPolicyOver20,
			Return:          cfg.ReturnPolicy,
		},
	}
	rows := make([]export.Row, len(res.Listings))
	for i, l := range res.Listings {
		rows[i] = export.FormatRow(l, titles[i], i, opts)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(cfg.OutputDir, fmt.Sprintf("tcg_listings_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := export.WriteWorkbook(path, rows); err != nil {
		return err
	}

	fmt.Fprintln(out, renderListings(res.Listings))
	fmt.Fprintf(out, "Batch:    %s\n", res.BatchID)
	fmt.Fprintf(out, "Listings: %d (%d need review, %d failed)\n", len(res.Listings), countReview(res.Listings), len(res.Failed))
	fmt.Fprintf(out, "Workbook: %s\n", path)

	log.Info().
		Str("batchId", res.BatchID).
		Dur("elapsed", time.Since(start)).
		Msg("processing finished")

	return nil
}

// writeTitles generates titles concurrently. Title never fails, so only a
// cancelled context stops it.
func writeTitles(ctx context.Context, w llm.TitleWriter, listings []*card.Listing, concurrency int) ([]string, error) {
	titles := make([]string, len(listings))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range listings {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			titles[i] = listing.Title(ctx, w, listings[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return titles, nil
}

func renderListings(listings []*card.Listing) string {
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			l.GroupKey,
			l.Name,
			l.SetName,
			l.Number,
			string(l.Finish),
			fmt.Sprintf("%.2f", l.FinalPrice),
			l.PriceSource,
			l.ReviewFlag,
		})
	}
	return renderTable(
		[]string{"Group", "Name", "Set", "Number", "Finish", "Price", "Source", "Review"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func countReview(listings []*card.Listing) int {
	n := 0
	for _, l := range listings {
		if l.ReviewFlag != card.ReviewOK {
			n++
		}
	}
	return n
}
