package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/raine/tcg-card-lister/internal/card"
	"github.com/raine/tcg-card-lister/internal/scan"
	"github.com/raine/tcg-card-lister/internal/storage"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 4

// ListingAssembler builds one listing from a group of scans.
type ListingAssembler interface {
	Assemble(ctx context.Context, g scan.Group) (*card.Listing, error)
}

// ListingRecorder keeps a history of processed batches.
type ListingRecorder interface {
	CreateBatch(scansDir string) (*storage.Batch, error)
	SaveListing(batchID string, l *card.Listing) error
}

type ProcessorOpts struct {
	Assembler   ListingAssembler
	Recorder    ListingRecorder
	Concurrency int
	ScansDir    string
}

// Processor assembles listings for many groups concurrently.
type Processor struct {
	assembler   ListingAssembler
	recorder    ListingRecorder
	concurrency int
	scansDir    string
}

func NewProcessor(opts ProcessorOpts) *Processor {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Processor{
		assembler:   opts.Assembler,
		recorder:    opts.Recorder,
		concurrency: concurrency,
		scansDir:    opts.ScansDir,
	}
}

// Result is the outcome of a processing run.
type Result struct {
	BatchID  string
	Listings []*card.Listing
	Failed   []string
}

// Run assembles a listing for every group. Groups that fail are logged and
// reported in Result.Failed; only a cancelled context stops the run.
// Listings are returned in the order of groups.
func (p *Processor) Run(ctx context.Context, groups []scan.Group) (*Result, error) {
	batchID := uuid.New().String()
	if p.recorder != nil {
		batch, err := p.recorder.CreateBatch(p.scansDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create batch: %w", err)
		}
		batchID = batch.ID
	}

	log.Info().
		Str("batchId", batchID).
		Int("groups", len(groups)).
		Int("concurrency", p.concurrency).
		Msg("processing batch")

	listings := make([]*card.Listing, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range groups {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			l, err := p.assembler.Assemble(ctx, groups[i])
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return err
				}
				log.Error().Err(err).Str("group", groups[i].Key).Msg("failed to process group")
				return nil
			}
			listings[i] = l

			if p.recorder != nil {
				if err := p.recorder.SaveListing(batchID, l); err != nil {
					log.Error().Err(err).Str("group", groups[i].Key).Msg("failed to save listing")
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{BatchID: batchID, Listings: make([]*card.Listing, 0, len(groups))}
	for i, l := range listings {
		if l == nil {
			res.Failed = append(res.Failed, groups[i].Key)
			continue
		}
		res.Listings = append(res.Listings, l)
	}

	log.Info().
		Str("batchId", batchID).
		Int("listings", len(res.Listings)).
		Int("failed", len(res.Failed)).
		Msg("batch processed")

	return res, nil
}
