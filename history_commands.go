package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/raine/tcg-card-lister/internal/storage"
	"github.com/spf13/cobra"
)

func openStore(ctx *commandContext) (*storage.SQLiteStore, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStore(cfg.DBPath, time.Duration(cfg.PriceCacheDays)*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [batch-id]",
		Short: "List recent batches, or the listings of one batch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			const stampLayout = "2006-01-02 15:04"

			if len(args) == 0 {
				batches, err := store.ListBatches(limit)
				if err != nil {
					return err
				}
				if len(batches) == 0 {
					fmt.Fprintln(out, "No batches recorded")
					return nil
				}
				rows := make([][]string, 0, len(batches))
				for _, b := range batches {
					rows = append(rows, []string{
						b.ID,
						b.CreatedAt.Local().Format(stampLayout),
						b.ScansDir,
						fmt.Sprint(b.Listings),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Batch", "Created", "Scans", "Listings"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			}

			records, err := store.GetListings(args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no listings recorded for batch %s", args[0])
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.GroupKey,
					r.Name,
					r.SetName,
					r.Finish,
					strings.Join(r.Features, ", "),
					fmt.Sprintf("%.2f", r.FinalPrice),
					r.ReviewFlag,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Group", "Name", "Set", "Finish", "Features", "Price", "Review"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of batches to list")

	return cmd
}

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the price lookup cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Remove expired price lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.PrunePriceCache()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired price lookups\n", n)
			return nil
		},
	})

	return cacheCmd
}
