package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/invoice-cli/internal/engine"
	"github.com/sells-group/invoice-cli/internal/export"
	"github.com/sells-group/invoice-cli/internal/model"
)

var (
	processInvoice     string
	processCombined    bool
	processFormat      string
	processOutput      string
	processSummary     bool
	processBySKU       bool
	processConcurrency int
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Extract, normalize, and export invoice line items",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(cfg)
		if err != nil {
			return err
		}

		format, err := export.ParseFormat(processFormat)
		if err != nil {
			return err
		}

		concurrency := processConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}
		files, err := loadFiles(cmd.Context(), args, concurrency)
		if err != nil {
			return err
		}

		res, err := eng.Process(cmd.Context(), files, engine.Options{
			InvoiceNumber: processInvoice,
			Combined:      processCombined,
			Format:        format,
			BySKU:         processBySKU,
			OutputPath:    processOutput,
		})
		if err != nil {
			return eris.Wrap(err, "process")
		}

		printResult(cmd, res, processSummary)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processInvoice, "invoice", "", "filter rows to one invoice number")
	processCmd.Flags().BoolVar(&processCombined, "combined", false, "pair PDF and TXT files describing the same shipment and merge them")
	processCmd.Flags().StringVar(&processFormat, "format", "csv", "output format: csv or xlsx")
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "output path (default: generated under the outputs dir)")
	processCmd.Flags().BoolVar(&processSummary, "summary", false, "print the invoice summary")
	processCmd.Flags().BoolVar(&processBySKU, "by-sku", false, "collapse output rows to one per distinct sku")
	processCmd.Flags().IntVar(&processConcurrency, "concurrency", 0, "parallel file reads (default from config)")
	rootCmd.AddCommand(processCmd)
}

// loadFiles reads the named files into memory with a bounded errgroup.
// Results land at their input index, so the engine sees them in the
// order they were given regardless of read completion order.
func loadFiles(ctx context.Context, paths []string, concurrency int) ([]model.File, error) {
	files := make([]model.File, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "read %s", path)
			}
			files[i] = model.File{Filename: filepath.Base(path), Content: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// printResult reports the processing outcome on stdout and warnings
// on the log.
func printResult(cmd *cobra.Command, res *model.ProcessResult, withSummary bool) {
	for _, w := range res.Warnings {
		zap.L().Warn("processing warning",
			zap.String("kind", string(w.Kind)),
			zap.String("file", w.Filename),
			zap.String("message", w.Message),
		)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d line items (%d rows skipped)\n", len(res.Items), res.SkippedRows)
	if res.CSVPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", res.CSVPath)
	}

	if !withSummary || res.Summary == nil {
		return
	}
	s := res.Summary
	out := cmd.OutOrStdout()
	if s.InvoiceNumber != "" {
		fmt.Fprintf(out, "invoice:        %s\n", s.InvoiceNumber)
	}
	fmt.Fprintf(out, "total lines:    %d\n", s.TotalLines)
	fmt.Fprintf(out, "total quantity: %s\n", s.TotalQuantity.String())
	fmt.Fprintf(out, "net weight:     %s kg\n", s.TotalNetWeight.StringFixed(2))
	fmt.Fprintf(out, "gross weight:   %s kg\n", s.TotalGrossWeight.StringFixed(2))
	fmt.Fprintf(out, "total value:    %s\n", s.TotalValue.StringFixed(2))
	fmt.Fprintf(out, "unique HTS:     %d\n", s.UniqueHTSCodes)
	fmt.Fprintf(out, "unique SKUs:    %d\n", s.UniqueSKUs)
	for _, hv := range s.TopHTSCodes {
		fmt.Fprintf(out, "  %-16s %s\n", hv.HTSCode, hv.Value.StringFixed(2))
	}
}
