// Package engine is the processing facade: it wires the format
// detector, field extractors, normalizer, pairing resolver, combiner,
// aggregator, and exporter into the Process / Preview / ResolvePairs
// operations the CLI and HTTP layers call. The engine is stateless
// between calls; every counter and warning is scoped to one call, so
// concurrent invocations never interfere.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/aggregate"
	"github.com/sells-group/invoice-cli/internal/combine"
	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/detect"
	"github.com/sells-group/invoice-cli/internal/export"
	"github.com/sells-group/invoice-cli/internal/extract"
	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/normalize"
	"github.com/sells-group/invoice-cli/internal/pairing"
	"github.com/sells-group/invoice-cli/internal/store"
)

// ErrNoInput is the only fatal condition: no files were supplied, or
// none could be read. Everything else degrades to warnings.
var ErrNoInput = eris.New("engine: no processable input files")

// previewRows caps how many raw rows a preview returns.
const previewRows = 5

// Options adjust one Process call.
type Options struct {
	// InvoiceNumber filters rows to one invoice (case-insensitive
	// exact match) when non-empty.
	InvoiceNumber string
	// Combined enables PDF↔TXT pairing and merging.
	Combined bool
	// Format selects the export rendition; empty means CSV.
	Format export.Format
	// BySKU collapses the output rows to one per distinct sku.
	BySKU bool
	// OutputPath overrides the workspace-generated artifact path.
	OutputPath string
	// NoExport skips writing the artifact (summary-only callers).
	NoExport bool
}

// Engine runs the extraction → normalization → combination pipeline.
type Engine struct {
	detector   *detect.Detector
	extractors *extract.Set
	normalizer *normalize.Normalizer
	resolver   *pairing.Resolver
	aggregator *aggregate.Aggregator
	workspace  *store.Workspace
}

// New builds the engine from configuration.
func New(cfg *config.Config) (*Engine, error) {
	normalizer, err := normalize.NewNormalizer(cfg.Normalize)
	if err != nil {
		return nil, err
	}

	provider, err := extract.NewTextProvider(cfg.PDF)
	if err != nil {
		return nil, err
	}

	workspace, err := store.NewWorkspace(cfg.Workspace)
	if err != nil {
		return nil, err
	}

	return &Engine{
		detector:   detect.NewDetector(cfg.Detect, normalizer.Aliases().Knows),
		extractors: extract.NewSet(provider),
		normalizer: normalizer,
		resolver:   pairing.NewResolver(cfg.Pairing),
		aggregator: aggregate.NewAggregator(cfg.Aggregate),
		workspace:  workspace,
	}, nil
}

// Workspace exposes the underlying file workspace for the HTTP layer.
func (e *Engine) Workspace() *store.Workspace {
	return e.workspace
}

// Process runs the full pipeline over files. The returned error is
// non-nil only for ErrNoInput; per-file and per-row conditions come
// back inside the result.
func (e *Engine) Process(ctx context.Context, files []model.File, opts Options) (*model.ProcessResult, error) {
	if len(files) == 0 {
		return nil, ErrNoInput
	}

	res := &model.ProcessResult{}

	if opts.Combined {
		e.processCombined(ctx, files, opts, res)
	} else {
		e.processFlat(ctx, files, opts, res)
	}

	if len(res.Items) == 0 && allFailed(len(files), res.Warnings) {
		return nil, eris.Wrap(ErrNoInput, "engine: every supplied file was unreadable")
	}

	if opts.BySKU {
		res.Items = aggregate.BySKU(res.Items)
	}

	res.Summary = e.aggregator.Summarize(res.Items)
	if opts.InvoiceNumber != "" {
		res.Summary.InvoiceNumber = opts.InvoiceNumber
	}

	if !opts.NoExport {
		if err := e.writeArtifact(res, opts); err != nil {
			return nil, err
		}
	}

	zap.L().Info("processing complete",
		zap.Int("files", len(files)),
		zap.Int("items", len(res.Items)),
		zap.Int("skipped_rows", res.SkippedRows),
		zap.Int("warnings", len(res.Warnings)),
	)
	return res, nil
}

// processFlat parses every file independently and concatenates the
// normalized rows in input order.
func (e *Engine) processFlat(ctx context.Context, files []model.File, opts Options, res *model.ProcessResult) {
	for _, f := range files {
		items := e.parseFile(ctx, f, opts.InvoiceNumber, res)
		res.Items = append(res.Items, items...)
	}
}

// processCombined resolves PDF↔TXT pairs, merges each pair, and then
// processes leftovers standalone. Pair output precedes unmatched
// output, both in resolution order.
func (e *Engine) processCombined(ctx context.Context, files []model.File, opts Options, res *model.ProcessResult) {
	pr := e.resolver.Resolve(files)
	res.Pairs = pr.Pairs
	res.Unmatched = pr.Unmatched

	for _, pair := range pr.Pairs {
		txtItems := e.parseFile(ctx, pair.TXT, opts.InvoiceNumber, res)
		pdfItems := e.parseFile(ctx, pair.PDF, opts.InvoiceNumber, res)
		res.Items = append(res.Items, combine.Merge(txtItems, pdfItems)...)
	}

	for _, f := range pr.Unmatched {
		if strings.EqualFold(filepath.Ext(f.Filename), ".pdf") {
			res.Warnings = append(res.Warnings, model.Warning{
				Kind:     model.WarnPairing,
				Filename: f.Filename,
				Message:  "no text file cleared the similarity threshold; processed standalone",
			})
		}
		res.Items = append(res.Items, e.parseFile(ctx, f, opts.InvoiceNumber, res)...)
	}
}

// parseFile runs detect → extract → normalize for one file,
// accumulating warnings and the skipped-row tally on res.
func (e *Engine) parseFile(ctx context.Context, f model.File, invoiceFilter string, res *model.ProcessResult) []model.LineItem {
	data, err := readFile(f)
	if err != nil {
		res.Warnings = append(res.Warnings, model.Warning{
			Kind:     model.WarnInputFormat,
			Filename: f.Filename,
			Message:  err.Error(),
		})
		return nil
	}

	format := e.detector.Detect(f.Filename, data)
	er := e.extractors.ForFormat(format).Extract(ctx, data)

	res.SkippedRows += er.Skipped
	if er.Warning != "" {
		res.Warnings = append(res.Warnings, model.Warning{
			Kind:     model.WarnExtraction,
			Filename: f.Filename,
			Message:  er.Warning,
		})
	}

	items, skipped := e.normalizer.Normalize(er.Rows, sourceTagFor(format), invoiceFilter)
	res.SkippedRows += skipped
	return items
}

// Preview shows a file's raw structure: detector + extractor only,
// no normalization, capped at the first few rows.
func (e *Engine) Preview(ctx context.Context, f model.File) (*model.PreviewResult, error) {
	data, err := readFile(f)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: preview %s", f.Filename)
	}

	format := e.detector.Detect(f.Filename, data)
	er := e.extractors.ForFormat(format).Extract(ctx, data)

	rows := er.Rows
	if len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	return &model.PreviewResult{
		Format:     format,
		Columns:    er.Columns,
		SampleRows: rows,
	}, nil
}

// ResolvePairs proposes PDF↔TXT pairs for UI confirmation before a
// combined Process call.
func (e *Engine) ResolvePairs(files []model.File) *model.PairingResult {
	return e.resolver.Resolve(files)
}

// writeArtifact writes the artifact and records its path on the result.
func (e *Engine) writeArtifact(res *model.ProcessResult, opts Options) error {
	format := opts.Format
	if format == "" {
		format = export.FormatCSV
	}

	path := opts.OutputPath
	if path == "" {
		name := export.Filename(res.Summary.InvoiceNumber, format, time.Now().UTC())
		var err error
		path, err = e.workspace.OutputPath(name)
		if err != nil {
			return err
		}
	}

	if err := export.WriteFile(path, res.Items, format); err != nil {
		return err
	}
	res.CSVPath = path
	return nil
}

// sourceTagFor maps a detected format to the line-item source tag.
func sourceTagFor(format model.Format) model.SourceTag {
	switch format {
	case model.FormatPDFText:
		return model.SourcePDF
	case model.FormatCSV:
		return model.SourceCSV
	default:
		return model.SourceTXT
	}
}

// readFile returns the file's bytes; in-memory content wins over the
// on-disk path.
func readFile(f model.File) ([]byte, error) {
	if f.Content != nil {
		return f.Content, nil
	}
	if f.Path == "" {
		return nil, fmt.Errorf("file %s has neither content nor path", f.Filename)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v", f.Filename, err)
	}
	return data, nil
}

// allFailed reports whether every input file produced an input-format
// warning, i.e. nothing was readable at all.
func allFailed(fileCount int, warnings []model.Warning) bool {
	unreadable := 0
	for _, w := range warnings {
		if w.Kind == model.WarnInputFormat {
			unreadable++
		}
	}
	return unreadable >= fileCount
}
