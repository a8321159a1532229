package model

// WarningKind names a non-fatal condition surfaced alongside output.
type WarningKind string

const (
	// WarnInputFormat flags a file that could not be read or typed.
	WarnInputFormat WarningKind = "input_format"
	// WarnExtraction flags a file that yielded zero raw rows.
	WarnExtraction WarningKind = "extraction"
	// WarnPairing flags a PDF no TXT cleared the similarity threshold for.
	WarnPairing WarningKind = "pairing_ambiguous"
)

// Warning is a per-file condition recorded during processing. Warnings
// accompany partial results; they never abort the pipeline.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Filename string      `json:"filename,omitempty"`
	Message  string      `json:"message"`
}

// ProcessResult is the full outcome of one processing call.
type ProcessResult struct {
	Items       []LineItem      `json:"items"`
	Summary     *InvoiceSummary `json:"summary"`
	CSVPath     string          `json:"csv_path,omitempty"`
	SkippedRows int             `json:"skipped_rows"`
	Warnings    []Warning       `json:"warnings"`
	Pairs       []FilePair      `json:"pairs,omitempty"`
	Unmatched   []File          `json:"unmatched,omitempty"`
}

// PreviewResult shows a file's raw structure before processing: the
// detected format, the column names, and the first few raw rows.
type PreviewResult struct {
	Format     Format   `json:"format"`
	Columns    []string `json:"columns"`
	SampleRows []RawRow `json:"sample_rows"`
}

// PairingResult is the pairing resolver's proposal for a file set.
type PairingResult struct {
	Pairs     []FilePair `json:"pairs"`
	Unmatched []File     `json:"unmatched"`
}
