// Package pairing proposes PDF↔TXT file pairs describing the same
// shipment, scored by filename similarity.
package pairing

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/invoice-cli/internal/config"
	"github.com/sells-group/invoice-cli/internal/model"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeName reduces a filename to comparable form: extension
// stripped, lowercased, non-alphanumerics removed. "Invoice_100.PDF"
// and "invoice-100-data.txt" then share the substring "invoice100".
func normalizeName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	return nonAlnum.ReplaceAllString(strings.ToLower(base), "")
}

// similarity scores two normalized names by longest-common-substring
// ratio: 2·LCS / (len(a)+len(b)), in [0,1].
func similarity(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	lcs := longestCommonSubstring(a, b)
	return 2 * float64(lcs) / float64(len(a)+len(b))
}

// longestCommonSubstring returns the length of the longest contiguous
// substring shared by a and b. Filenames are short, so the quadratic
// rolling-row scan is fine.
func longestCommonSubstring(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	best := 0

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > best {
					best = cur[j]
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return best
}

// Resolver proposes file pairs above a similarity threshold.
type Resolver struct {
	minSimilarity float64
}

// NewResolver creates a Resolver from config.
func NewResolver(cfg config.PairingConfig) *Resolver {
	return &Resolver{minSimilarity: cfg.MinSimilarity}
}

// Resolve matches every PDF to its best TXT candidate. Assignment is
// greedy in PDF input order and each TXT is consumed at most once;
// this is deliberately not optimal bipartite matching, so results are
// reproducible for any input ordering. PDFs with no candidate above
// the threshold, and TXTs left over, come back as unmatched.
func (r *Resolver) Resolve(files []model.File) *model.PairingResult {
	var pdfs, txts, others []model.File
	for _, f := range files {
		switch strings.ToLower(filepath.Ext(f.Filename)) {
		case ".pdf":
			pdfs = append(pdfs, f)
		case ".txt":
			txts = append(txts, f)
		default:
			others = append(others, f)
		}
	}

	// TXT candidates in lexical filename order, so equal scores
	// resolve to the earliest name.
	sort.Slice(txts, func(i, j int) bool { return txts[i].Filename < txts[j].Filename })

	res := &model.PairingResult{}
	used := make(map[int]bool, len(txts))

	for _, pdf := range pdfs {
		norm := normalizeName(pdf.Filename)

		bestIdx := -1
		bestScore := 0.0
		for i, txt := range txts {
			if used[i] {
				continue
			}
			if s := similarity(norm, normalizeName(txt.Filename)); s > bestScore {
				bestIdx, bestScore = i, s
			}
		}

		if bestIdx < 0 || bestScore < r.minSimilarity {
			res.Unmatched = append(res.Unmatched, pdf)
			continue
		}
		used[bestIdx] = true
		res.Pairs = append(res.Pairs, model.FilePair{
			PDF:   pdf,
			TXT:   txts[bestIdx],
			Score: bestScore,
		})
	}

	for i, txt := range txts {
		if !used[i] {
			res.Unmatched = append(res.Unmatched, txt)
		}
	}
	res.Unmatched = append(res.Unmatched, others...)

	return res
}
