package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sells-group/invoice-cli/internal/engine"
	"github.com/sells-group/invoice-cli/internal/model"
)

var pairsJSON bool

var pairsCmd = &cobra.Command{
	Use:   "pairs [files...]",
	Short: "Propose PDF/TXT pairs by filename similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(cfg)
		if err != nil {
			return err
		}

		files := make([]model.File, 0, len(args))
		for _, path := range args {
			files = append(files, model.File{Filename: filepath.Base(path), Path: path})
		}
		res := eng.ResolvePairs(files)

		if pairsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		out := cmd.OutOrStdout()
		for _, p := range res.Pairs {
			fmt.Fprintf(out, "%s  <->  %s  (%.2f)\n", p.PDF.Filename, p.TXT.Filename, p.Score)
		}
		for _, f := range res.Unmatched {
			fmt.Fprintf(out, "unmatched: %s\n", f.Filename)
		}
		return nil
	},
}

func init() {
	pairsCmd.Flags().BoolVar(&pairsJSON, "json", false, "emit JSON instead of text")
	rootCmd.AddCommand(pairsCmd)
}
