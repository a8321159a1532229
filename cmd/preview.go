package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/invoice-cli/internal/engine"
	"github.com/sells-group/invoice-cli/internal/model"
)

var previewJSON bool

var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "Show a file's detected format and raw structure without processing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := engine.New(cfg)
		if err != nil {
			return err
		}

		res, err := eng.Preview(cmd.Context(), model.File{
			Filename: filepath.Base(args[0]),
			Path:     args[0],
		})
		if err != nil {
			return eris.Wrap(err, "preview")
		}

		if previewJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "format:  %s\n", res.Format)
		fmt.Fprintf(out, "columns: %s\n", strings.Join(res.Columns, ", "))
		for i, row := range res.SampleRows {
			fmt.Fprintf(out, "row %d:\n", i+1)
			for _, col := range res.Columns {
				if v, ok := row[col]; ok {
					fmt.Fprintf(out, "  %-20s %s\n", col, v)
				}
			}
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "emit JSON instead of text")
	rootCmd.AddCommand(previewCmd)
}
