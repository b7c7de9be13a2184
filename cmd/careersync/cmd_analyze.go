package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/tabular"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		table      string
		codePolicy string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report the regimes, locations and campuses a listing defines",
		Long: `Validates a listing and prints, as JSON, the code assigned to every
regime, location and campus, plus any name that appears with more than one
code. No document is read or written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := policyFor(codePolicy, a.cfg.CodePolicy)
			if err != nil {
				return err
			}
			records, err := readRecords(table)
			if err != nil {
				return err
			}
			_, summary := catalog.Analyze(records, policy)
			a.log.Debug("listing analyzed", "table", table, "summary", summary)

			resp := map[string]any{
				"table":   filepath.Base(table),
				"records": len(records),
				"summary": summary,
			}
			if kind, err := catalog.DetectSectionKind(table); err == nil {
				resp["section"] = kind
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "    ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "program listing to read")
	cmd.Flags().StringVar(&codePolicy, "code-policy", "", "which code wins on conflicts: last or first")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

// readRecords reads and validates a listing file.
func readRecords(path string) ([]catalog.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := tabular.ReadFile(f, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return catalog.NormalizeAndValidate(table.Records())
}
