package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/pipeline"
	"github.com/dgallion1/careersync/internal/store"
	"github.com/spf13/cobra"
)

type replaceOptions struct {
	document   string
	table      string
	section    string
	outputDir  string
	codePolicy string
	dryRun     bool
}

func newReplaceCmd(a *app) *cobra.Command {
	var opts replaceOptions

	cmd := &cobra.Command{
		Use:   "replace",
		Short: "Replace one section of a careers document with a listing",
		Long: `Reads a program listing (CSV, HTML, Markdown, DOCX or PDF), builds the
regime, location, campus and program hierarchy, and writes a dated copy of
the document with the section replaced. The section is taken from --section
or from the listing's file name, which must contain pregrado or postgrado.`,
		Example: `  careersync replace --document careers.json --table pregrado.csv
  careersync replace --document careers.json --table oferta.csv --section postgrado --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplace(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.document, "document", "", "careers JSON document to update")
	cmd.Flags().StringVar(&opts.table, "table", "", "program listing to read")
	cmd.Flags().StringVar(&opts.section, "section", "", "pregrado or postgrado (default: from the listing name)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "directory for the output (default: beside the document)")
	cmd.Flags().StringVar(&opts.codePolicy, "code-policy", "", "which code wins on conflicts: last or first (default: CODE_POLICY or last)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the updated document instead of writing it")
	_ = cmd.MarkFlagRequired("document")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

func runReplace(cmd *cobra.Command, a *app, opts replaceOptions) error {
	kind, err := sectionFor(opts.section, opts.table)
	if err != nil {
		return err
	}
	policy, err := policyFor(opts.codePolicy, a.cfg.CodePolicy)
	if err != nil {
		return err
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = a.cfg.OutputDir
	}
	worker := pipeline.NewWorker(&store.FS{Dir: outputDir}, nil, a.log, policy)

	job := pipeline.NewJob(pipeline.Request{
		Document:    pipeline.Source{Path: opts.document},
		Table:       pipeline.Source{Path: opts.table},
		Section:     kind,
		CodePolicy:  policy,
		WriteOutput: !opts.dryRun,
	})
	worker.Process(cmd.Context(), job)

	snap := job.Snapshot()
	if snap.Status != pipeline.StatusCompleted {
		return fmt.Errorf("replace %s: %s", filepath.Base(opts.table), strings.Join(snap.Progress.Errors, "; "))
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		_, err := fmt.Fprintf(out, "%s\n", job.Result())
		return err
	}

	report := job.Report()
	fmt.Fprintf(out, "%s: %d records, %d regimes, %d campuses, %d programs\n",
		report.Key, report.Records, report.Stats.Regimes, report.Stats.Campuses, report.Stats.Programs)
	for _, c := range report.Summary.Conflicts {
		fmt.Fprintf(out, "  conflict: %s %q has codes %v, using %s\n", c.Field, c.Name, c.Codes, c.Used)
	}
	fmt.Fprintf(out, "written to %s\n", snap.OutputPath)
	return nil
}

// sectionFor prefers an explicit section over the one the file name implies.
func sectionFor(section, table string) (catalog.SectionKind, error) {
	if section != "" {
		return catalog.ParseSectionKind(section)
	}
	return catalog.DetectSectionKind(table)
}

// policyFor prefers the flag over the configured policy.
func policyFor(flag, configured string) (catalog.CodePolicy, error) {
	if flag != "" {
		return catalog.ParseCodePolicy(flag)
	}
	return catalog.ParseCodePolicy(configured)
}

