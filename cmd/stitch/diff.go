package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stitch/internal/baseline"
	"stitch/internal/checker"
	"stitch/internal/diag"
	"stitch/internal/project"
)

var diffCmd = &cobra.Command{
	Use:   "diff [flags] [-- extra checker args...]",
	Short: "Run the checker and diff its errors against the saved baseline",
	Long: `Run the external checker, summarize its diagnostics, diff the error
fingerprints against the previous run's baseline, and save the new baseline.
Arguments after -- are appended to the checker command.`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().Bool("no-save", false, "do not update the baseline file")
	diffCmd.Flags().String("baseline", "", "baseline file path (default from stitch.toml)")
	diffCmd.Flags().String("compare", "", "compare against a specific baseline file")
	diffCmd.Flags().Bool("fail-on-new", false, "exit with code 2 when new errors appeared")
	diffCmd.SilenceUsage = true
}

func runDiff(cmd *cobra.Command, args []string) error {
	noSave, err := cmd.Flags().GetBool("no-save")
	if err != nil {
		return err
	}
	baselineFlag, err := cmd.Flags().GetString("baseline")
	if err != nil {
		return err
	}
	comparePath, err := cmd.Flags().GetString("compare")
	if err != nil {
		return err
	}
	failOnNew, err := cmd.Flags().GetBool("fail-on-new")
	if err != nil {
		return err
	}

	manifest, root, err := project.LoadFrom(".")
	if err != nil {
		return err
	}
	baselinePath := baselineFlag
	if baselinePath == "" {
		baselinePath = filepath.Join(root, manifest.Baseline.Path)
	}

	runner := &checker.Runner{
		Command:        append(append([]string{}, manifest.Checker.Command...), args...),
		Dir:            filepath.Join(root, manifest.Checker.Dir),
		MaxDiagnostics: manifest.Checker.MaxDiagnostics,
	}
	result, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	keys := result.ErrorKeys()
	current := baseline.New(result.ReturnCode, result.Raw, keys)

	basePath := baselinePath
	if comparePath != "" {
		basePath = comparePath
	}
	prev, err := baseline.Load(basePath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !beQuiet(cmd) {
		printSummary(out, result.Bag)
	}

	hasNew := false
	if prev != nil {
		res := baseline.Diff(prev.ErrorKeys, keys)
		hasNew = res.HasNew()
		printDiff(out, res)
		printNewExamples(out, res, result.Bag)
	} else {
		fmt.Fprintln(out, "\n(no previous baseline to diff against)")
	}

	if !noSave {
		if err := baseline.Save(baselinePath, current); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved baseline to %s at %s\n", baselinePath, current.Timestamp)
	} else {
		fmt.Fprintln(out, "\n(did not save baseline; rerun without --no-save to persist)")
	}

	if failOnNew && hasNew {
		return fmt.Errorf("%w: new errors since previous run", errPartial)
	}
	return nil
}

func printSummary(out io.Writer, bag *diag.Bag) {
	s := baseline.Summarize(bag)
	fmt.Fprintln(out, "\n=== checker summary ===")
	fmt.Fprintf(out, "errors:   %d\n", s.TotalErrors)
	fmt.Fprintf(out, "warnings: %d\n", s.TotalWarnings)
	fmt.Fprintln(out, "\nTop error codes:")
	fmt.Fprintln(out, baseline.FormatCounter(s.ByCode, 10))
	fmt.Fprintln(out, "\nTop files with errors:")
	fmt.Fprintln(out, baseline.FormatCounter(s.ByFile, 10))
}

func printDiff(out io.Writer, res baseline.Result) {
	newColor := color.New(color.FgRed)
	resolvedColor := color.New(color.FgGreen)

	fmt.Fprintln(out, "\n=== diff vs previous run ===")
	fmt.Fprintf(out, "new errors:   %s\n", newColor.Sprintf("%d", len(res.New)))
	fmt.Fprintf(out, "resolved:     %s\n", resolvedColor.Sprintf("%d", len(res.Resolved)))
	fmt.Fprintf(out, "unchanged:    %d\n", res.Unchanged)
	fmt.Fprintf(out, "\nprogress since last run: %.1f%% of prior errors resolved\n", res.Progress())
}

// printNewExamples shows up to five of the newly appeared errors, located and
// headlined, so the diff is actionable without opening the raw stream.
func printNewExamples(out io.Writer, res baseline.Result, bag *diag.Bag) {
	if !res.HasNew() {
		return
	}
	isNew := make(map[string]bool, len(res.New))
	for _, k := range res.New {
		isNew[k] = true
	}

	fmt.Fprintln(out, "\nNew error examples:")
	shown := 0
	for _, d := range bag.Errors() {
		if !isNew[diag.Fingerprint(d)] {
			continue
		}
		code := d.Code
		if code == "" {
			code = "nocode"
		}
		fmt.Fprintf(out, "  [%s] %s  %s\n", code, d.Primary, d.Headline())
		shown++
		if shown >= 5 {
			break
		}
	}
}
