package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"stitch/internal/checker"
	"stitch/internal/patch"
	"stitch/internal/project"
	"stitch/internal/repair"
)

var repairCmd = &cobra.Command{
	Use:   "repair [flags] [file]",
	Short: "Run the bounded check-diagnose-patch loop on a target file",
	Long: `Repeatedly run the external checker and neutralize the first actionable
error in the target file until the checker reports nothing actionable or the
iteration cap is hit. The file argument falls back to [target].file in
stitch.toml. Exit codes: 0 done, 2 cap hit with patches applied, 1 failure.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRepair,
}

func init() {
	repairCmd.Flags().Int("max-iterations", 0, "iteration cap (default from stitch.toml)")
	repairCmd.Flags().String("match-code", "", "only act on diagnostics with this code")
	repairCmd.Flags().String("match-text", "", "only act on diagnostics whose headline contains this text")
	repairCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	repairCmd.SilenceUsage = true
}

func runRepair(cmd *cobra.Command, args []string) error {
	maxIterations, err := cmd.Flags().GetInt("max-iterations")
	if err != nil {
		return err
	}
	matchCode, err := cmd.Flags().GetString("match-code")
	if err != nil {
		return err
	}
	matchText, err := cmd.Flags().GetString("match-text")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	manifest, root, err := project.LoadFrom(".")
	if err != nil {
		return err
	}

	target := manifest.Target.File
	if len(args) == 1 {
		target = args[0]
	} else if target != "" {
		target = filepath.Join(root, target)
	}
	if target == "" {
		return fmt.Errorf("repair: no target file (pass one or set [target].file in %s)", project.ManifestName)
	}

	if maxIterations <= 0 {
		maxIterations = manifest.Repair.MaxIterations
	}
	if matchCode == "" {
		matchCode = manifest.Repair.MatchCode
	}
	if matchText == "" {
		matchText = manifest.Repair.MatchText
	}

	ledger, err := patch.OpenLedger(filepath.Join(root, patch.DefaultLedgerName))
	if err != nil {
		return err
	}

	opts := repair.Options{
		Target:        target,
		MaxIterations: maxIterations,
		Checker: &checker.Runner{
			Command:        manifest.Checker.Command,
			Dir:            filepath.Join(root, manifest.Checker.Dir),
			MaxDiagnostics: manifest.Checker.MaxDiagnostics,
		},
		MatchCode:   matchCode,
		MatchText:   matchText,
		CommentText: manifest.Repair.CommentText,
		Tag:         manifest.Repair.Tag,
		Ledger:      ledger,
	}

	var res *repair.Result
	if shouldUseTUI(mode) {
		res, err = runRepairWithUI(cmd, opts, maxIterations)
	} else {
		res, err = repair.Run(cmd.Context(), opts)
	}
	if res != nil {
		reportRepair(cmd, res)
	}
	if err != nil {
		return err
	}
	if res.State == repair.StateAborted {
		return fmt.Errorf("%w: %d patch(es) applied, manual review required", errPartial, len(res.Applied))
	}
	return nil
}

func reportRepair(cmd *cobra.Command, res *repair.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "repair %s after %d iteration(s): %d patch(es) applied, %d actionable diagnostic(s) remaining\n",
		res.State, res.Iterations, len(res.Applied), res.Remaining)
	if beQuiet(cmd) {
		return
	}
	for _, a := range res.Applied {
		fmt.Fprintf(out, "  %s line %d (backup: %s)\n", a.Op.Target, a.Op.StartLine, a.BackupPath)
	}
}
