package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"stitch/internal/project"
	"stitch/internal/scanner"
	"stitch/internal/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] <file|directory>",
	Short: "Tokenize delimiters and report unmatched ones",
	Long: `Scan source text with the comment/string-aware lexer and report the
delimiter tokens found. With --report-unmatched, unpaired delimiters are
listed and the command exits non-zero when any exist.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().Bool("report-unmatched", false, "list unmatched delimiters and fail when any exist")
	scanCmd.Flags().StringSlice("ext", nil, "source extensions to scan in directory mode (default from stitch.toml)")
	scanCmd.Flags().Int("jobs", 0, "parallel scan workers in directory mode (0 = GOMAXPROCS)")
	scanCmd.SilenceUsage = true
}

func runScan(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	reportUnmatched, err := cmd.Flags().GetBool("report-unmatched")
	if err != nil {
		return err
	}
	exts, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	var reports []*scanner.FileReport
	if info.IsDir() {
		if len(exts) == 0 {
			manifest, _, err := project.LoadFrom(targetPath)
			if err != nil {
				return err
			}
			exts = manifest.Target.Extensions
		}
		_, reports, err = scanner.ScanDir(cmd.Context(), targetPath, exts, jobs)
		if err != nil {
			return err
		}
	} else {
		fileSet := source.NewFileSet()
		id, err := fileSet.Load(targetPath)
		if err != nil {
			return err
		}
		reports = []*scanner.FileReport{scanner.ScanFile(fileSet.Get(id))}
	}

	out := cmd.OutOrStdout()
	quiet := beQuiet(cmd)
	unmatched := 0
	for _, rep := range reports {
		unmatched += len(rep.Unmatched)
		printReport(out, rep, reportUnmatched, quiet)
	}

	if reportUnmatched && unmatched > 0 {
		return fmt.Errorf("scan: %d unmatched delimiter(s)", unmatched)
	}
	return nil
}

func printReport(out io.Writer, rep *scanner.FileReport, reportUnmatched, quiet bool) {
	if !quiet {
		fmt.Fprintf(out, "%s: %d delimiter token(s), end state %s\n",
			rep.Path, len(rep.Tokens), rep.EndState)
	}
	if !reportUnmatched {
		return
	}
	for _, f := range rep.Unmatched {
		fmt.Fprintf(out, "%s:%s\n", rep.Path, f)
	}
}
