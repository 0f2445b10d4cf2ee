package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stitch/internal/anchor"
	"stitch/internal/patch"
	"stitch/internal/source"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe [flags] <file>",
	Short: "Comment out duplicate blocks, keeping the first occurrence",
	Long: `Find every occurrence of the marker (e.g. a function signature) and comment
out the balanced block of each occurrence after the first. Keeping the first
textual occurrence is an explicit policy: the engine does not try to guess
which duplicate is canonical. Without --apply the duplicates are only listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDedupe,
}

func init() {
	dedupeCmd.Flags().String("marker", "", "signature text identifying the duplicated block (required)")
	dedupeCmd.Flags().Bool("apply", false, "comment the duplicates out instead of listing them")
	dedupeCmd.SilenceUsage = true

	if err := dedupeCmd.MarkFlagRequired("marker"); err != nil {
		panic(err)
	}
}

func runDedupe(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	marker, err := cmd.Flags().GetString("marker")
	if err != nil {
		return err
	}
	apply, err := cmd.Flags().GetBool("apply")
	if err != nil {
		return err
	}

	fileSet := source.NewFileSet()
	id, err := fileSet.Load(targetPath)
	if err != nil {
		return err
	}
	f := fileSet.Get(id)

	total := len(anchor.Occurrences(f, marker))
	if total == 0 {
		return fmt.Errorf("dedupe: %q not found in %s", marker, targetPath)
	}

	out := cmd.OutOrStdout()
	if total == 1 {
		fmt.Fprintf(out, "%s: single occurrence of %q, nothing to do\n", targetPath, marker)
		return nil
	}

	// Все блоки размечаются по исходному содержимому. Комментирование не
	// добавляет и не убирает строк, поэтому номера строк остаются верными
	// для каждой следующей правки.
	type dup struct {
		occurrence int
		start, end uint32
	}
	dups := make([]dup, 0, total-1)
	for occ := 2; occ <= total; occ++ {
		a, err := anchor.Locate(f, marker, anchor.Options{Occurrence: occ})
		if err != nil {
			return fmt.Errorf("dedupe: occurrence %d: %w", occ, err)
		}
		startLine := f.Pos(a.MarkerOff).Line
		endLine := f.Pos(a.BodyEnd - 1).Line
		dups = append(dups, dup{occurrence: occ, start: startLine, end: endLine})
	}

	fmt.Fprintf(out, "%s: %d occurrence(s) of %q, keeping the first\n", targetPath, total, marker)
	for _, d := range dups {
		fmt.Fprintf(out, "  occurrence %d: lines %d-%d\n", d.occurrence, d.start, d.end)
	}
	if !apply {
		fmt.Fprintln(out, "(dry run; pass --apply to comment the duplicates out)")
		return nil
	}

	for _, d := range dups {
		applied, err := patch.Apply(patch.Operation{
			Target:    targetPath,
			Mode:      patch.CommentOut,
			StartLine: d.start,
			EndLine:   d.end,
			Tag:       fmt.Sprintf("dedupe-o%d", d.occurrence),
		})
		if err != nil {
			return err
		}
		if !beQuiet(cmd) && !applied.NoOp {
			fmt.Fprintf(out, "commented out occurrence %d (backup: %s)\n",
				d.occurrence, applied.BackupPath)
		}
	}
	return nil
}
