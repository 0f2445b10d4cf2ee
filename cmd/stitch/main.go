package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"stitch/internal/version"
)

// errPartial marks the "patches applied, manual follow-up required" outcome;
// it maps to exit code 2 instead of the generic 1.
var errPartial = errors.New("partial")

var rootCmd = &cobra.Command{
	Use:   "stitch",
	Short: "Source-aware patch engine and checker progress tracker",
	Long: `Stitch edits source files structurally (balanced spans located by anchors,
validated line ranges) and tracks external checker diagnostics across runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		switch strings.TrimSpace(strings.ToLower(mode)) {
		case "", "auto":
			color.NoColor = !isTerminal(os.Stdout)
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		default:
			return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
		}
		return nil
	},
}

// main registers subcommands and persistent flags, then executes the root
// command. Exit codes: 0 success, 1 hard failure, 2 partial (iteration cap
// hit or new errors found, patches/diagnostics need manual review).
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	// Добавляем команды
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(replaceRangeCmd)
	rootCmd.AddCommand(repairCmd)
	rootCmd.AddCommand(dedupeCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errPartial) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func beQuiet(cmd *cobra.Command) bool {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && quiet
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
