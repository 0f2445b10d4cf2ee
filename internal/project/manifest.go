// Package project locates the project root and loads stitch.toml, the
// manifest that supplies defaults for the command surface.
package project

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project manifest file.
const ManifestName = "stitch.toml"

// Manifest is the parsed stitch.toml. Every field is optional; commands fall
// back to flags and built-in defaults.
type Manifest struct {
	Target   TargetSection
	Checker  CheckerSection
	Repair   RepairSection
	Baseline BaselineSection
}

// TargetSection names the file the structural commands operate on by default.
type TargetSection struct {
	// File is the default patch/repair target, relative to the project root.
	File string `toml:"file"`
	// Extensions are the source extensions scan walks; defaults to [".rs"].
	Extensions []string `toml:"extensions"`
}

// CheckerSection configures the external checker invocation.
type CheckerSection struct {
	// Command is the checker argv; defaults to
	// ["cargo", "check", "--message-format=json"].
	Command []string `toml:"command"`
	// Dir is the working directory for the checker, relative to the project
	// root; empty means the project root itself.
	Dir string `toml:"dir"`
	// MaxDiagnostics caps the parsed diagnostics; 0 means unlimited.
	MaxDiagnostics int `toml:"max_diagnostics"`
}

// RepairSection configures the repair loop defaults.
type RepairSection struct {
	MaxIterations int    `toml:"max_iterations"`
	MatchCode     string `toml:"match_code"`
	MatchText     string `toml:"match_text"`
	CommentText   string `toml:"comment_text"`
	Tag           string `toml:"tag"`
}

// BaselineSection configures progress tracking.
type BaselineSection struct {
	// Path of the baseline file, relative to the project root.
	Path string `toml:"path"`
}

type manifestFile struct {
	Target   TargetSection   `toml:"target"`
	Checker  CheckerSection  `toml:"checker"`
	Repair   RepairSection   `toml:"repair"`
	Baseline BaselineSection `toml:"baseline"`
}

// Load parses a stitch.toml. Unknown keys are rejected so a typo in the
// manifest fails loudly instead of silently falling back to defaults.
func Load(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	m := &Manifest{
		Target:   cfg.Target,
		Checker:  cfg.Checker,
		Repair:   cfg.Repair,
		Baseline: cfg.Baseline,
	}
	m.applyDefaults(&meta)
	return m, nil
}

// applyDefaults fills sections the manifest left out.
func (m *Manifest) applyDefaults(meta *toml.MetaData) {
	if !meta.IsDefined("checker", "command") || len(m.Checker.Command) == 0 {
		m.Checker.Command = []string{"cargo", "check", "--message-format=json"}
	}
	if !meta.IsDefined("target", "extensions") || len(m.Target.Extensions) == 0 {
		m.Target.Extensions = []string{".rs"}
	}
	if m.Repair.MaxIterations <= 0 {
		m.Repair.MaxIterations = 10
	}
	if m.Repair.Tag == "" {
		m.Repair.Tag = "repair"
	}
	if m.Baseline.Path == "" {
		m.Baseline.Path = ".stitch_progress.json"
	}
}

// Default returns the manifest used when no stitch.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	var meta toml.MetaData
	m.applyDefaults(&meta)
	return m
}

// StarterManifest is written by `stitch init`.
const StarterManifest = `# stitch project manifest

[target]
# Default file for repair/replace-range/dedupe.
# file = "src/main.rs"
extensions = [".rs"]

[checker]
command = ["cargo", "check", "--message-format=json"]
# dir = "."
# max_diagnostics = 0

[repair]
max_iterations = 10
# match_code = "E0425"
# match_text = "cannot find value"
tag = "repair"

[baseline]
path = ".stitch_progress.json"
`
