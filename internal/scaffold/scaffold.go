// Package scaffold embeds the default debtmap configuration and writes
// it to a target project directory.
package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

//go:embed assets/*
var assets embed.FS

// ErrUnknownFormat is returned for a format other than yaml or toml.
var ErrUnknownFormat = errors.New("unknown config format")

// Formats lists the config formats Run can write.
var Formats = []string{"yaml", "toml"}

// Options configures the scaffold operation.
type Options struct {
	// TargetDir is the root directory to scaffold into.
	// Defaults to the current working directory.
	TargetDir string

	// Format is "yaml" (the default) or "toml".
	Format string

	// Force overwrites an existing config file when true.
	// When false, an existing file is skipped.
	Force bool

	// Version is the debtmap version string to embed in the
	// version marker comment. Set by ldflags at build time.
	// Defaults to "dev" for development builds.
	Version string

	// Stdout is the writer for summary output.
	// Defaults to os.Stdout.
	Stdout io.Writer
}

// Result reports what the scaffold operation did.
type Result struct {
	// Path is the config file, relative to TargetDir.
	Path string

	// Created, Skipped, and Overwritten tell what happened to Path.
	// Exactly one is true.
	Created     bool
	Skipped     bool
	Overwritten bool
}

// versionMarker returns the comment line prepended to the written
// file. Both YAML and TOML use # comments.
func versionMarker(version string) string {
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("# generated by debtmap init %s\n", version)
}

// Asset returns the embedded default config for format.
func Asset(format string) ([]byte, error) {
	for _, f := range Formats {
		if f == format {
			return assets.ReadFile("assets/debtmap." + f)
		}
	}
	return nil, fmt.Errorf("%w %q: must be one of %v", ErrUnknownFormat, format, Formats)
}

// Run writes .debtmap.yaml (or .debtmap.toml) with the default
// settings into the target directory. The file starts with a version
// marker comment:
//
//	# generated by debtmap init vX.Y.Z
//
// If the file already exists and opts.Force is false, it is skipped.
func Run(opts Options) (*Result, error) {
	if opts.TargetDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		opts.TargetDir = cwd
	}
	if opts.Format == "" {
		opts.Format = "yaml"
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	content, err := Asset(opts.Format)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(opts.TargetDir, "go.mod")); os.IsNotExist(err) {
		fmt.Fprintln(opts.Stdout, "Warning: no go.mod found in the target directory.")
		fmt.Fprintln(opts.Stdout, "debtmap looks for its config by walking up from where it runs;")
		fmt.Fprintln(opts.Stdout, "the module root is the usual place for it.")
		fmt.Fprintln(opts.Stdout)
	}

	result := &Result{Path: ".debtmap." + opts.Format}
	outPath := filepath.Join(opts.TargetDir, result.Path)

	_, statErr := os.Stat(outPath)
	exists := statErr == nil
	if exists && !opts.Force {
		result.Skipped = true
		printSummary(opts.Stdout, result)
		return result, nil
	}

	out := append([]byte(versionMarker(opts.Version)), content...)
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return nil, fmt.Errorf("creating %s: %w", result.Path, err)
	}
	result.Overwritten = exists
	result.Created = !exists

	printSummary(opts.Stdout, result)
	return result, nil
}

// printSummary writes a human-readable summary of the scaffold
// operation to w.
func printSummary(w io.Writer, r *Result) {
	switch {
	case r.Created:
		fmt.Fprintf(w, "created: %s\n", r.Path)
	case r.Overwritten:
		fmt.Fprintf(w, "overwritten: %s\n", r.Path)
	case r.Skipped:
		fmt.Fprintf(w, "skipped: %s (already exists, use --force to overwrite)\n", r.Path)
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit the file to tune the settings, then run debtmap analyze.")
}
