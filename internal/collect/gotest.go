package collect

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// GenerateCoverProfile runs go test to produce a coverage profile. The
// profile is written to a temporary file so that an existing cover.out
// in the user's directory is left alone; the caller removes it.
func GenerateCoverProfile(ctx context.Context, moduleDir string, patterns []string) (string, error) {
	tmpFile, err := os.CreateTemp("", "debtmap-cover-*.out")
	if err != nil {
		return "", fmt.Errorf("creating temp cover profile: %w", err)
	}
	profilePath := tmpFile.Name()
	tmpFile.Close()

	// Package patterns such as ./... are never mistaken for flags, and
	// go test does not accept a "--" separator.
	args := []string{"test", "-coverprofile=" + profilePath}
	args = append(args, patterns...)

	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Dir = moduleDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(profilePath)
		return "", fmt.Errorf("go test failed: %w\n%s", err, output)
	}
	return profilePath, nil
}
