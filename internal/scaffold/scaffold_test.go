package scaffold

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/unbound-force/debtmap/internal/config"
)

// newModule returns a temp dir holding a go.mod so that no warning is
// printed.
func newModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module test\n"), 0o644); err != nil {
		t.Fatalf("creating go.mod: %v", err)
	}
	return dir
}

func TestRun_CreatesYAMLByDefault(t *testing.T) {
	dir := newModule(t)

	var buf bytes.Buffer
	result, err := Run(Options{TargetDir: dir, Version: "1.2.3", Stdout: &buf})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}

	if !result.Created || result.Skipped || result.Overwritten {
		t.Errorf("result = %+v, want created", result)
	}
	if result.Path != ".debtmap.yaml" {
		t.Errorf("path = %q, want .debtmap.yaml", result.Path)
	}
	if _, err := os.Stat(filepath.Join(dir, ".debtmap.yaml")); err != nil {
		t.Errorf("expected .debtmap.yaml to exist: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "created: .debtmap.yaml") {
		t.Errorf("summary should mention created file, got:\n%s", output)
	}
	if strings.Contains(output, "Warning") {
		t.Errorf("unexpected warning with go.mod present:\n%s", output)
	}
}

func TestRun_SkipsExisting(t *testing.T) {
	dir := newModule(t)

	if _, err := Run(Options{TargetDir: dir, Stdout: &bytes.Buffer{}}); err != nil {
		t.Fatalf("first Run() returned error: %v", err)
	}
	path := filepath.Join(dir, ".debtmap.yaml")
	if err := os.WriteFile(path, []byte("top: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	result, err := Run(Options{TargetDir: dir, Stdout: &buf})
	if err != nil {
		t.Fatalf("second Run() returned error: %v", err)
	}
	if !result.Skipped || result.Created || result.Overwritten {
		t.Errorf("result = %+v, want skipped", result)
	}
	if !strings.Contains(buf.String(), "use --force to overwrite") {
		t.Errorf("summary should suggest --force, got:\n%s", buf.String())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "top: 5\n" {
		t.Error("existing file was modified without --force")
	}
}

func TestRun_ForceOverwrites(t *testing.T) {
	dir := newModule(t)

	if _, err := Run(Options{TargetDir: dir, Version: "1.0.0", Stdout: &bytes.Buffer{}}); err != nil {
		t.Fatalf("first Run() returned error: %v", err)
	}

	var buf bytes.Buffer
	result, err := Run(Options{TargetDir: dir, Force: true, Version: "2.0.0", Stdout: &buf})
	if err != nil {
		t.Fatalf("second Run() with force returned error: %v", err)
	}
	if !result.Overwritten || result.Created || result.Skipped {
		t.Errorf("result = %+v, want overwritten", result)
	}
	if !strings.Contains(buf.String(), "overwritten:") {
		t.Errorf("summary should mention 'overwritten:', got:\n%s", buf.String())
	}

	content, err := os.ReadFile(filepath.Join(dir, ".debtmap.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(content), "# generated by debtmap init 2.0.0\n") {
		t.Errorf("version marker not updated: %q", strings.SplitN(string(content), "\n", 2)[0])
	}
}

func TestRun_VersionMarker(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0", "# generated by debtmap init 0.1.0"},
		{"", "# generated by debtmap init dev"},
	}
	for _, tt := range tests {
		dir := newModule(t)
		if _, err := Run(Options{TargetDir: dir, Format: "toml", Version: tt.version, Stdout: &bytes.Buffer{}}); err != nil {
			t.Fatalf("Run() returned error: %v", err)
		}
		content, err := os.ReadFile(filepath.Join(dir, ".debtmap.toml"))
		if err != nil {
			t.Fatalf("reading file: %v", err)
		}
		if first := strings.SplitN(string(content), "\n", 2)[0]; first != tt.want {
			t.Errorf("first line = %q, want %q", first, tt.want)
		}
	}
}

func TestRun_NoGoMod_PrintsWarning(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	result, err := Run(Options{TargetDir: dir, Stdout: &buf})
	if err != nil {
		t.Fatalf("Run() returned error: %v", err)
	}
	if !result.Created {
		t.Error("file should still be created without go.mod")
	}
	if !strings.Contains(buf.String(), "Warning: no go.mod found") {
		t.Errorf("expected go.mod warning, got:\n%s", buf.String())
	}
}

func TestRun_UnknownFormat(t *testing.T) {
	_, err := Run(Options{TargetDir: newModule(t), Format: "json", Stdout: &bytes.Buffer{}})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

// TestAssets_MatchDefaults guards against drift between the embedded
// config files and the built-in defaults.
func TestAssets_MatchDefaults(t *testing.T) {
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			dir := newModule(t)
			result, err := Run(Options{TargetDir: dir, Format: format, Stdout: &bytes.Buffer{}})
			if err != nil {
				t.Fatalf("Run() returned error: %v", err)
			}

			got, err := config.Load(filepath.Join(dir, result.Path))
			if err != nil {
				t.Fatalf("loading scaffolded config: %v", err)
			}
			if want := config.Default(); !reflect.DeepEqual(got, want) {
				t.Errorf("scaffolded %s config differs from defaults:\n got %+v\nwant %+v", format, got, want)
			}
		})
	}
}
