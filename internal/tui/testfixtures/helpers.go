package testfixtures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/charmbracelet/x/ansi"
)

// Initialize test environment
func init() {
	// Set Ascii profile to disable color output for consistent output across CI/platforms
	lipgloss.Writer.Profile = colorprofile.Ascii
}

// Canonical terminal size for all tests
const (
	TestTermWidth  = 120
	TestTermHeight = 40
)

// Render draws styled content onto a screen buffer of the canonical size
// and returns the plain text with trailing spaces trimmed from every line.
// The canvas keeps cell styles regardless of the lipgloss profile, so escape
// sequences are stripped here.
func Render(content string) string {
	canvas := uv.NewScreenBuffer(TestTermWidth, TestTermHeight)
	uv.NewStyledString(content).Draw(canvas, canvas.Bounds())

	lines := strings.Split(ansi.Strip(canvas.Render()), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

// WriteResumes creates files with the given names in dir and returns their
// paths in the same order.
func WriteResumes(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("resume "+name), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
		paths = append(paths, path)
	}
	return paths
}
