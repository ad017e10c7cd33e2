// Package viewer materializes downloaded resumes as temporary files and
// hands them to the platform opener.
package viewer

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/matcher"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds the opener command.
const DefaultTimeout = 30 * time.Second

// Fetcher downloads a resume by name.
type Fetcher interface {
	GetResume(ctx context.Context, name string) (*matcher.Resume, error)
}

// Runner executes an expanded opener command line.
type Runner func(ctx context.Context, command string) error

// Options configures a Viewer.
type Options struct {
	// Command is the opener template. {{path}} and {{name}} are replaced with
	// shell-quoted values. Empty selects the platform default.
	Command string
	Timeout time.Duration
	// Runner overrides command execution. Defaults to sh -c.
	Runner Runner
}

// Viewer opens resumes. Concurrent opens of the same name share one
// download. Temporary files live until Close.
type Viewer struct {
	fetcher Fetcher
	command string
	timeout time.Duration
	run     Runner

	group singleflight.Group

	mu  sync.Mutex
	dir string
}

// New creates a viewer.
func New(fetcher Fetcher, opts Options) *Viewer {
	v := &Viewer{
		fetcher: fetcher,
		command: opts.Command,
		timeout: opts.Timeout,
		run:     opts.Runner,
	}
	if v.command == "" {
		v.command = DefaultCommand()
	}
	if v.timeout <= 0 {
		v.timeout = DefaultTimeout
	}
	if v.run == nil {
		v.run = runShell
	}
	return v
}

// DefaultCommand returns the opener template for the current platform.
func DefaultCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open {{path}}"
	default:
		return "xdg-open {{path}}"
	}
}

// Open downloads the resume, writes it to a temporary file and launches the
// opener on it. It returns the file path.
func (v *Viewer) Open(ctx context.Context, name string) (string, error) {
	result, err, shared := v.group.Do(name, func() (any, error) {
		resume, err := v.fetcher.GetResume(ctx, name)
		if err != nil {
			return "", err
		}

		dir, err := v.tempDir()
		if err != nil {
			return "", err
		}

		// Names that slug alike get separate directories.
		dir = filepath.Join(dir, NameKey(name))
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("creating %s: %w", dir, err)
		}

		path, err := Write(dir, resume)
		if err != nil {
			return "", err
		}

		if err := v.launch(ctx, path, name); err != nil {
			return "", err
		}
		return path, nil
	})
	if shared {
		logger.Debug("open %s joined an in-flight request", name)
	}
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Save downloads the resume into dir without opening it.
func (v *Viewer) Save(ctx context.Context, name, dir string) (string, error) {
	resume, err := v.fetcher.GetResume(ctx, name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return Write(dir, resume)
}

// Close removes every temporary file this viewer created.
func (v *Viewer) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dir == "" {
		return nil
	}
	err := os.RemoveAll(v.dir)
	v.dir = ""
	return err
}

func (v *Viewer) tempDir() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dir != "" {
		return v.dir, nil
	}
	dir, err := os.MkdirTemp("", "resumescan-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	v.dir = dir
	return dir, nil
}

func (v *Viewer) launch(ctx context.Context, path, name string) error {
	command := Expand(v.command, path, name)
	logger.Debug("opening resume: %s", command)

	execCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	if err := v.run(execCtx, command); err != nil {
		return fmt.Errorf("opener failed: %w", err)
	}
	return nil
}

// NameKey returns a short stable key for the exact resume name.
func NameKey(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()[:8]
}

// Write stores the resume in dir under a slugged file name and returns the
// path.
func Write(dir string, resume *matcher.Resume) (string, error) {
	path := filepath.Join(dir, FileName(resume.Name, resume.ContentType))
	if err := os.WriteFile(path, resume.Data, 0600); err != nil {
		return "", fmt.Errorf("writing resume: %w", err)
	}
	return path, nil
}

// FileName derives a safe file name from the resume name. The extension is
// kept, or guessed from the content type when the name has none.
func FileName(name, contentType string) string {
	base := filepath.Base(filepath.FromSlash(name))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if ext == "" && contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
				ext = exts[0]
			}
		}
	}

	s := slug.Make(stem)
	if s == "" {
		s = "resume"
	}
	return s + ext
}

// Expand fills the {{path}} and {{name}} placeholders with shell-quoted values.
func Expand(command, path, name string) string {
	r := strings.NewReplacer(
		"{{path}}", shellQuote(path),
		"{{name}}", shellQuote(name),
	)
	return r.Replace(command)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func runShell(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("timed out: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}
