package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mark3labs/resumescan/internal/matcher"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	calls   atomic.Int32
	err     error
	release chan struct{}
}

func (f *fakeFetcher) GetResume(ctx context.Context, name string) (*matcher.Resume, error) {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &matcher.Resume{Name: name, ContentType: "application/pdf", Data: []byte("%PDF " + name)}, nil
}

type recordingRunner struct {
	mu       sync.Mutex
	commands []string
	err      error
}

func (r *recordingRunner) run(_ context.Context, command string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command)
	return r.err
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name, contentType, want string
	}{
		{"Jane Doe.PDF", "", "jane-doe.pdf"},
		{"../../etc/passwd", "", "passwd"},
		{"cv", "application/pdf", "cv.pdf"},
		{"résumé final.docx", "", "resume-final.docx"},
		{"???.txt", "", "resume.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FileName(tt.name, tt.contentType))
		})
	}
}

func TestExpand(t *testing.T) {
	got := Expand("zathura {{path}} --title {{name}}", "/tmp/x/jane.pdf", "Jane's CV.pdf")
	require.Equal(t, `zathura '/tmp/x/jane.pdf' --title 'Jane'\''s CV.pdf'`, got)
}

func TestOpen_WritesAndLaunches(t *testing.T) {
	runner := &recordingRunner{}
	v := New(&fakeFetcher{}, Options{Command: "cat {{path}}", Runner: runner.run})

	path, err := v.Open(context.Background(), "Jane Doe.pdf")
	require.NoError(t, err)
	require.Equal(t, "jane-doe.pdf", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "%PDF Jane Doe.pdf", string(data))

	require.Len(t, runner.commands, 1)
	require.Equal(t, "cat '"+path+"'", runner.commands[0])

	require.NoError(t, v.Close())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestOpen_NamesThatSlugAlikeDoNotCollide(t *testing.T) {
	runner := &recordingRunner{}
	v := New(&fakeFetcher{}, Options{Command: "cat {{path}}", Runner: runner.run})
	t.Cleanup(func() { _ = v.Close() })

	first, err := v.Open(context.Background(), "Jane Doe.pdf")
	require.NoError(t, err)
	second, err := v.Open(context.Background(), "jane-doe.pdf")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.Equal(t, filepath.Base(first), filepath.Base(second))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Equal(t, "%PDF Jane Doe.pdf", string(data))
	data, err = os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, "%PDF jane-doe.pdf", string(data))

	// Reopening a name reuses its path.
	again, err := v.Open(context.Background(), "Jane Doe.pdf")
	require.NoError(t, err)
	require.Equal(t, first, again)
}

func TestNameKey(t *testing.T) {
	require.Len(t, NameKey("cv.pdf"), 8)
	require.Equal(t, NameKey("cv.pdf"), NameKey("cv.pdf"))
	require.NotEqual(t, NameKey("Jane Doe.pdf"), NameKey("jane-doe.pdf"))
}

func TestOpen_FetchError(t *testing.T) {
	runner := &recordingRunner{}
	fetchErr := errors.New("404")
	v := New(&fakeFetcher{err: fetchErr}, Options{Runner: runner.run})
	defer v.Close()

	_, err := v.Open(context.Background(), "missing.pdf")
	require.ErrorIs(t, err, fetchErr)
	require.Empty(t, runner.commands)
}

func TestOpen_RunnerError(t *testing.T) {
	runner := &recordingRunner{err: errors.New("no opener")}
	v := New(&fakeFetcher{}, Options{Runner: runner.run})
	defer v.Close()

	_, err := v.Open(context.Background(), "x.pdf")
	require.Error(t, err)
	require.Contains(t, err.Error(), "opener failed")
}

func TestOpen_ConcurrentSameNameShareDownload(t *testing.T) {
	fetcher := &fakeFetcher{release: make(chan struct{})}
	runner := &recordingRunner{}
	v := New(fetcher, Options{Runner: runner.run})
	defer v.Close()

	var wg sync.WaitGroup
	paths := make([]string, 3)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := v.Open(context.Background(), "x.pdf")
			require.NoError(t, err)
			paths[i] = p
		}(i)
	}

	// Let the goroutines pile up on the in-flight call.
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()

	require.Equal(t, int32(1), fetcher.calls.Load())
	require.Len(t, runner.commands, 1)
	require.Equal(t, paths[0], paths[1])
	require.Equal(t, paths[1], paths[2])
}

func TestSave(t *testing.T) {
	v := New(&fakeFetcher{}, Options{Runner: func(context.Context, string) error {
		t.Fatal("Save must not launch the opener")
		return nil
	}})
	dir := filepath.Join(t.TempDir(), "out")

	path, err := v.Save(context.Background(), "cv", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cv.pdf"), path)
}

func TestRunShell(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, runShell(ctx, "true"))

	err := runShell(ctx, "echo nope >&2; exit 3")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "nope"))

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err = runShell(short, "sleep 5")
	require.Error(t, err)
}

func TestDefaultCommand(t *testing.T) {
	require.Contains(t, DefaultCommand(), "{{path}}")
}
