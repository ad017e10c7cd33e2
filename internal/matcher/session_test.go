package matcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func sessionServer(t *testing.T, seen *string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/upload_resumes", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		_, _ = w.Write([]byte(`{"files":["a.pdf"]}`))
	})
	mux.HandleFunc("/get_resume/", func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie("session")
		if err != nil {
			http.NotFound(w, r)
			return
		}
		*seen = c.Value
		_, _ = w.Write([]byte("pdf"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionJar_ResumesAcrossClients(t *testing.T) {
	var seen string
	srv := sessionServer(t, &seen)
	path := filepath.Join(t.TempDir(), SessionFile)
	ctx := context.Background()

	first, err := LoadSessionJar(path, srv.URL)
	require.NoError(t, err)
	require.True(t, first.Empty())

	uploader := newTestClient(t, srv, Options{Jar: first})
	_, err = uploader.UploadResumes(ctx, []Upload{{Name: "a.pdf", Data: []byte("x")}})
	require.NoError(t, err)
	require.False(t, first.Empty())
	require.NoError(t, first.Save())

	second, err := LoadSessionJar(path, srv.URL)
	require.NoError(t, err)
	require.False(t, second.Empty())

	opener := newTestClient(t, srv, Options{Jar: second})
	resume, err := opener.GetResume(ctx, "a.pdf")
	require.NoError(t, err)
	require.Equal(t, "pdf", string(resume.Data))
	require.Equal(t, "abc123", seen)
}

func TestSessionJar_FreshClientHasNoSession(t *testing.T) {
	var seen string
	srv := sessionServer(t, &seen)

	c := newTestClient(t, srv, Options{})
	_, err := c.GetResume(context.Background(), "a.pdf")
	require.ErrorIs(t, err, ErrStatus)
}

func TestSessionJar_OtherOriginIgnored(t *testing.T) {
	var seen string
	srv := sessionServer(t, &seen)
	path := filepath.Join(t.TempDir(), SessionFile)

	jar, err := LoadSessionJar(path, srv.URL)
	require.NoError(t, err)
	c := newTestClient(t, srv, Options{Jar: jar})
	_, err = c.UploadResumes(context.Background(), []Upload{{Name: "a.pdf", Data: []byte("x")}})
	require.NoError(t, err)
	require.NoError(t, jar.Save())

	other, err := LoadSessionJar(path, "http://127.0.0.1:1")
	require.NoError(t, err)
	require.True(t, other.Empty())
}

func TestSessionJar_CorruptFileAndClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), SessionFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	jar, err := LoadSessionJar(path, DefaultBaseURL)
	require.NoError(t, err)
	require.True(t, jar.Empty())

	// Saving an empty jar drops the stale file.
	require.NoError(t, jar.Save())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
	require.NoError(t, jar.Clear())
}
