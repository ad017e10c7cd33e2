package matcher

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// SessionFile is the name of the saved session under the data directory.
const SessionFile = "session.json"

// savedSession is the on-disk form of a backend session.
type savedSession struct {
	Origin  string            `json:"origin"`
	Cookies map[string]string `json:"cookies"`
}

// SessionJar is a cookie jar whose cookies for the backend origin can be
// saved to a file and picked up by a later process. It lets one command
// upload resumes and another open them within the same backend session.
type SessionJar struct {
	*cookiejar.Jar

	path   string
	origin *url.URL
}

// NewSessionJar creates an empty jar for origin that saves to path.
func NewSessionJar(path, origin string) (*SessionJar, error) {
	raw := strings.TrimSpace(origin)
	if raw == "" {
		raw = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(raw, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &SessionJar{Jar: jar, path: path, origin: u}, nil
}

// LoadSessionJar creates a jar for origin backed by path. Cookies saved by
// an earlier process for the same origin are restored. A missing file, a
// corrupt file or a file for another origin yields an empty jar.
func LoadSessionJar(path, origin string) (*SessionJar, error) {
	j, err := NewSessionJar(path, origin)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return j, nil
	}
	var saved savedSession
	if err := json.Unmarshal(data, &saved); err != nil || saved.Origin != j.origin.String() {
		return j, nil
	}

	cookies := make([]*http.Cookie, 0, len(saved.Cookies))
	for name, value := range saved.Cookies {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	j.SetCookies(j.origin, cookies)
	return j, nil
}

// Empty reports whether the jar holds no cookies for the backend origin.
func (j *SessionJar) Empty() bool {
	return len(j.Cookies(j.origin)) == 0
}

// Save writes the origin's cookies to the session file. An empty jar
// removes the file instead.
func (j *SessionJar) Save() error {
	cookies := j.Cookies(j.origin)
	if len(cookies) == 0 {
		return j.Clear()
	}

	saved := savedSession{Origin: j.origin.String(), Cookies: make(map[string]string, len(cookies))}
	for _, c := range cookies {
		saved.Cookies[c.Name] = c.Value
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear forgets the saved session file. The in-memory cookies are kept.
func (j *SessionJar) Clear() error {
	if err := os.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
