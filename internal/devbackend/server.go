// Package devbackend is a small stand-in for the resume matching service.
// It implements the four endpoints the wizard consumes so the client can be
// run and tested without the real service.
package devbackend

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/mark3labs/resumescan/internal/matcher"
)

// SessionCookie names the cookie that scopes uploads to one client.
const SessionCookie = "resumescan_session"

// DefaultMaxUpload caps the multipart body.
const DefaultMaxUpload = 32 << 20

// TopN is the number of results returned by a match.
const TopN = 10

type storedFile struct {
	data        []byte
	contentType string
	text        string
}

type session struct {
	files map[string]*storedFile
	order []string
}

// Server keeps uploads in memory per session.
type Server struct {
	app *fiber.App

	mu       sync.Mutex
	sessions map[string]*session
}

// New builds the fiber app and routes.
func New() *Server {
	s := &Server{sessions: make(map[string]*session)}

	app := fiber.New(fiber.Config{
		AppName:               "resumescan dev backend",
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		BodyLimit:             DefaultMaxUpload,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Debug("devbackend %s %s -> %d (%s)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	app.Post("/upload_resumes", s.handleUpload)
	app.Post("/match_resumes", s.handleMatch)
	app.Get("/get_resume/:name", s.handleGetResume)
	app.Post("/cleanup", s.handleCleanup)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	logger.Info("dev backend listening on %s", addr)
	return s.app.Listen(addr)
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	logger.Info("dev backend listening on %s", ln.Addr())
	return s.app.Listener(ln)
}

// Shutdown stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// session returns the caller's session, creating one and setting the cookie
// when the request has none.
func (s *Server) session(c *fiber.Ctx, create bool) (string, *session) {
	id := c.Cookies(SessionCookie)

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok && id != "" {
		return id, sess
	}
	if !create {
		return id, nil
	}

	id = uuid.NewString()
	sess := &session{files: make(map[string]*storedFile)}
	s.sessions[id] = sess
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id, sess
}

func (s *Server) handleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	headers := form.File["resume_files[]"]
	if len(headers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no files uploaded in resume_files[]",
		})
	}

	type upload struct {
		name string
		file *storedFile
	}
	uploads := make([]upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to open %s: %v", h.Filename, err))
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", h.Filename, err))
		}

		contentType := h.Header.Get("Content-Type")
		uploads = append(uploads, upload{
			name: h.Filename,
			file: &storedFile{
				data:        data,
				contentType: detectContentType(h.Filename, contentType, data),
				text:        ExtractText(h.Filename, data),
			},
		})
	}

	id, sess := s.session(c, true)

	s.mu.Lock()
	names := make([]string, 0, len(uploads))
	for _, u := range uploads {
		if _, exists := sess.files[u.name]; !exists {
			sess.order = append(sess.order, u.name)
		}
		sess.files[u.name] = u.file
		names = append(names, u.name)
	}
	s.mu.Unlock()

	logger.Info("devbackend session %s stored %d resumes", id[:8], len(names))
	return c.JSON(fiber.Map{"files": names})
}

func (s *Server) handleMatch(c *fiber.Ctx) error {
	var req matcher.MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid match request",
		})
	}

	_, sess := s.session(c, false)

	var docs []Document
	if sess != nil {
		s.mu.Lock()
		for _, name := range sess.order {
			docs = append(docs, Document{Name: name, Text: sess.files[name].text})
		}
		s.mu.Unlock()
	}

	results := Rank(docs, req, TopN)
	return c.JSON(fiber.Map{"results": results})
}

func (s *Server) handleGetResume(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid resume name")
	}

	_, sess := s.session(c, false)
	if sess == nil {
		return fiber.NewError(fiber.StatusNotFound, "resume not found")
	}

	s.mu.Lock()
	file, ok := sess.files[name]
	s.mu.Unlock()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "resume not found")
	}

	c.Set(fiber.HeaderContentType, file.contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", name))
	return c.Send(file.data)
}

func (s *Server) handleCleanup(c *fiber.Ctx) error {
	id := c.Cookies(SessionCookie)

	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if existed {
		logger.Info("devbackend session %s cleaned up", id)
	}
	c.ClearCookie(SessionCookie)
	return c.JSON(fiber.Map{"message": "Session cleaned up"})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
