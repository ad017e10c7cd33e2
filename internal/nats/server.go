package nats

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	readyTimeout    = 4 * time.Second
	drainTimeout    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Embedded is an in-process NATS server with JetStream and the scan stream
// ready for use. It opens no network ports.
type Embedded struct {
	Server    *server.Server
	Conn      *nats.Conn
	JetStream jetstream.JetStream
	Stream    jetstream.Stream
}

// StartEmbedded starts a server storing its data under dataDir, connects to
// it in-process and creates or updates the scan stream.
func StartEmbedded(ctx context.Context, dataDir string) (*Embedded, error) {
	logger.Debug("starting embedded NATS server in %s", dataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	ns, err := server.NewServer(&server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true,
		NoSigs:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(readyTimeout) {
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}

	nc, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		ns.Shutdown()
		return nil, fmt.Errorf("connecting in-process: %w", err)
	}

	e := &Embedded{Server: ns, Conn: nc}

	e.JetStream, err = jetstream.New(nc)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("creating jetstream context: %w", err)
	}

	e.Stream, err = SetupStream(ctx, e.JetStream)
	if err != nil {
		_ = e.Close()
		return nil, fmt.Errorf("setting up stream: %w", err)
	}

	logger.Debug("embedded NATS ready, stream %s", streamName)
	return e, nil
}

// Close drains the connection and shuts the server down. Both steps are
// bounded so a wedged server cannot hang process exit.
func (e *Embedded) Close() error {
	if e == nil {
		return nil
	}

	if e.Conn != nil {
		drained := make(chan error, 1)
		go func() {
			drained <- e.Conn.Drain()
		}()

		select {
		case err := <-drained:
			if err != nil {
				logger.Warn("nats drain failed, forcing close: %v", err)
				e.Conn.Close()
			}
		case <-time.After(drainTimeout):
			logger.Warn("nats drain timed out after %s, forcing close", drainTimeout)
			e.Conn.Close()
		}
	}

	if e.Server == nil {
		return nil
	}

	e.Server.Shutdown()
	done := make(chan struct{})
	go func() {
		e.Server.WaitForShutdown()
		close(done)
	}()

	select {
	case <-done:
		logger.Debug("nats server shut down")
		return nil
	case <-time.After(shutdownTimeout):
		logger.Error("nats server shutdown timed out after %s", shutdownTimeout)
		return errors.New("nats server shutdown timed out")
	}
}
