package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/resumescan/internal/devbackend"
	"github.com/mark3labs/resumescan/internal/logger"
	"github.com/spf13/cobra"
)

var devserverFlags struct {
	addr string
}

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local stand-in for the resume matching service",
	Long: `Run a local stand-in for the resume matching service.

The dev server implements the four endpoints the client uses. Uploads are
kept in memory per session cookie. Scores are the weighted overlap of the
requested skills and job description terms with each resume's text; text is
extracted from PDFs and read directly from other files.`,
	Args: cobra.NoArgs,
	RunE: runDevserver,
}

func init() {
	devserverCmd.Flags().StringVar(&devserverFlags.addr, "addr", "127.0.0.1:5000", "Listen address")
}

func runDevserver(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(cmd); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", devserverFlags.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", devserverFlags.addr, err)
	}

	srv := devbackend.New()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(cmd.ErrOrStderr(), "\nShutting down gracefully...")
		if err := srv.Shutdown(); err != nil {
			logger.Warn("dev backend shutdown: %v", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Dev backend listening on http://%s\n", ln.Addr())
	return srv.Serve(ln)
}
