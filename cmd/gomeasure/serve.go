package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/philipparndt/gomeasure/internal/api"
	"github.com/philipparndt/gomeasure/internal/session"
	"github.com/philipparndt/gomeasure/version"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveScript string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the measurement API over HTTP",
	Long: `Serve a measurement session over a JSON API. Hosts drive the interactive
tools with /api/tool/*, or measure geometry directly with /api/measure/:type.
--script preloads a measurement script into the session.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveScript, "script", "", "script to run before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Address
	if serveAddr != "" {
		addr = serveAddr
	}

	s := session.New(cfg.Display.Unit)
	if serveScript != "" {
		sc, err := session.LoadScript(serveScript)
		if err != nil {
			return err
		}
		records, err := s.Run(sc, cfg.Measure.DPI)
		if err != nil {
			return err
		}
		log.Printf("Loaded %d measurements from %s", len(records), serveScript)
	}

	e := api.NewServer(&api.Dependencies{
		Session:  s,
		Decimals: cfg.Display.Decimals,
		DPI:      cfg.Measure.DPI,
		Version:  version.GetVersion(),
	}, api.Options{
		RequestLogging: cfg.Server.RequestLogging,
		BodyLimit:      cfg.Server.BodyLimit,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Printf("Listening on http://%s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
