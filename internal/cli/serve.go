package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/geziefer/docchat/internal/logger"
	"github.com/geziefer/docchat/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API exposing document upload, listing, deletion and chat.

Endpoints:
  POST   /documents/upload   multipart upload, one or more "file" parts
  GET    /documents          list ingested documents
  DELETE /documents/{id}     delete a document and its index entries
  POST   /chat               {"message": "..."} -> answer with sources
  GET    /healthz            health and index size`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := buildCore(cfg, rootDir)
	if err != nil {
		return err
	}
	defer c.close()

	handler := server.NewHandler(c.pipeline, c.engine, c.registry, c.index, cfg.Server.MaxUploadMB)
	router := server.NewRouter(handler)

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-stop:
		logger.Info("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}
