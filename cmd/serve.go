package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

var servePort int

// serveCmd exposes the row store and single-row processing over JSON, as
// the backend for an external review dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx, false)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/rows", func(w http.ResponseWriter, req *http.Request) {
			rows, err := env.Store.FetchRows(req.Context())
			if err != nil {
				zap.L().Error("serve: fetch rows", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "fetch rows failed"})
				return
			}
			if rows == nil {
				rows = []model.CompanyRow{}
			}
			writeJSON(w, http.StatusOK, rows)
		})

		r.Post("/rows/{index}/run", func(w http.ResponseWriter, req *http.Request) {
			rowIndex, err := strconv.Atoi(chi.URLParam(req, "index"))
			if err != nil || rowIndex <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid row index"})
				return
			}

			row, err := findRow(req.Context(), env, func(r model.CompanyRow) bool {
				return r.RowIndex == rowIndex
			})
			if err != nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "row not found"})
				return
			}
			if row.LockManualOverride {
				writeJSON(w, http.StatusConflict, map[string]string{"error": "row is locked"})
				return
			}

			// Processing takes multiple network round trips; run it off
			// the request and let the dashboard poll GET /rows.
			go func() {
				if _, err := env.Processor.ProcessRow(ctx, *row); err != nil {
					zap.L().Error("serve: row processing failed",
						zap.Int("row", row.RowIndex),
						zap.Error(err),
					)
				}
			}()

			writeJSON(w, http.StatusAccepted, map[string]any{
				"status": "accepted",
				"row":    row.RowIndex,
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (defaults to server.port config)")
	rootCmd.AddCommand(serveCmd)
}
