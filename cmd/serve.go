package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/campaign-intel/internal/model"
	"github.com/sells-group/campaign-intel/internal/report"
)

var servePort int

// analyzeRequest is the body for both the status and report endpoints.
// Previous-period calls are only used by the report endpoint.
type analyzeRequest struct {
	Campaign      model.CampaignConfig `json:"campaign"`
	Calls         []model.CallRecord   `json:"calls"`
	PreviousCalls []model.CallRecord   `json:"previous_calls,omitempty"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP analysis server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/status", handleStatus)
		r.Post("/v1/report", handleReport)

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

func handleStatus(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeAnalyzeRequest(w, req)
	if !ok {
		return
	}

	engine := report.New(body.Campaign, cfg.Engine)
	status, err := engine.Status(body.Calls)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func handleReport(w http.ResponseWriter, req *http.Request) {
	body, ok := decodeAnalyzeRequest(w, req)
	if !ok {
		return
	}

	engine := report.New(body.Campaign, cfg.Engine)
	rpt, err := engine.Analyze(body.Calls, body.PreviousCalls)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	zap.L().Info("report served",
		zap.String("campaign_id", body.Campaign.CampaignID),
		zap.String("report_id", rpt.ReportID),
	)

	writeJSON(w, http.StatusOK, rpt)
}

func decodeAnalyzeRequest(w http.ResponseWriter, req *http.Request) (analyzeRequest, bool) {
	var body analyzeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, eris.Wrap(err, "invalid request body"))
		return analyzeRequest{}, false
	}
	if body.Campaign.CampaignID == "" {
		writeError(w, http.StatusBadRequest, eris.New("campaign.campaign_id is required"))
		return analyzeRequest{}, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
