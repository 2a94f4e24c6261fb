package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"TrafficScope/internal/config"
	"TrafficScope/internal/model"
	"TrafficScope/internal/pipeline"

	"github.com/gorilla/mux"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the analysis pipeline with its configured sinks
	p, err := pipeline.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	defer p.Close()

	// Initialize router
	r := mux.NewRouter()

	apiHandler := &APIHandler{pipeline: p, cfg: cfg}

	// Define API routes
	r.HandleFunc("/api/v1/analyze", apiHandler.analyzeHandler).Methods("POST")
	r.HandleFunc("/api/v1/runs/{id}/plots/{name}", apiHandler.artifactHandler("plots")).Methods("GET")
	r.HandleFunc("/api/v1/runs/{id}/reports/{name}", apiHandler.artifactHandler("reports")).Methods("GET")

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// APIHandler holds the dependencies for API handlers.
type APIHandler struct {
	pipeline *pipeline.Pipeline
	cfg      *config.Config
}

// analyzeResponse is the structured result returned for one uploaded file.
type analyzeResponse struct {
	RunID    string               `json:"run_id"`
	Summary  model.AnomalySummary `json:"summary"`
	Features []string             `json:"features"`
	Plots    []string             `json:"plots"`
	Reports  []string             `json:"reports"`
}

// analyzeHandler accepts one uploaded traffic file, runs the batch pipeline
// on it, and returns the structured result. The upload is staged in a
// temporary file that is removed on every exit path.
func (h *APIHandler) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.API.MaxUploadBytes)

	upload, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read uploaded file: %v", err), http.StatusBadRequest)
		return
	}
	defer upload.Close()

	// Keep the original extension so the loader picks the right parser.
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".csv"
	}
	tmp, err := os.CreateTemp("", "ts-upload-*"+ext)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to stage upload: %v", err), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, upload); err != nil {
		tmp.Close()
		http.Error(w, fmt.Sprintf("failed to stage upload: %v", err), http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		http.Error(w, fmt.Sprintf("failed to stage upload: %v", err), http.StatusInternalServerError)
		return
	}

	result, err := h.pipeline.Run(tmpPath)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			http.Error(w, fmt.Sprintf("%v\nPlease make sure your file has the required columns: Time, Length, Source, Destination, Protocol", verr), http.StatusBadRequest)
			return
		}
		http.Error(w, fmt.Sprintf("analysis failed: %v", err), http.StatusInternalServerError)
		return
	}

	resp := analyzeResponse{
		RunID:    result.RunID,
		Summary:  result.Summary,
		Features: result.FeatureNames,
		Plots:    listFiles(result.PlotsDir),
		Reports:  listFiles(result.ReportsDir),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// artifactHandler serves one plot or report file from a finished run.
func (h *APIHandler) artifactHandler(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		runID, name := vars["id"], vars["name"]

		// Path segments must stay path segments.
		if !safeSegment(runID) || !safeSegment(name) {
			http.Error(w, "invalid artifact path", http.StatusBadRequest)
			return
		}

		path := filepath.Join(h.cfg.Output.RootPath, runID, kind, name)
		if _, err := os.Stat(path); err != nil {
			http.Error(w, "artifact not found", http.StatusNotFound)
			return
		}
		http.ServeFile(w, r, path)
	}
}

func safeSegment(s string) bool {
	return s != "" && s != "." && s != ".." &&
		!strings.ContainsAny(s, "/\\")
}

func listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
