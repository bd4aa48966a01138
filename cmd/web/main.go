package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Biomolecular-Design-Nexus/forest-mcp/internal/forest"
)

// statusResponseWriter captures status and bytes written for logging
type statusResponseWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

// loggingMiddleware logs each request with method, path, status, size and duration
func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w}
		next.ServeHTTP(srw, r)
		if srw.status == 0 {
			srw.status = http.StatusOK
		}
		duration := time.Since(start)
		logger.Printf("%s - %s %s %d %dB %s %q",
			r.RemoteAddr, r.Method, r.URL.RequestURI(), srw.status, srw.written, duration, r.UserAgent())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// extractRequest is the synchronous extraction payload: records inline in the
// request body, no files involved.
type extractRequest struct {
	Records []struct {
		Name      string `json:"name"`
		Sequence  string `json:"sequence"`
		Structure string `json:"structure"`
	} `json:"records"`
	MaxLength int `json:"max_length,omitempty"`
}

type extractResponse struct {
	Motifs       forest.Catalog `json:"motifs"`
	Warnings     []string       `json:"warnings,omitempty"`
	RecordErrors []string       `json:"record_errors,omitempty"`
}

// extractHandler decomposes structures sent inline and returns the motif
// catalog directly. Large batches belong in a job instead.
func extractHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
			return
		}
		if len(req.Records) == 0 {
			writeError(w, http.StatusBadRequest, "no records given")
			return
		}
		maxLength := req.MaxLength
		if maxLength <= 0 {
			maxLength = 134
		}
		records := make([]forest.Record, len(req.Records))
		for i, rec := range req.Records {
			records[i] = forest.Record{Name: rec.Name, Sequence: rec.Sequence, Structure: rec.Structure}
		}
		res, recordErrs, err := forest.ExtractAll(r.Context(), records, maxLength, 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		resp := extractResponse{Motifs: res.Catalog}
		for _, warn := range res.Warnings {
			resp.Warnings = append(resp.Warnings, warn.String())
		}
		for _, e := range recordErrs {
			resp.RecordErrors = append(resp.RecordErrors, e.Error())
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// jobsHandler handles the job collection: POST submits, GET lists.
func jobsHandler(m *jobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req jobRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
				return
			}
			job, err := m.submit(req)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeJSON(w, http.StatusAccepted, job)
		case http.MethodGet:
			writeJSON(w, http.StatusOK, m.list(r.URL.Query().Get("state")))
		default:
			writeError(w, http.StatusMethodNotAllowed, "GET or POST only")
		}
	}
}

// jobHandler handles a single job: GET /api/jobs/{id} returns status,
// POST /api/jobs/{id}/cancel interrupts it.
func jobHandler(m *jobManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		parts := strings.Split(rest, "/")
		if len(parts) == 0 || parts[0] == "" {
			writeError(w, http.StatusBadRequest, "missing job id")
			return
		}
		id := parts[0]
		if len(parts) > 1 && parts[1] == "cancel" {
			if r.Method != http.MethodPost {
				writeError(w, http.StatusMethodNotAllowed, "POST only")
				return
			}
			if err := m.cancel(id); err != nil {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			job, _ := m.get(id)
			writeJSON(w, http.StatusOK, job)
			return
		}
		job, ok := m.get(id)
		if !ok {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeJSON(w, http.StatusOK, job)
	}
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	store := flag.String("jobs-store", "json", "job persistence backend: json or sqlite")
	storePath := flag.String("jobs-path", "jobs.json", "path to the jobs file or database")
	jobsDir := flag.String("jobs-dir", "jobs", "directory for per-job output files")
	logFile := flag.String("log", "", "path to write access logs (optional). If empty, logs go to stdout only")
	flag.Parse()

	// configure logger
	var out io.Writer = os.Stdout
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	logger := log.New(out, "forest: ", log.LstdFlags)

	jobsStore = *store
	jobsPath = *storePath
	if jobsStore == "sqlite" {
		if err := openSQLiteStore(jobsPath); err != nil {
			log.Fatalf("failed to open sqlite job store: %v", err)
		}
		defer jobsDB.Close()
	}

	mgr, err := newJobManager(*jobsDir, logger)
	if err != nil {
		log.Fatalf("failed to initialize job manager: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/extract", extractHandler())
	mux.HandleFunc("/api/jobs", jobsHandler(mgr))
	mux.HandleFunc("/api/jobs/", jobHandler(mgr))

	handler := loggingMiddleware(logger, mux)

	srv := &http.Server{Addr: *addr, Handler: handler, ReadTimeout: 5 * time.Second, WriteTimeout: 30 * time.Second}
	fmt.Printf("serving FOREST API at http://%s/ (jobs=%s store=%s)\n", *addr, *jobsDir, jobsStore)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
