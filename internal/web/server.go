// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package web exposes the analyzer and cleaner over HTTP for browser-driven
// use: upload a PDF, get the audit JSON or the cleaned document back.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"redact-check/internal/analyzer"
	"redact-check/internal/audit"
	"redact-check/internal/cleaner"
	"redact-check/internal/observability"
	"redact-check/internal/pdfaccess"
	"redact-check/internal/version"
)

// maxUploadBytes caps multipart uploads.
const maxUploadBytes = 50 << 20

// WebServer represents the web server instance
type WebServer struct {
	port     string
	server   *http.Server
	analyzer *analyzer.Analyzer
	cleaner  *cleaner.Cleaner
	observer *observability.StandardObserver
}

// ScanResponse wraps an audit log for the scan endpoint.
type ScanResponse struct {
	Success bool       `json:"success"`
	Audit   *audit.Log `json:"audit,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// NewWebServer creates a new web server instance
func NewWebServer(port string, observer *observability.StandardObserver) *WebServer {
	return &WebServer{
		port:     port,
		analyzer: analyzer.New(observer),
		cleaner:  cleaner.New(observer),
		observer: observer,
	}
}

// Start starts the web server on the requested port. When that port is
// taken it tries 8081 through 8089 in turn, whatever port was requested.
func (ws *WebServer) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/scan", ws.handleScan)
	mux.HandleFunc("/clean", ws.handleClean)

	var lastError error
	for i := 0; i < 10; i++ {
		currentPort := ws.port
		if i > 0 {
			currentPort = fmt.Sprintf("%d", 8080+i)
		}

		listener, err := net.Listen("tcp", ":"+currentPort)
		if err != nil {
			lastError = err
			continue
		}

		ws.server = &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		fmt.Printf("redact-check web server listening on http://localhost:%s\n", currentPort)
		if err := ws.server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
	return fmt.Errorf("no available port: %w", lastError)
}

// Shutdown stops a running server.
func (ws *WebServer) Shutdown() error {
	if ws.server == nil {
		return nil
	}
	return ws.server.Close()
}

// Handler returns the route handler, used directly by tests.
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/scan", ws.handleScan)
	mux.HandleFunc("/clean", ws.handleClean)
	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleScan analyzes an uploaded PDF and returns the audit log.
func (ws *WebServer) handleScan(w http.ResponseWriter, r *http.Request) {
	data, fileName, ok := ws.readUpload(w, r)
	if !ok {
		return
	}

	log, err := ws.analyzer.AnalyzeContext(r.Context(), data, fileName)
	if err != nil {
		writeScanError(w, statusForError(err), err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ScanResponse{Success: true, Audit: log})
}

// handleClean analyzes then cleans an uploaded PDF and returns the cleaned
// bytes, with the actions summary in a response header.
func (ws *WebServer) handleClean(w http.ResponseWriter, r *http.Request) {
	data, fileName, ok := ws.readUpload(w, r)
	if !ok {
		return
	}

	log, err := ws.analyzer.AnalyzeContext(r.Context(), data, fileName)
	if err != nil {
		writeScanError(w, statusForError(err), err)
		return
	}

	result, err := ws.cleaner.CleanContext(r.Context(), data, log)
	if err != nil {
		writeScanError(w, statusForError(err), err)
		return
	}

	actionsJSON, _ := json.Marshal(result.Actions)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="cleaned.pdf"`)
	w.Header().Set("X-Redact-Check-Actions", string(actionsJSON))
	w.Write(result.CleanedBytes)
}

// readUpload extracts the uploaded file from a multipart POST.
func (ws *WebServer) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if r.Method != http.MethodPost {
		writeScanError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return nil, "", false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeScanError(w, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeScanError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeScanError(w, http.StatusBadRequest, fmt.Errorf("reading upload: %w", err))
		return nil, "", false
	}
	return data, header.Filename, true
}

func writeScanError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ScanResponse{Success: false, Error: err.Error()})
}

// statusForError maps pipeline error kinds onto HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, pdfaccess.ErrEmptyInput),
		errors.Is(err, pdfaccess.ErrMalformedPDF),
		errors.Is(err, pdfaccess.ErrParseFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pdfaccess.ErrCancelled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}
