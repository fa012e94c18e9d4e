// Package api is the HTTP surface of the scanner: scan submission
// endpoints, report downloads, and a WebSocket stream relaying live scan
// events to connected clients.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dorkscan/dorkscan/pkg/broadcast"
	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/dorks"
	"github.com/dorkscan/dorkscan/pkg/scan"
)

// maxUploadBytes caps uploaded dork files.
const maxUploadBytes = 1 << 20

// Server serves the scan API.
type Server struct {
	orchestrator *scan.Orchestrator
	broadcaster  *broadcast.Broadcaster
	reportsDir   string
	httpServer   *http.Server
}

// NewServer creates a server around an orchestrator. Events flow to
// WebSocket clients through the orchestrator's broadcaster.
func NewServer(orchestrator *scan.Orchestrator, addr, reportsDir string) *Server {
	s := &Server{
		orchestrator: orchestrator,
		broadcaster:  orchestrator.Broadcaster(),
		reportsDir:   reportsDir,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /scan", s.handleScan)
	mux.HandleFunc("POST /bug-bounty-scan", s.handleDomainScan)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /download/{filename}", s.handleDownload)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  defaults.ServerReadTimeout,
		WriteTimeout: defaults.ServerWriteTimeout,
	}
	return s
}

// ListenAndServe blocks serving the API until Shutdown.
func (s *Server) ListenAndServe() error {
	log.Printf("api: listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routing table, used by tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// handleScan accepts an explicit-target scan: comma-separated manual URLs
// and/or an uploaded dork file. Requires the authorized form flag.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}
	if !formBool(r, "authorized") {
		writeError(w, http.StatusBadRequest, "You must be authorized to scan the targets.")
		return
	}

	var urls []string
	for _, u := range strings.Split(r.FormValue("manual_urls"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}

	var queries []string
	if file, _, err := r.FormFile("dork_file"); err == nil {
		defer file.Close()
		queries, err = dorks.Parse(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable dork file")
			return
		}
	}

	if len(urls) == 0 && len(queries) == 0 {
		writeError(w, http.StatusBadRequest, "no targets: provide manual_urls or dork_file")
		return
	}

	if formBool(r, "background") {
		job := s.orchestrator.StartTargets(context.Background(), urls, queries)
		writeAccepted(w, job)
		return
	}

	job := s.orchestrator.ScanTargets(r.Context(), urls, queries)
	bundle := job.Bundle()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Scan complete",
		"scan_id": job.ID,
		"results": bundle.Results,
		"reports": reportLinks(bundle.Reports.JSONPath, bundle.Reports.CSVPath),
		"stats":   bundle.Stats,
	})
}

// handleDomainScan accepts a domain-discovery scan.
func (s *Server) handleDomainScan(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}
	if !formBool(r, "authorized") {
		writeError(w, http.StatusBadRequest, "You must be authorized to scan the targets.")
		return
	}

	domain := dorks.NormalizeDomain(r.FormValue("target_domain"))
	if domain == "" {
		writeError(w, http.StatusBadRequest, "target_domain is required")
		return
	}

	if formBool(r, "background") {
		job := s.orchestrator.StartDomain(context.Background(), domain)
		writeAccepted(w, job)
		return
	}

	job := s.orchestrator.ScanDomain(r.Context(), domain)
	bundle := job.Bundle()
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Scan complete for %s", domain),
		"scan_id": job.ID,
		"results": bundle.Results,
		"osint":   bundle.OSINT,
		"reports": reportLinks(bundle.Reports.JSONPath, bundle.Reports.CSVPath),
		"stats":   bundle.Stats,
	})
}

// handleDownload serves a generated report by filename. Path components
// are stripped so requests cannot escape the reports directory.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := filepath.Base(r.PathValue("filename"))
	if filename == "." || filename == string(filepath.Separator) {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	path := filepath.Join(s.reportsDir, filename)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": defaults.Version,
	})
}

func parseForm(r *http.Request) error {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadBytes)
	}
	return r.ParseForm()
}

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(r.FormValue(key)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

func reportLinks(jsonPath, csvPath string) map[string]string {
	links := map[string]string{}
	if jsonPath != "" {
		links["json"] = "/download/" + filepath.Base(jsonPath)
	}
	if csvPath != "" {
		links["csv"] = "/download/" + filepath.Base(csvPath)
	}
	return links
}

func writeAccepted(w http.ResponseWriter, job *scan.Job) {
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id": job.ID,
		"status": string(job.Status()),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
