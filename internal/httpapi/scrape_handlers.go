package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"outreach-engine/internal/checkpoint"
	"outreach-engine/internal/config"
	"outreach-engine/internal/scrape"
)

type ScrapeHandler struct {
	CfgVal       *atomic.Value // config.Config
	ScrapeStatus *scrape.Status
	Runner       *scrape.Runner
	Checkpoints  *checkpoint.Store
}

type startScrapingReq struct {
	StartIndex int `json:"start_index"`
	MaxCount   int `json:"max_count"`
}

func (h ScrapeHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startScrapingReq
	if r.Body != nil {
		// Empty body is fine; it means a fresh full run.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.StartIndex < 0 || req.MaxCount < 0 {
		WriteError(w, r, http.StatusBadRequest, "bad_request", "start_index and max_count must be >= 0")
		return
	}

	if h.Runner.Running() {
		WriteError(w, r, http.StatusBadRequest, "already_running", "scraping is already in progress")
		return
	}

	// A resume after a no-results run keeps that status visible until
	// the new run overwrites it; everything else starts clean.
	st := h.ScrapeStatus.Get()
	if !(st.NoResults && req.StartIndex > 0) {
		h.ScrapeStatus.Reset()
	}
	if req.StartIndex == 0 {
		if err := h.Checkpoints.RemoveResults(); err != nil {
			WriteError(w, r, http.StatusInternalServerError, "cleanup_failed", err.Error())
			return
		}
	}

	cfg := h.CfgVal.Load().(config.Config)
	opts := scrape.Options{StartIndex: req.StartIndex, MaxCount: req.MaxCount}
	if err := h.Runner.Start(cfg, opts); err != nil {
		if errors.Is(err, scrape.ErrAlreadyRunning) {
			WriteError(w, r, http.StatusBadRequest, "already_running", "scraping is already in progress")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "start_failed", err.Error())
		return
	}

	writeJSON(w, map[string]any{"ok": true, "message": "scraping started"})
}

func (h ScrapeHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.ScrapeStatus.Get())
}

func (h ScrapeHandler) Download(w http.ResponseWriter, r *http.Request) {
	b, err := os.ReadFile(h.Checkpoints.ResultsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			WriteError(w, r, http.StatusNotFound, "no_results", "no results file exists yet")
			return
		}
		WriteError(w, r, http.StatusInternalServerError, "read_failed", err.Error())
		return
	}

	writeJSON(w, map[string]any{
		"filename":       filepath.Base(h.Checkpoints.ResultsPath),
		"content_base64": base64.StdEncoding.EncodeToString(b),
	})
}

func (h ScrapeHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	h.Runner.Stop()
	if err := h.Checkpoints.ClearWorking(); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "cleanup_failed", err.Error())
		return
	}
	h.ScrapeStatus.Reset()
	writeJSON(w, map[string]any{"ok": true, "message": "cleanup completed"})
}
