package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
	"kakeibo/internal/render"
	"kakeibo/internal/services"
)

const savedMessage = "取引を追加しました。"
const saveFailedMessage = "保存に失敗しました。"
const notFoundMessage = "取引が見つかりません。"

type typeOption struct {
	Value string
	Label string
}

var typeOptions = []typeOption{
	{Value: string(core.Income), Label: core.Income.Label()},
	{Value: string(core.Expense), Label: core.Expense.Label()},
}

// pageData feeds index.html and ledger.html.
type pageData struct {
	Today  string
	Types  []typeOption
	Table  render.Table
	Totals render.Totals
}

type confirmData struct {
	Row     render.Row
	Message string
	Columns int
}

func (s *Server) pageData() pageData {
	snap := s.ledger.Snapshot()
	return pageData{
		Today:  snap.Today,
		Types:  typeOptions,
		Table:  render.Rows(snap.Entries),
		Totals: render.Summary(snap.Summary),
	}
}

// renderTemplate executes name into a buffer so a failing template never
// leaves a half-written response.
func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			"error_type", log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).WithComponent(log.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err, "template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "index.html", s.pageData())
}

// handleLedgerPartial renders the entry table and totals.
func (s *Server) handleLedgerPartial(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "ledger.html", s.pageData())
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	draft, err := ParseDraft(r)
	if err != nil {
		logger.WarnContext(r.Context(), "Parse entry form error", log.FieldError, err, log.FieldOperation, log.OpParse)
		NewHTMXResponse().
			Status(http.StatusBadRequest).
			TriggerErrorNotification(render.InvalidInputMessage).
			Write(w)
		return
	}

	entry, err := s.ledger.Submit(r.Context(), draft)
	switch {
	case errors.Is(err, core.ErrInvalidSubmission):
		logger.InfoContext(r.Context(), "Entry rejected",
			log.FieldError, err, log.FieldOperation, log.OpValidate, "error_type", log.ErrorTypeValidation)
		NewHTMXResponse().
			Status(http.StatusUnprocessableEntity).
			TriggerErrorNotification(render.InvalidInputMessage).
			Write(w)
		return
	case err != nil:
		logger.ErrorContext(r.Context(), "Failed to save entry",
			log.FieldError, err, log.FieldOperation, log.OpSave, "error_type", log.ErrorTypeStorage)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification(saveFailedMessage).
			Write(w)
		return
	}

	s.statsMu.Lock()
	s.entriesAdded++
	s.statsMu.Unlock()

	NewHTMXResponse().
		TriggerEntryAdded(entry.ID).
		TriggerFormReset(s.ledger.Snapshot().Today).
		TriggerLedgerRefresh().
		TriggerSuccessNotification(savedMessage).
		Write(w)
}

// handlePrepareDelete swaps the row for an inline confirmation prompt.
func (s *Server) handlePrepareDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseEntryID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	req, ok := s.ledger.PrepareDelete(id)
	if !ok {
		NotFoundError(notFoundMessage).TriggerLedgerRefresh().Write(w)
		return
	}

	s.renderTemplate(w, r, "confirm_row.html", confirmData{
		Row:     render.RowFor(req.Entry),
		Message: render.ConfirmDeleteMessage,
		Columns: render.TableColumns,
	})
}

// handleResolveDelete applies the confirmation answer. A cancelled prompt
// gets the original row back.
func (s *Server) handleResolveDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseEntryID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	decision, err := ParseDecision(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	req, ok := s.ledger.PrepareDelete(id)
	if !ok {
		NotFoundError(notFoundMessage).TriggerLedgerRefresh().Write(w)
		return
	}

	if decision != services.Confirmed {
		if _, err := s.ledger.ResolveDelete(r.Context(), req, decision); err != nil {
			InternalServerError(saveFailedMessage).Write(w)
			return
		}
		s.renderTemplate(w, r, "row.html", render.RowFor(req.Entry))
		return
	}

	if _, err := s.ledger.ResolveDelete(r.Context(), req, decision); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to delete entry",
			log.FieldError, err, log.FieldEntryID, id, log.FieldOperation, log.OpDelete)
		NewHTMXResponse().
			Status(http.StatusInternalServerError).
			TriggerErrorNotification(saveFailedMessage).
			TriggerLedgerRefresh().
			Write(w)
		return
	}

	NewHTMXResponse().
		TriggerEntryDeleted(id).
		TriggerLedgerRefresh().
		Write(w)
}

// handleAPIEntries returns the entries and totals as JSON.
func (s *Server) handleAPIEntries(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	snap := s.ledger.Snapshot()
	if snap.Entries == nil {
		snap.Entries = []core.Entry{}
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the server can render pages.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok", "ledger": "ok"}
	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.ledger == nil {
		checks["ledger"] = "not_configured"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Snapshot()
	s.statsMu.Lock()
	added := s.entriesAdded
	s.statsMu.Unlock()

	traceMetrics := s.trace.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "Responses with status 5xx", "counter", traceMetrics.FailedRequests)
	metric("ledger_entries", "Entries currently in the ledger", "gauge", len(snap.Entries))
	metric("ledger_entries_added_total", "Entries added since start", "counter", added)
	metric("rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", rateMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateMetrics.ClientCount)
	metric("suspicious_requests_total", "Requests flagged as suspicious", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.started).Seconds()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
