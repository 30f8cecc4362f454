package rosterhandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"cleanops/internal/domain/audit"
	"cleanops/internal/domain/roster"
	"cleanops/internal/platform/jobs"
	"cleanops/internal/platform/metrics"
	"cleanops/internal/platform/spreadsheet"
	"cleanops/internal/transport/http/api"
	"cleanops/internal/transport/http/middleware"
	"cleanops/internal/transport/http/shared"
)

const (
	importEndpoint       = "roster.import"
	idempotencyKeyHeader = "Idempotency-Key"
	maxIdempotencyKeyLen = 128
)

type Service interface {
	ImportRoster(ctx context.Context, companyID string, employees []roster.Employee, clients []roster.Client) (roster.ImportResult, error)
	ListTeams(ctx context.Context, companyID string) ([]roster.Team, error)
	TeamSchedule(ctx context.Context, companyID, teamID string, window roster.ScheduleRange) (roster.Schedule, error)
}

type RunTracker interface {
	Track(ctx context.Context, spec jobs.Spec, fn func(context.Context) (any, error)) (any, error)
	List(ctx context.Context, companyID string, limit, offset int) ([]jobs.Run, error)
}

type IdempotencyStore interface {
	Check(ctx context.Context, companyID, actorID, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, companyID, actorID, endpoint, key, requestHash string, response json.RawMessage) error
}

type Handler struct {
	Service        Service
	Runs           RunTracker
	Idempotency    IdempotencyStore
	Audit          audit.Recorder
	Metrics        *metrics.Collector
	MaxUploadBytes int64
}

func NewHandler(service Service, runs RunTracker, idem IdempotencyStore, recorder audit.Recorder, collector *metrics.Collector, maxUploadBytes int64) *Handler {
	return &Handler{
		Service:        service,
		Runs:           runs,
		Idempotency:    idem,
		Audit:          recorder,
		Metrics:        collector,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/roster", func(r chi.Router) {
		r.Post("/import", h.handleImport)
		r.Post("/preview", h.handlePreview)
		r.Get("/imports", h.handleListImports)
	})
	r.Get("/teams", h.handleListTeams)
	r.Get("/teams/{id}/schedule", h.handleTeamSchedule)
}

// ImportResponse is the body of a successful import and the payload replayed
// for a repeated Idempotency-Key.
type ImportResponse struct {
	roster.ImportResult
	DroppedClientRows int `json:"droppedClientRows"`
}

type upload struct {
	name string
	data []byte
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	file, ok := h.readUpload(w, r, requestID)
	if !ok {
		return
	}

	key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
	if len(key) > maxIdempotencyKeyLen {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: idempotencyKeyHeader, Reason: "must be at most 128 characters"}})
		return
	}
	requestHash := middleware.RequestHash(file.data)
	if key != "" && h.Idempotency != nil {
		stored, found, err := h.Idempotency.Check(r.Context(), principal.CompanyID, principal.AdminID, importEndpoint, key, requestHash)
		if errors.Is(err, middleware.ErrIdempotencyConflict) {
			api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key reused with a different file", requestID)
			return
		}
		if err != nil {
			slog.Error("idempotency check failed", "err", err, "requestId", requestID)
			api.Fail(w, http.StatusInternalServerError, "idempotency_failed", "failed to check idempotency key", requestID)
			return
		}
		if found {
			w.Header().Set("Idempotent-Replay", "true")
			api.Created(w, stored, requestID)
			return
		}
	}

	grid, err := spreadsheet.Open(file.data, file.name)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_workbook", "file is not a readable workbook", requestID)
		return
	}
	parsed := roster.Parse(grid)

	result, err := h.track(r.Context(), jobs.Spec{
		CompanyID: principal.CompanyID,
		ActorID:   principal.AdminID,
		Source:    jobs.SourceUpload,
		FileName:  file.name,
	}, parsed)
	h.Metrics.RecordImport(err == nil, result.Employees+result.Clients)
	if err != nil {
		slog.Error("roster import failed", "companyId", principal.CompanyID, "file", file.name, "err", err, "requestId", requestID)
		if errors.Is(err, roster.ErrImportFailed) {
			api.Fail(w, http.StatusUnprocessableEntity, "import_failed", roster.ErrImportFailed.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "import_error", "failed to import roster", requestID)
		return
	}

	response := ImportResponse{ImportResult: result, DroppedClientRows: parsed.DroppedClientRows}
	slog.Info("roster imported",
		"companyId", principal.CompanyID,
		"teams", result.Teams,
		"employees", result.Employees,
		"clients", result.Clients,
		"droppedClientRows", parsed.DroppedClientRows,
	)
	h.record(r, principal, response, file.name)

	if key != "" && h.Idempotency != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			err = h.Idempotency.Save(r.Context(), principal.CompanyID, principal.AdminID, importEndpoint, key, requestHash, payload)
		}
		if err != nil {
			slog.Warn("idempotency save failed", "err", err, "requestId", requestID)
		}
	}
	api.Created(w, response, requestID)
}

func (h *Handler) track(ctx context.Context, spec jobs.Spec, parsed roster.ParseResult) (roster.ImportResult, error) {
	run := func(ctx context.Context) (any, error) {
		return h.Service.ImportRoster(ctx, spec.CompanyID, parsed.Employees, parsed.Clients)
	}
	var out any
	var err error
	if h.Runs != nil {
		out, err = h.Runs.Track(ctx, spec, run)
	} else {
		out, err = run(ctx)
	}
	result, _ := out.(roster.ImportResult)
	return result, err
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if _, ok := middleware.GetPrincipal(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	file, ok := h.readUpload(w, r, requestID)
	if !ok {
		return
	}
	grid, err := spreadsheet.Open(file.data, file.name)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_workbook", "file is not a readable workbook", requestID)
		return
	}
	api.Success(w, roster.Parse(grid), requestID)
}

func (h *Handler) handleListImports(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	if h.Runs == nil {
		api.Success(w, []jobs.Run{}, requestID)
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	runs, err := h.Runs.List(r.Context(), principal.CompanyID, page.Limit, page.Offset)
	if err != nil {
		slog.Error("import run list failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "imports_list_failed", "failed to list imports", requestID)
		return
	}
	if runs == nil {
		runs = []jobs.Run{}
	}
	api.Success(w, runs, requestID)
}

func (h *Handler) handleListTeams(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	teams, err := h.Service.ListTeams(r.Context(), principal.CompanyID)
	if err != nil {
		slog.Error("team list failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "teams_list_failed", "failed to list teams", requestID)
		return
	}
	if teams == nil {
		teams = []roster.Team{}
	}
	api.Success(w, teams, requestID)
}

func (h *Handler) handleTeamSchedule(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	window := roster.ScheduleRange{
		From: strings.TrimSpace(r.URL.Query().Get("from")),
		To:   strings.TrimSpace(r.URL.Query().Get("to")),
	}
	var issues []shared.ValidationIssue
	for _, param := range []struct{ field, value string }{{"from", window.From}, {"to", window.To}} {
		if param.value == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, param.value); err != nil {
			issues = append(issues, shared.ValidationIssue{Field: param.field, Reason: "must be a YYYY-MM-DD date"})
		}
	}
	if len(issues) > 0 {
		shared.FailValidation(w, requestID, issues)
		return
	}

	schedule, err := h.Service.TeamSchedule(r.Context(), principal.CompanyID, chi.URLParam(r, "id"), window)
	switch {
	case err == nil:
		api.Success(w, schedule, requestID)
	case errors.Is(err, roster.ErrTeamNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "team not found", requestID)
	case errors.Is(err, roster.ErrInvalidRange):
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "from", Reason: "must not be after to"}})
	default:
		slog.Error("team schedule failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "schedule_failed", "failed to load team schedule", requestID)
	}
}

// readUpload pulls the multipart "file" field into memory. It writes the
// error response itself and reports false when the request is unusable.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request, requestID string) (upload, bool) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "upload_too_large", "uploaded file is too large", requestID)
			return upload{}, false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_upload", "expected a multipart form upload", requestID)
		return upload{}, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.FailValidation(w, requestID, []shared.ValidationIssue{{Field: "file", Reason: "is required"}})
		return upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_upload", "failed to read uploaded file", requestID)
		return upload{}, false
	}
	if int64(len(data)) > limit {
		api.Fail(w, http.StatusRequestEntityTooLarge, "upload_too_large", "uploaded file is too large", requestID)
		return upload{}, false
	}
	return upload{name: header.Filename, data: data}, true
}

func (h *Handler) record(r *http.Request, principal middleware.Principal, response ImportResponse, fileName string) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), audit.Entry{
		CompanyID:  principal.CompanyID,
		ActorID:    principal.AdminID,
		Action:     audit.ActionRosterImport,
		EntityType: "roster",
		EntityID:   fileName,
		RequestID:  middleware.GetRequestID(r.Context()),
		IP:         shared.ClientIP(r),
		After:      response,
	})
	if err != nil {
		slog.Warn("audit failed", "action", audit.ActionRosterImport, "err", err)
	}
}
