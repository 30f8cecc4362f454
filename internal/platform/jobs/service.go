package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	SourceUpload = "upload"
	SourceCLI    = "cli"

	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Run is one attempted roster import. Runs are written outside the import
// transaction so failed attempts stay visible.
type Run struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"companyId"`
	ActorID     string          `json:"actorId,omitempty"`
	Source      string          `json:"source"`
	FileName    string          `json:"fileName"`
	Status      string          `json:"status"`
	Details     json.RawMessage `json:"details"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

type Spec struct {
	CompanyID string
	ActorID   string
	Source    string
	FileName  string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Track records a run around fn. Bookkeeping failures are logged and never
// change the outcome of fn.
func (s *Service) Track(ctx context.Context, spec Spec, fn func(context.Context) (any, error)) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO import_runs (company_id, actor_id, source, file_name, status)
    VALUES ($1,NULLIF($2,'')::uuid,$3,$4,$5)
    RETURNING id
  `, spec.CompanyID, spec.ActorID, spec.Source, spec.FileName, StatusRunning).Scan(&runID); err != nil {
		slog.Warn("import run insert failed", "companyId", spec.CompanyID, "err", err)
	}

	result, err := fn(ctx)
	status, details := outcome(result, err)
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("import run details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(context.WithoutCancel(ctx), `
      UPDATE import_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("import run update failed", "runId", runID, "err", updErr)
		}
	}
	return result, err
}

func (s *Service) List(ctx context.Context, companyID string, limit, offset int) ([]Run, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, company_id, COALESCE(actor_id::text, ''), source, file_name, status, details_json, started_at, completed_at
    FROM import_runs
    WHERE company_id = $1
    ORDER BY started_at DESC
    LIMIT $2 OFFSET $3
  `, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.CompanyID, &run.ActorID, &run.Source, &run.FileName, &run.Status, &run.Details, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func outcome(result any, err error) (string, map[string]any) {
	if err != nil {
		return StatusFailed, map[string]any{"error": err.Error()}
	}
	return StatusSucceeded, map[string]any{"result": result}
}
