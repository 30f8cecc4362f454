package roster

import "context"

type StoreAPI interface {
	BeginImport(ctx context.Context) (ImportTx, error)
	ListTeams(ctx context.Context, companyID string) ([]Team, error)
	// FindTeam returns ErrTeamNotFound when the team is absent or belongs to
	// another company.
	FindTeam(ctx context.Context, companyID, teamID string) (Team, error)
	ListTeamClients(ctx context.Context, teamID string, window ScheduleRange) ([]ScheduledClient, error)
}

// ImportTx is one open transaction. Rollback after Commit must be a no-op.
type ImportTx interface {
	InsertTeam(ctx context.Context, companyID, name string, expenses *float64) (string, error)
	InsertEmployee(ctx context.Context, teamID string, emp Employee) (string, error)
	InsertClient(ctx context.Context, teamID string, client Client) (string, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
