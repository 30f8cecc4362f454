package roster

import (
	"context"
	"fmt"
	"log/slog"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListTeams(ctx context.Context, companyID string) ([]Team, error) {
	return s.store.ListTeams(ctx, companyID)
}

// TeamSchedule lists the clients of one team of the company, in visiting
// order.
func (s *Service) TeamSchedule(ctx context.Context, companyID, teamID string, window ScheduleRange) (Schedule, error) {
	if window.From != "" && window.To != "" && window.From > window.To {
		return Schedule{}, fmt.Errorf("%w: from %s is after to %s", ErrInvalidRange, window.From, window.To)
	}
	team, err := s.store.FindTeam(ctx, companyID, teamID)
	if err != nil {
		return Schedule{}, err
	}
	clients, err := s.store.ListTeamClients(ctx, team.ID, window)
	if err != nil {
		return Schedule{}, err
	}
	if clients == nil {
		clients = []ScheduledClient{}
	}
	return Schedule{Team: team, Clients: clients}, nil
}

// ImportRoster writes teams, employees and clients for one company in a
// single transaction. Each distinct team name gets exactly one team row per
// run; nothing is kept if any insert fails.
func (s *Service) ImportRoster(ctx context.Context, companyID string, employees []Employee, clients []Client) (ImportResult, error) {
	tx, err := s.store.BeginImport(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: begin: %w", ErrImportFailed, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			slog.Warn("roster import rollback failed", "companyId", companyID, "err", err)
		}
	}()

	teamIDs := make(map[string]string)
	var result ImportResult

	for i, emp := range employees {
		teamID, ok := teamIDs[emp.Team]
		if !ok {
			teamID, err = tx.InsertTeam(ctx, companyID, emp.Team, emp.TeamExpenses)
			if err != nil {
				return ImportResult{}, fmt.Errorf("%w: team %q: %w", ErrImportFailed, emp.Team, err)
			}
			teamIDs[emp.Team] = teamID
			result.Teams++
		}
		if _, err := tx.InsertEmployee(ctx, teamID, emp); err != nil {
			return ImportResult{}, fmt.Errorf("%w: employee %d: %w", ErrImportFailed, i, err)
		}
		result.Employees++
	}

	for i, client := range clients {
		teamID, ok := teamIDs[client.Team]
		if !ok {
			return ImportResult{}, fmt.Errorf("%w: client %d: %w", ErrImportFailed, i, ErrUnknownTeam)
		}
		if _, err := tx.InsertClient(ctx, teamID, client); err != nil {
			return ImportResult{}, fmt.Errorf("%w: client %d: %w", ErrImportFailed, i, err)
		}
		result.Clients++
	}

	if err := tx.Commit(ctx); err != nil {
		return ImportResult{}, fmt.Errorf("%w: commit: %w", ErrImportFailed, err)
	}
	return result, nil
}
