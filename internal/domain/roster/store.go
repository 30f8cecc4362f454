package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

var _ StoreAPI = (*Store)(nil)

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) BeginImport(ctx context.Context) (ImportTx, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgImportTx{tx: tx}, nil
}

func (s *Store) ListTeams(ctx context.Context, companyID string) ([]Team, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, company_id, name, expenses, created_at
    FROM teams
    WHERE company_id = $1
    ORDER BY name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Team
	for rows.Next() {
		var team Team
		if err := rows.Scan(&team.ID, &team.CompanyID, &team.Name, &team.Expenses, &team.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, team)
	}
	return out, rows.Err()
}

func (s *Store) FindTeam(ctx context.Context, companyID, teamID string) (Team, error) {
	var team Team
	err := s.DB.QueryRow(ctx, `
    SELECT id, company_id, name, expenses, created_at
    FROM teams
    WHERE id::text = $1 AND company_id = $2
  `, teamID, companyID).Scan(&team.ID, &team.CompanyID, &team.Name, &team.Expenses, &team.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, ErrTeamNotFound
	}
	return team, err
}

// ListTeamClients orders by day then time; undated clients sort last.
func (s *Store) ListTeamClients(ctx context.Context, teamID string, window ScheduleRange) ([]ScheduledClient, error) {
	query := `
    SELECT c.id, c.name, c.address, c.cleaning_value, c.house_size, c.payment_method,
           c.day_of_cleaning, c.time_of_cleaning, c.special_request, c.phone, c.type_clean, t.name
    FROM clients c
    JOIN teams t ON t.id = c.team_id
    WHERE c.team_id::text = $1`
	args := []any{teamID}
	if window.From != "" {
		args = append(args, window.From)
		query += fmt.Sprintf(" AND c.day_of_cleaning <> '' AND c.day_of_cleaning >= $%d", len(args))
	}
	if window.To != "" {
		args = append(args, window.To)
		query += fmt.Sprintf(" AND c.day_of_cleaning <> '' AND c.day_of_cleaning <= $%d", len(args))
	}
	query += " ORDER BY c.day_of_cleaning = '', c.day_of_cleaning, c.time_of_cleaning, c.name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScheduledClient
	for rows.Next() {
		var sc ScheduledClient
		if err := rows.Scan(&sc.ID, &sc.Name, &sc.Address, &sc.CleaningValue, &sc.HouseSize, &sc.PaymentMethod,
			&sc.DayOfCleaning, &sc.TimeOfCleaning, &sc.SpecialRequest, &sc.Phone, &sc.TypeClean, &sc.Team); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

type pgImportTx struct {
	tx pgx.Tx
}

func (t *pgImportTx) InsertTeam(ctx context.Context, companyID, name string, expenses *float64) (string, error) {
	var id string
	err := t.tx.QueryRow(ctx, `
    INSERT INTO teams (company_id, name, expenses)
    VALUES ($1,$2,$3)
    RETURNING id
  `, companyID, name, expenses).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *pgImportTx) InsertEmployee(ctx context.Context, teamID string, emp Employee) (string, error) {
	var id string
	err := t.tx.QueryRow(ctx, `
    INSERT INTO employees (team_id, name, phone, address, pay_rate, role, hours_worked)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
    RETURNING id
  `, teamID, emp.Name, emp.Phone, emp.Address, emp.PayRate, emp.Role, emp.HoursWorked).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *pgImportTx) InsertClient(ctx context.Context, teamID string, client Client) (string, error) {
	var id string
	err := t.tx.QueryRow(ctx, `
    INSERT INTO clients (team_id, name, address, cleaning_value, house_size, payment_method,
      day_of_cleaning, time_of_cleaning, special_request, phone, type_clean)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id
  `,
		teamID, client.Name, client.Address, client.CleaningValue, client.HouseSize, client.PaymentMethod,
		client.DayOfCleaning, client.TimeOfCleaning, client.SpecialRequest, client.Phone, client.TypeClean,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (t *pgImportTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback ignores pgx.ErrTxClosed so it can be deferred unconditionally.
func (t *pgImportTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}
