package reports

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	TeamTotals(ctx context.Context, companyID string) ([]TeamTotals, error)
	CompanyName(ctx context.Context, companyID string) (string, error)
}

type Store struct {
	DB *pgxpool.Pool
}

var _ StoreAPI = (*Store)(nil)

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) TeamTotals(ctx context.Context, companyID string) ([]TeamTotals, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.name,
           COALESCE((SELECT SUM(c.cleaning_value) FROM clients c WHERE c.team_id = t.id), 0)::float8,
           COALESCE((SELECT SUM(e.pay_rate * e.hours_worked) FROM employees e WHERE e.team_id = t.id), 0)::float8,
           COALESCE(t.expenses, 0)::float8
    FROM teams t
    WHERE t.company_id = $1
    ORDER BY t.name
  `, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamTotals
	for rows.Next() {
		var t TeamTotals
		if err := rows.Scan(&t.TeamID, &t.TeamName, &t.Revenue, &t.Payroll, &t.Expenses); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CompanyName(ctx context.Context, companyID string) (string, error) {
	var name string
	err := s.DB.QueryRow(ctx, "SELECT name FROM companies WHERE id = $1", companyID).Scan(&name)
	return name, err
}
