package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreAPI interface {
	CreateCompanyWithAdmin(ctx context.Context, company Company, admin Administrator) (Administrator, error)
	FindAdminByEmail(ctx context.Context, email string) (Administrator, error)
	UpdatePassword(ctx context.Context, adminID, hash string) error
}

type Store struct {
	DB *pgxpool.Pool
}

var _ StoreAPI = (*Store)(nil)

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// CreateCompanyWithAdmin inserts the company and its first administrator in
// one transaction.
func (s *Store) CreateCompanyWithAdmin(ctx context.Context, company Company, admin Administrator) (Administrator, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Administrator{}, err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `
    INSERT INTO companies (name, address, phone)
    VALUES ($1,$2,$3)
    RETURNING id
  `, company.Name, company.Address, company.Phone).Scan(&admin.CompanyID); err != nil {
		if isUniqueViolation(err) {
			return Administrator{}, ErrCompanyExists
		}
		return Administrator{}, err
	}

	if err := tx.QueryRow(ctx, `
    INSERT INTO administrators (company_id, name, email, password_hash)
    VALUES ($1,$2,$3,$4)
    RETURNING id, created_at
  `, admin.CompanyID, admin.Name, admin.Email, admin.PasswordHash).Scan(&admin.ID, &admin.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return Administrator{}, ErrEmailExists
		}
		return Administrator{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Administrator{}, err
	}
	return admin, nil
}

func (s *Store) FindAdminByEmail(ctx context.Context, email string) (Administrator, error) {
	var out Administrator
	err := s.DB.QueryRow(ctx, `
    SELECT id, company_id, name, email, password_hash, created_at
    FROM administrators
    WHERE lower(email) = lower($1)
  `, email).Scan(&out.ID, &out.CompanyID, &out.Name, &out.Email, &out.PasswordHash, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Administrator{}, ErrAdminNotFound
	}
	return out, err
}

func (s *Store) UpdatePassword(ctx context.Context, adminID, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE administrators SET password_hash = $1, updated_at = now() WHERE id = $2", hash, adminID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdminNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
