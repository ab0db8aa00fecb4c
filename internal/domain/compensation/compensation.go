package compensation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeBasePay is the opaque per-employee output of the external
// compensation computation: gross and statutory deductions in minor
// currency units.
type EmployeeBasePay struct {
	EmployeeID string
	Gross      int64
	Deductions int64
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListActive(ctx context.Context, tenantID string) ([]EmployeeBasePay, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, monthly_gross, monthly_deductions
    FROM employees
    WHERE tenant_id = $1 AND status = 'active'
    ORDER BY id
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeBasePay
	for rows.Next() {
		var pay EmployeeBasePay
		if err := rows.Scan(&pay.EmployeeID, &pay.Gross, &pay.Deductions); err != nil {
			return nil, err
		}
		out = append(out, pay)
	}
	return out, rows.Err()
}

func (s *Store) BasePay(ctx context.Context, tenantID, employeeID string) (EmployeeBasePay, error) {
	pay := EmployeeBasePay{EmployeeID: employeeID}
	err := s.DB.QueryRow(ctx, `
    SELECT monthly_gross, monthly_deductions
    FROM employees
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, employeeID).Scan(&pay.Gross, &pay.Deductions)
	if errors.Is(err, pgx.ErrNoRows) {
		return pay, ErrEmployeeNotFound
	}
	if err != nil {
		return pay, err
	}
	return pay, nil
}
