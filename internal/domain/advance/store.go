package advance

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateAdvance(ctx context.Context, tenantID string, adv SalaryAdvance) (SalaryAdvance, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO salary_advances
      (tenant_id, employee_id, total_amount, tenure_months, monthly_installment, paid_to_date, status, start_month, disbursement_date)
    VALUES ($1,$2,$3,$4,$5,0,$6,$7,$8)
    RETURNING id, created_at
  `, tenantID, adv.EmployeeID, adv.TotalAmount, adv.TenureMonths, adv.MonthlyInstallment, adv.Status, adv.StartMonth, adv.DisbursementDate).
		Scan(&adv.ID, &adv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			// 23505: the one-active-advance-per-employee partial index.
			case "23505":
				return SalaryAdvance{}, ErrActiveAdvanceExists
			// 23503: employee foreign key.
			case "23503":
				return SalaryAdvance{}, ErrEmployeeNotFound
			}
		}
		return SalaryAdvance{}, err
	}
	return adv, nil
}

func (s *Store) GetAdvance(ctx context.Context, tenantID, advanceID string) (SalaryAdvance, error) {
	return s.scanOne(s.DB.QueryRow(ctx, `
    SELECT id, employee_id, total_amount, tenure_months, monthly_installment, paid_to_date, status, start_month, disbursement_date, created_at
    FROM salary_advances
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, advanceID))
}

func (s *Store) ActiveAdvance(ctx context.Context, tenantID, employeeID string) (SalaryAdvance, error) {
	return s.scanOne(s.DB.QueryRow(ctx, `
    SELECT id, employee_id, total_amount, tenure_months, monthly_installment, paid_to_date, status, start_month, disbursement_date, created_at
    FROM salary_advances
    WHERE tenant_id = $1 AND employee_id = $2 AND status = 'active'
  `, tenantID, employeeID))
}

func (s *Store) ListAdvances(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]SalaryAdvance, int, error) {
	query := `
    SELECT id, employee_id, total_amount, tenure_months, monthly_installment, paid_to_date, status, start_month, disbursement_date, created_at
    FROM salary_advances
    WHERE tenant_id = $1
  `
	countQuery := "SELECT COUNT(1) FROM salary_advances WHERE tenant_id = $1"
	args := []any{tenantID}
	if employeeID != "" {
		query += " AND employee_id = $2"
		countQuery += " AND employee_id = $2"
		args = append(args, employeeID)
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY created_at DESC"
	limitPos := len(args) + 1
	query += " LIMIT $" + itoa(limitPos) + " OFFSET $" + itoa(limitPos+1)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []SalaryAdvance
	for rows.Next() {
		var adv SalaryAdvance
		if err := rows.Scan(&adv.ID, &adv.EmployeeID, &adv.TotalAmount, &adv.TenureMonths, &adv.MonthlyInstallment,
			&adv.PaidToDate, &adv.Status, &adv.StartMonth, &adv.DisbursementDate, &adv.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, adv)
	}
	return out, total, rows.Err()
}

// ApplyInstallment bumps paid-to-date atomically in one statement, so
// two concurrent run processings can never interleave a read-modify-write
// and lose an installment. Completion is derived in the same UPDATE.
func (s *Store) ApplyInstallment(ctx context.Context, tenantID, advanceID string, amount int64) (SalaryAdvance, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE salary_advances
    SET paid_to_date = LEAST(paid_to_date + $1, total_amount),
        status = CASE WHEN paid_to_date + $1 >= total_amount THEN 'completed' ELSE status END
    WHERE tenant_id = $2 AND id = $3 AND status = 'active'
    RETURNING id, employee_id, total_amount, tenure_months, monthly_installment, paid_to_date, status, start_month, disbursement_date, created_at
  `, amount, tenantID, advanceID)
	adv, err := s.scanOne(row)
	if errors.Is(err, ErrAdvanceNotFound) {
		existing, getErr := s.GetAdvance(ctx, tenantID, advanceID)
		if getErr != nil {
			return SalaryAdvance{}, getErr
		}
		if existing.Status != StatusActive {
			return SalaryAdvance{}, ErrAdvanceNotActive
		}
	}
	return adv, err
}

func (s *Store) SetStatus(ctx context.Context, tenantID, advanceID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE salary_advances SET status = $1 WHERE tenant_id = $2 AND id = $3
  `, status, tenantID, advanceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAdvanceNotFound
	}
	return nil
}

func (s *Store) scanOne(row pgx.Row) (SalaryAdvance, error) {
	var adv SalaryAdvance
	err := row.Scan(&adv.ID, &adv.EmployeeID, &adv.TotalAmount, &adv.TenureMonths, &adv.MonthlyInstallment,
		&adv.PaidToDate, &adv.Status, &adv.StartMonth, &adv.DisbursementDate, &adv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SalaryAdvance{}, ErrAdvanceNotFound
	}
	if err != nil {
		return SalaryAdvance{}, err
	}
	return adv, nil
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
