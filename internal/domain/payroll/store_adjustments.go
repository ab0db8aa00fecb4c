package payroll

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const adjustmentColumns = "id, run_id, employee_id, label, amount, taxable, created_at"

func (s *Store) CreateAdjustment(ctx context.Context, tenantID, runID, employeeID string, in AdjustmentInput) (Adjustment, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_adjustments (tenant_id, run_id, employee_id, label, amount, taxable)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING `+adjustmentColumns+`
  `, tenantID, runID, employeeID, in.Label, in.Amount, in.Taxable)
	adj, err := scanAdjustment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503: run or employee foreign key missing.
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Adjustment{}, ErrEmployeeNotFound
		}
		return Adjustment{}, err
	}
	return adj, nil
}

func (s *Store) GetAdjustment(ctx context.Context, tenantID, adjustmentID string) (Adjustment, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+adjustmentColumns+`
    FROM payroll_adjustments
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, adjustmentID)
	return scanAdjustment(row)
}

func (s *Store) UpdateAdjustment(ctx context.Context, tenantID, adjustmentID string, in AdjustmentInput) (Adjustment, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE payroll_adjustments
    SET label = $1, amount = $2, taxable = $3
    WHERE tenant_id = $4 AND id = $5
    RETURNING `+adjustmentColumns+`
  `, in.Label, in.Amount, in.Taxable, tenantID, adjustmentID)
	return scanAdjustment(row)
}

func (s *Store) DeleteAdjustment(ctx context.Context, tenantID, adjustmentID string) (Adjustment, error) {
	row := s.DB.QueryRow(ctx, `
    DELETE FROM payroll_adjustments
    WHERE tenant_id = $1 AND id = $2
    RETURNING `+adjustmentColumns+`
  `, tenantID, adjustmentID)
	return scanAdjustment(row)
}

func (s *Store) ListAdjustments(ctx context.Context, tenantID, runID, employeeID string, limit, offset int) ([]Adjustment, int, error) {
	query := `
    SELECT ` + adjustmentColumns + `
    FROM payroll_adjustments
    WHERE tenant_id = $1 AND run_id = $2
  `
	countQuery := "SELECT COUNT(1) FROM payroll_adjustments WHERE tenant_id = $1 AND run_id = $2"
	args := []any{tenantID, runID}
	if employeeID != "" {
		query += " AND employee_id = $3"
		countQuery += " AND employee_id = $3"
		args = append(args, employeeID)
	}

	var total int
	if err := s.DB.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY created_at DESC"
	query += " LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var adjustments []Adjustment
	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, 0, err
		}
		adjustments = append(adjustments, adj)
	}
	return adjustments, total, rows.Err()
}

func (s *Store) ListAdjustmentLines(ctx context.Context, runID, employeeID string) ([]AdjustmentLine, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT amount, taxable
    FROM payroll_adjustments
    WHERE run_id = $1 AND employee_id = $2
  `, runID, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []AdjustmentLine
	for rows.Next() {
		var line AdjustmentLine
		if err := rows.Scan(&line.Amount, &line.Taxable); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *Store) AdjustmentEmployees(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT employee_id
    FROM payroll_adjustments
    WHERE run_id = $1
    ORDER BY employee_id
  `, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanAdjustment(row pgx.Row) (Adjustment, error) {
	var adj Adjustment
	err := row.Scan(&adj.ID, &adj.RunID, &adj.EmployeeID, &adj.Label, &adj.Amount, &adj.Taxable, &adj.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Adjustment{}, ErrAdjustmentNotFound
	}
	if err != nil {
		return Adjustment{}, err
	}
	return adj, nil
}
