package payroll

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const runColumns = "id, tenant_id, period_start, period_end, disbursement_date, run_type, status, total_amount, created_at"

func (s *Store) CreateRun(ctx context.Context, tenantID string, in CreateRunInput) (PayrollRun, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_runs (tenant_id, period_start, period_end, disbursement_date, run_type, status, total_amount)
    VALUES ($1,$2,$3,$4,$5,'draft',0)
    RETURNING `+runColumns+`
  `, tenantID, in.PeriodStart, in.PeriodEnd, in.DisbursementDate, in.RunType)
	run, err := scanRun(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: the non-failed regular run per period index.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return PayrollRun{}, ErrDuplicateRegular
		}
		return PayrollRun{}, err
	}
	return run, nil
}

func (s *Store) GetRun(ctx context.Context, tenantID, runID string) (PayrollRun, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+runColumns+`
    FROM payroll_runs
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, runID)
	return scanRun(row)
}

func (s *Store) ListRuns(ctx context.Context, tenantID string, limit, offset int) ([]PayrollRun, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM payroll_runs WHERE tenant_id = $1", tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT `+runColumns+`
    FROM payroll_runs
    WHERE tenant_id = $1
    ORDER BY period_start DESC, created_at DESC
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (s *Store) ListRunsByType(ctx context.Context, tenantID, runType string) ([]PayrollRun, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+runColumns+`
    FROM payroll_runs
    WHERE tenant_id = $1 AND run_type = $2
    ORDER BY period_start
  `, tenantID, runType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) MarkRunProcessing(ctx context.Context, tenantID, runID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_runs SET status = 'processing'
    WHERE tenant_id = $1 AND id = $2 AND status = 'draft'
  `, tenantID, runID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.GetRun(ctx, tenantID, runID); err != nil {
			return err
		}
		return ErrRunNotDraft
	}
	return nil
}

func (s *Store) SetRunStatus(ctx context.Context, tenantID, runID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_runs SET status = $1 WHERE tenant_id = $2 AND id = $3
  `, status, tenantID, runID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *Store) CompletedInterimLines(ctx context.Context, tenantID string, periodStart, periodEnd time.Time, excludeRunID string) ([]PaidLine, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT i.employee_id, i.net_pay
    FROM payroll_run_items i
    JOIN payroll_runs r ON i.run_id = r.id
    WHERE r.tenant_id = $1
      AND r.id <> $2
      AND r.status = 'completed'
      AND r.run_type IN ('off_cycle', 'partial_payment')
      AND r.period_start <= $3
      AND r.period_end >= $4
      AND i.line_status = 'active'
  `, tenantID, excludeRunID, periodEnd, periodStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []PaidLine
	for rows.Next() {
		var line PaidLine
		if err := rows.Scan(&line.EmployeeID, &line.NetPay); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *Store) RunTotals(ctx context.Context, tenantID, runID string) (RunTotals, error) {
	run, err := s.GetRun(ctx, tenantID, runID)
	if err != nil {
		return RunTotals{}, err
	}
	items, err := s.ListLineItems(ctx, tenantID, runID)
	if err != nil {
		return RunTotals{}, err
	}
	return RunTotals{
		RunID:       run.ID,
		RunType:     run.RunType,
		Status:      run.Status,
		TotalAmount: run.TotalAmount,
		PerEmployee: items,
	}, nil
}

func scanRun(row pgx.Row) (PayrollRun, error) {
	var run PayrollRun
	err := row.Scan(&run.ID, &run.TenantID, &run.PeriodStart, &run.PeriodEnd, &run.DisbursementDate,
		&run.RunType, &run.Status, &run.TotalAmount, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayrollRun{}, ErrRunNotFound
	}
	if err != nil {
		return PayrollRun{}, err
	}
	return run, nil
}
