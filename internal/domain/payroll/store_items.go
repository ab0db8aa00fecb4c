package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

const itemColumns = "run_id, employee_id, base_gross, base_deductions, already_paid, emi_due, net_pay, line_status, warnings_json"

func (s *Store) GetLineItem(ctx context.Context, tenantID, runID, employeeID string) (EmployeeLineItem, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+itemColumns+`
    FROM payroll_run_items
    WHERE tenant_id = $1 AND run_id = $2 AND employee_id = $3
  `, tenantID, runID, employeeID)
	return scanLineItem(row)
}

func (s *Store) ListLineItems(ctx context.Context, tenantID, runID string) ([]EmployeeLineItem, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+itemColumns+`
    FROM payroll_run_items
    WHERE tenant_id = $1 AND run_id = $2
    ORDER BY employee_id
  `, tenantID, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []EmployeeLineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveLineItem writes one employee's settlement and the run's fresh
// aggregate total in a single transaction. The per-run advisory lock
// serializes concurrent employee updates only at the total-write step;
// readers therefore never see a line item without its matching total.
func (s *Store) SaveLineItem(ctx context.Context, tenantID string, item EmployeeLineItem) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("line item rollback failed", "runId", item.RunID, "err", rbErr)
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('payroll_run:' || $1, 0))`, item.RunID); err != nil {
		return mapConcurrency(err)
	}

	warningsJSON, err := json.Marshal(item.Warnings)
	if err != nil {
		warningsJSON = []byte("[]")
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO payroll_run_items
      (tenant_id, run_id, employee_id, base_gross, base_deductions, already_paid, emi_due, net_pay, line_status, warnings_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    ON CONFLICT (run_id, employee_id)
    DO UPDATE SET
      base_gross = EXCLUDED.base_gross,
      base_deductions = EXCLUDED.base_deductions,
      already_paid = EXCLUDED.already_paid,
      emi_due = EXCLUDED.emi_due,
      net_pay = EXCLUDED.net_pay,
      line_status = EXCLUDED.line_status,
      warnings_json = EXCLUDED.warnings_json,
      updated_at = now()
  `, tenantID, item.RunID, item.EmployeeID, item.BaseGross, item.BaseDeductions,
		item.AlreadyPaid, item.EMIDue, item.NetPay, item.LineStatus, warningsJSON); err != nil {
		return mapConcurrency(err)
	}

	if err := s.refreshRunTotal(ctx, tx, item.RunID); err != nil {
		return err
	}
	return mapConcurrency(tx.Commit(ctx))
}

func (s *Store) SetLineStatus(ctx context.Context, tenantID, runID, employeeID, status string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("line status rollback failed", "runId", runID, "err", rbErr)
		}
	}()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended('payroll_run:' || $1, 0))`, runID); err != nil {
		return mapConcurrency(err)
	}

	tag, err := tx.Exec(ctx, `
    UPDATE payroll_run_items SET line_status = $1, updated_at = now()
    WHERE tenant_id = $2 AND run_id = $3 AND employee_id = $4
  `, status, tenantID, runID, employeeID)
	if err != nil {
		return mapConcurrency(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLineItemNotFound
	}

	if err := s.refreshRunTotal(ctx, tx, runID); err != nil {
		return err
	}
	return mapConcurrency(tx.Commit(ctx))
}

// refreshRunTotal recomputes the aggregate from the current line items
// inside the caller's transaction; the total is never carried forward
// incrementally.
func (s *Store) refreshRunTotal(ctx context.Context, tx pgx.Tx, runID string) error {
	_, err := tx.Exec(ctx, `
    UPDATE payroll_runs
    SET total_amount = (
      SELECT COALESCE(SUM(net_pay), 0)
      FROM payroll_run_items
      WHERE run_id = $1 AND line_status = 'active'
    )
    WHERE id = $1
  `, runID)
	return mapConcurrency(err)
}

func scanLineItem(row pgx.Row) (EmployeeLineItem, error) {
	var item EmployeeLineItem
	var warningsJSON []byte
	err := row.Scan(&item.RunID, &item.EmployeeID, &item.BaseGross, &item.BaseDeductions,
		&item.AlreadyPaid, &item.EMIDue, &item.NetPay, &item.LineStatus, &warningsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeLineItem{}, ErrLineItemNotFound
	}
	if err != nil {
		return EmployeeLineItem{}, err
	}
	if len(warningsJSON) > 0 {
		if err := json.Unmarshal(warningsJSON, &item.Warnings); err != nil {
			item.Warnings = nil
		}
	}
	return item, nil
}
