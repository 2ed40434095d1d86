package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Contract struct {
	ID              int64
	ClientID        int64
	Service         string
	AmountDue       int64
	DiscountPercent float64
	RealAmountDue   *int64
	ContractURL     string
	InvoiceURL      string
	CreatedBy       *uuid.UUID
	CreatedAt       time.Time
}

type CreateContractParams struct {
	ClientID        int64
	Service         string
	AmountDue       int64
	DiscountPercent float64
	RealAmountDue   *int64
	CreatedBy       *uuid.UUID
}

type Receipt struct {
	ID          int64
	ClientID    int64
	ContractID  *int64
	Amount      int64
	Mode        string
	PaymentDate time.Time
	ReceiptURL  string
	CreatedAt   time.Time
}

type CreateReceiptParams struct {
	ClientID    int64
	ContractID  *int64
	Amount      int64
	Mode        string
	PaymentDate time.Time
}

const contractColumns = `id, client_id, service, amount_due_cents, discount_percent, real_amount_due_cents,
	contract_url, invoice_url, created_by, created_at`

const receiptColumns = `id, client_id, contract_id, amount_cents, mode, payment_date, receipt_url, created_at`

func scanContract(row pgx.Row) (Contract, error) {
	var c Contract
	err := row.Scan(&c.ID, &c.ClientID, &c.Service, &c.AmountDue, &c.DiscountPercent, &c.RealAmountDue,
		&c.ContractURL, &c.InvoiceURL, &c.CreatedBy, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contract{}, ErrNotFound
	}
	return c, err
}

func scanReceipt(row pgx.Row) (Receipt, error) {
	var r Receipt
	err := row.Scan(&r.ID, &r.ClientID, &r.ContractID, &r.Amount, &r.Mode, &r.PaymentDate, &r.ReceiptURL, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Receipt{}, ErrNotFound
	}
	return r, err
}

func (r *Repository) CreateContract(ctx context.Context, p CreateContractParams) (Contract, error) {
	return scanContract(r.pool.QueryRow(ctx, `
		INSERT INTO contracts (client_id, service, amount_due_cents, discount_percent, real_amount_due_cents, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+contractColumns,
		p.ClientID, p.Service, p.AmountDue, p.DiscountPercent, p.RealAmountDue, p.CreatedBy))
}

func (r *Repository) SetContractFiles(ctx context.Context, id int64, contractURL, invoiceURL string) error {
	return r.execOne(ctx, `UPDATE contracts SET contract_url = $2, invoice_url = $3 WHERE id = $1`,
		id, contractURL, invoiceURL)
}

func (r *Repository) GetContract(ctx context.Context, id int64) (Contract, error) {
	return scanContract(r.pool.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
}

func (r *Repository) ListContracts(ctx context.Context, clientID int64) ([]Contract, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+contractColumns+` FROM contracts
		WHERE client_id = $1 ORDER BY created_at, id`, clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Contract, error) { return scanContract(row) })
}

func (r *Repository) DeleteContract(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM contracts WHERE id = $1`, id)
}

func (r *Repository) CreateReceipt(ctx context.Context, p CreateReceiptParams) (Receipt, error) {
	return scanReceipt(r.pool.QueryRow(ctx, `
		INSERT INTO receipts (client_id, contract_id, amount_cents, mode, payment_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+receiptColumns,
		p.ClientID, p.ContractID, p.Amount, p.Mode, p.PaymentDate))
}

func (r *Repository) SetReceiptURL(ctx context.Context, id int64, url string) error {
	return r.execOne(ctx, `UPDATE receipts SET receipt_url = $2 WHERE id = $1`, id, url)
}

func (r *Repository) ListReceipts(ctx context.Context, clientID int64) ([]Receipt, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+receiptColumns+` FROM receipts
		WHERE client_id = $1 ORDER BY payment_date, id`, clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Receipt, error) { return scanReceipt(row) })
}

// PaidOnContract sums every receipt recorded against a contract.
func (r *Repository) PaidOnContract(ctx context.Context, contractID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount_cents), 0)::bigint FROM receipts WHERE contract_id = $1`,
		contractID).Scan(&total)
	return total, err
}

func (r *Repository) DeleteReceipt(ctx context.Context, id int64) error {
	return r.execOne(ctx, `DELETE FROM receipts WHERE id = $1`, id)
}

func (r *Repository) execOne(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
