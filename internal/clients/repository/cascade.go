package repository

import (
	"context"
	"errors"

	"papex_backend/platform/db"

	"github.com/jackc/pgx/v5"
)

// StoredFiles lists the object URLs attached to a lead's client file.
type StoredFiles struct {
	ClientID  *int64
	Documents []string
	Contracts []string
	Invoices  []string
	Receipts  []string
}

const storedFilesQuery = `
	SELECT 'document', d.file_url FROM client_documents d JOIN clients c ON c.id = d.client_id
	WHERE c.lead_id = $1 AND d.file_url <> ''
	UNION ALL
	SELECT 'contract', k.contract_url FROM contracts k JOIN clients c ON c.id = k.client_id
	WHERE c.lead_id = $1 AND k.contract_url <> ''
	UNION ALL
	SELECT 'invoice', k.invoice_url FROM contracts k JOIN clients c ON c.id = k.client_id
	WHERE c.lead_id = $1 AND k.invoice_url <> ''
	UNION ALL
	SELECT 'receipt', r.receipt_url FROM receipts r JOIN clients c ON c.id = r.client_id
	WHERE c.lead_id = $1 AND r.receipt_url <> ''`


func (r *Repository) StoredFiles(ctx context.Context, leadID int64) (StoredFiles, error) {
	var files StoredFiles
	client, err := r.GetByLeadID(ctx, leadID)
	if errors.Is(err, ErrNotFound) {
		return files, nil
	}
	if err != nil {
		return files, err
	}
	files.ClientID = &client.ID

	rows, err := r.pool.Query(ctx, storedFilesQuery, leadID)
	if err != nil {
		return files, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind, url string
		if err := rows.Scan(&kind, &url); err != nil {
			return files, err
		}
		switch kind {
		case "document":
			files.Documents = append(files.Documents, url)
		case "contract":
			files.Contracts = append(files.Contracts, url)
		case "invoice":
			files.Invoices = append(files.Invoices, url)
		case "receipt":
			files.Receipts = append(files.Receipts, url)
		}
	}
	return files, rows.Err()
}

// DeleteLeadCascade removes a lead with its client file, documents,
// contracts and receipts in one transaction.
func (r *Repository) DeleteLeadCascade(ctx context.Context, leadID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM leads WHERE id = $1 FOR UPDATE`, leadID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		for _, stmt := range []string{
			`DELETE FROM receipts WHERE client_id IN (SELECT id FROM clients WHERE lead_id = $1)`,
			`DELETE FROM contracts WHERE client_id IN (SELECT id FROM clients WHERE lead_id = $1)`,
			`DELETE FROM client_documents WHERE client_id IN (SELECT id FROM clients WHERE lead_id = $1)`,
			`DELETE FROM clients WHERE lead_id = $1`,
			`DELETE FROM leads WHERE id = $1`,
		} {
			if _, err := tx.Exec(ctx, stmt, leadID); err != nil {
				return err
			}
		}
		return nil
	})
}
