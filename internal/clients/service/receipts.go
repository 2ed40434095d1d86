package service

import (
	"context"
	"fmt"
	"time"

	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/clients/repository"
	"papex_backend/internal/clients/transport"
	"papex_backend/internal/email"
	"papex_backend/internal/pdf"
	"papex_backend/platform/apperr"

	"golang.org/x/sync/errgroup"
)

const maxParallelDownloads = 4

// CreateReceipt records a payment and stores its receipt PDF. A receipt tied
// to a contract shows what was paid before and what remains.
func (s *Service) CreateReceipt(ctx context.Context, clientID int64, req transport.ReceiptRequest) (transport.ReceiptResponse, error) {
	if err := s.val.Check(req); err != nil {
		return transport.ReceiptResponse{}, err
	}
	paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		return transport.ReceiptResponse{}, apperr.Fields(apperr.FieldErrors{"payment_date": {"Date invalide."}})
	}
	client, lead, err := s.clientAndLead(ctx, clientID)
	if err != nil {
		return transport.ReceiptResponse{}, err
	}

	var contract *repository.Contract
	if req.ContractID != nil {
		c, err := s.repo.GetContract(ctx, *req.ContractID)
		if err != nil {
			return transport.ReceiptResponse{}, notFound(err, msgContractNotFound)
		}
		if c.ClientID != client.ID {
			return transport.ReceiptResponse{}, apperr.NotFound(msgContractNotFound)
		}
		contract = &c
	}

	receipt, err := s.repo.CreateReceipt(ctx, repository.CreateReceiptParams{
		ClientID:    client.ID,
		ContractID:  req.ContractID,
		Amount:      toCents(req.Amount),
		Mode:        req.Mode,
		PaymentDate: paymentDate,
	})
	if err != nil {
		return transport.ReceiptResponse{}, err
	}

	url, err := s.renderReceipt(ctx, receipt, contract, party(client, lead))
	if err != nil {
		if delErr := s.repo.DeleteReceipt(context.WithoutCancel(ctx), receipt.ID); delErr != nil {
			s.log.Error("receipt rollback failed", "receiptId", receipt.ID, "error", delErr)
		}
		return transport.ReceiptResponse{}, err
	}
	receipt.ReceiptURL = url

	s.log.Info("receipt created", "receiptId", receipt.ID, "clientId", client.ID)
	s.fileUpdated(ctx, client, ChangeReceipt)
	return s.toReceiptResponse(ctx, receipt), nil
}

func (s *Service) renderReceipt(ctx context.Context, r repository.Receipt, contract *repository.Contract, client pdf.Party) (string, error) {
	data := pdf.ReceiptData{
		ReceiptID:   r.ID,
		Client:      client,
		Mode:        transport.ModeLabel(r.Mode),
		PaymentDate: &r.PaymentDate,
		Totals:      pdf.ComputeReceipt(r.Amount, nil, r.Amount),
	}
	if contract != nil {
		paid, err := s.repo.PaidOnContract(ctx, contract.ID)
		if err != nil {
			return "", err
		}
		total := pdf.FinalAmount(contract.AmountDue, contract.DiscountPercent, contract.RealAmountDue)
		data.Service = contract.Service
		data.Totals = pdf.ComputeReceipt(r.Amount, &total, paid)
	}

	content, err := s.docs.Receipt(data)
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	obj, err := s.uploadPDF(ctx, storage.FolderReceipts, fmt.Sprintf("recu-%s.pdf", s.docs.ReceiptRef(r.ID)), content)
	if err != nil {
		return "", fmt.Errorf("upload receipt: %w", err)
	}
	if err := s.repo.SetReceiptURL(ctx, r.ID, obj.URL); err != nil {
		s.deleteObjects(context.WithoutCancel(ctx), obj.Key)
		return "", err
	}
	return obj.URL, nil
}

// SendReceipts emails every stored receipt of the client in one message and
// returns how many were attached.
func (s *Service) SendReceipts(ctx context.Context, clientID int64) (int, error) {
	client, lead, err := s.clientAndLead(ctx, clientID)
	if err != nil {
		return 0, err
	}
	to, err := recipient(lead)
	if err != nil {
		return 0, err
	}
	receipts, err := s.repo.ListReceipts(ctx, client.ID)
	if err != nil {
		return 0, err
	}

	stored := receipts[:0:0]
	for _, r := range receipts {
		if r.ReceiptURL != "" {
			stored = append(stored, r)
		}
	}
	if len(stored) == 0 {
		return 0, apperr.BadRequest("Aucun reçu à envoyer.")
	}

	attachments := make([]email.Attachment, len(stored))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for i, r := range stored {
		g.Go(func() error {
			att, err := s.download(gctx, r.ReceiptURL, fmt.Sprintf("recu-%s.pdf", s.docs.ReceiptRef(r.ID)))
			if err != nil {
				return err
			}
			attachments[i] = att
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := s.mailer.SendReceipts(ctx, to, attachments...); err != nil {
		return 0, fmt.Errorf("send receipts: %w", err)
	}
	s.log.Info("receipts emailed", "clientId", client.ID, "count", len(attachments))
	return len(attachments), nil
}
