package service

import (
	"context"
	"fmt"

	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/clients/repository"
	"papex_backend/internal/clients/transport"
	"papex_backend/internal/pdf"
	"papex_backend/platform/apperr"

	"github.com/google/uuid"
)

// CreateContract records a contract, renders the contract and its invoice
// and stores both PDFs. Nothing is kept when a step fails.
func (s *Service) CreateContract(ctx context.Context, clientID int64, req transport.ContractRequest, author uuid.UUID) (transport.ContractResponse, error) {
	if err := s.val.Check(req); err != nil {
		return transport.ContractResponse{}, err
	}
	client, lead, err := s.clientAndLead(ctx, clientID)
	if err != nil {
		return transport.ContractResponse{}, err
	}

	params := repository.CreateContractParams{
		ClientID:        client.ID,
		Service:         req.Service,
		AmountDue:       toCents(req.AmountDue),
		DiscountPercent: req.DiscountPercent,
	}
	if req.RealAmountDue != nil {
		v := toCents(*req.RealAmountDue)
		params.RealAmountDue = &v
	}
	if author != uuid.Nil {
		params.CreatedBy = &author
	}

	contract, err := s.repo.CreateContract(ctx, params)
	if err != nil {
		return transport.ContractResponse{}, err
	}

	contractURL, invoiceURL, err := s.renderContractFiles(ctx, contract, party(client, lead))
	if err != nil {
		if delErr := s.repo.DeleteContract(context.WithoutCancel(ctx), contract.ID); delErr != nil {
			s.log.Error("contract rollback failed", "contractId", contract.ID, "error", delErr)
		}
		return transport.ContractResponse{}, err
	}
	contract.ContractURL, contract.InvoiceURL = contractURL, invoiceURL

	s.log.Info("contract created", "contractId", contract.ID, "clientId", client.ID)
	s.fileUpdated(ctx, client, ChangeContract)
	return s.toContractResponse(ctx, contract), nil
}

func (s *Service) renderContractFiles(ctx context.Context, c repository.Contract, client pdf.Party) (string, string, error) {
	contractPDF, err := s.docs.Contract(pdf.ContractData{
		ContractID:      c.ID,
		Client:          client,
		Service:         c.Service,
		AmountDue:       c.AmountDue,
		DiscountPercent: c.DiscountPercent,
		RealAmountDue:   c.RealAmountDue,
	})
	if err != nil {
		return "", "", fmt.Errorf("render contract: %w", err)
	}
	invoicePDF, err := s.docs.Invoice(pdf.InvoiceData{
		ContractID:      c.ID,
		Client:          client,
		Service:         c.Service,
		AmountDue:       c.AmountDue,
		DiscountPercent: c.DiscountPercent,
		Total:           pdf.FinalAmount(c.AmountDue, c.DiscountPercent, c.RealAmountDue),
	})
	if err != nil {
		return "", "", fmt.Errorf("render invoice: %w", err)
	}

	contractObj, err := s.uploadPDF(ctx, storage.FolderContracts, fmt.Sprintf("contrat-%s.pdf", s.docs.ContractRef(c.ID)), contractPDF)
	if err != nil {
		return "", "", fmt.Errorf("upload contract: %w", err)
	}
	invoiceObj, err := s.uploadPDF(ctx, storage.FolderInvoices, fmt.Sprintf("facture-%s.pdf", s.docs.InvoiceRef(c.ID)), invoicePDF)
	if err != nil {
		s.deleteObjects(context.WithoutCancel(ctx), contractObj.Key)
		return "", "", fmt.Errorf("upload invoice: %w", err)
	}
	if err := s.repo.SetContractFiles(ctx, c.ID, contractObj.URL, invoiceObj.URL); err != nil {
		s.deleteObjects(context.WithoutCancel(ctx), contractObj.Key, invoiceObj.Key)
		return "", "", err
	}
	return contractObj.URL, invoiceObj.URL, nil
}

func (s *Service) GetContract(ctx context.Context, id int64) (transport.ContractResponse, error) {
	c, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return transport.ContractResponse{}, notFound(err, msgContractNotFound)
	}
	return s.toContractResponse(ctx, c), nil
}

// SendContract emails the contract PDF to the client.
func (s *Service) SendContract(ctx context.Context, id int64) error {
	c, err := s.repo.GetContract(ctx, id)
	if err != nil {
		return notFound(err, msgContractNotFound)
	}
	_, lead, err := s.clientAndLead(ctx, c.ClientID)
	if err != nil {
		return err
	}
	to, err := recipient(lead)
	if err != nil {
		return err
	}
	if c.ContractURL == "" {
		return apperr.BadRequest("Le PDF du contrat n'est pas disponible.")
	}

	ref := s.docs.ContractRef(c.ID)
	att, err := s.download(ctx, c.ContractURL, fmt.Sprintf("contrat-%s.pdf", ref))
	if err != nil {
		return err
	}
	if err := s.mailer.SendContract(ctx, to, ref, att); err != nil {
		return fmt.Errorf("send contract: %w", err)
	}
	s.log.Info("contract emailed", "contractId", c.ID, "leadId", lead.ID)
	return nil
}
