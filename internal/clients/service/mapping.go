package service

import (
	"context"

	"papex_backend/internal/clients/repository"
	"papex_backend/internal/clients/transport"
	leadsrepo "papex_backend/internal/leads/repository"
	"papex_backend/internal/pdf"
)

func toClientResponse(c repository.Client) transport.ClientResponse {
	out := transport.ClientResponse{
		ID:          c.ID,
		LeadID:      c.LeadID,
		Address:     c.Address,
		PostalCode:  c.PostalCode,
		City:        c.City,
		Nationality: c.Nationality,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.BirthDate != nil {
		d := c.BirthDate.Format(dateLayout)
		out.BirthDate = &d
	}
	return out
}

func toLeadInfo(l leadsrepo.Lead) *transport.LeadInfo {
	info := &transport.LeadInfo{
		ID:        l.ID,
		FirstName: l.FirstName,
		LastName:  l.LastName,
		Phone:     l.Phone,
		Status:    l.Status,
	}
	if l.Email != nil {
		info.Email = *l.Email
	}
	return info
}

func (s *Service) toDocumentResponse(ctx context.Context, d repository.Document) transport.DocumentResponse {
	return transport.DocumentResponse{
		ID:        d.ID,
		Name:      d.Name,
		URL:       s.presign(ctx, d.FileURL),
		CreatedAt: d.CreatedAt,
	}
}

func (s *Service) toContractResponse(ctx context.Context, c repository.Contract) transport.ContractResponse {
	out := transport.ContractResponse{
		ID:              c.ID,
		ClientID:        c.ClientID,
		Reference:       s.docs.ContractRef(c.ID),
		Service:         c.Service,
		AmountDue:       toEuros(c.AmountDue),
		DiscountPercent: c.DiscountPercent,
		FinalAmount:     toEuros(pdf.FinalAmount(c.AmountDue, c.DiscountPercent, c.RealAmountDue)),
		ContractURL:     s.presign(ctx, c.ContractURL),
		InvoiceURL:      s.presign(ctx, c.InvoiceURL),
		CreatedAt:       c.CreatedAt,
	}
	if c.RealAmountDue != nil {
		v := toEuros(*c.RealAmountDue)
		out.RealAmountDue = &v
	}
	return out
}

func (s *Service) toReceiptResponse(ctx context.Context, r repository.Receipt) transport.ReceiptResponse {
	return transport.ReceiptResponse{
		ID:          r.ID,
		ClientID:    r.ClientID,
		ContractID:  r.ContractID,
		Reference:   s.docs.ReceiptRef(r.ID),
		Amount:      toEuros(r.Amount),
		Mode:        r.Mode,
		ModeDisplay: transport.ModeLabel(r.Mode),
		PaymentDate: r.PaymentDate.Format(dateLayout),
		ReceiptURL:  s.presign(ctx, r.ReceiptURL),
		CreatedAt:   r.CreatedAt,
	}
}
