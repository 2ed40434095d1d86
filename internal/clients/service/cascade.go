package service

import (
	"context"
	"errors"

	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/clients/repository"
	"papex_backend/internal/clients/transport"
	"papex_backend/internal/events"
	leadsrepo "papex_backend/internal/leads/repository"
	"papex_backend/platform/apperr"
)

const msgCascadeLeadNotFound = "Lead introuvable."

// CascadeDeleteByLead erases a lead: stored files first, then the lead with
// its client file in one transaction. Files that cannot be removed are
// logged and left out of the stats.
func (s *Service) CascadeDeleteByLead(ctx context.Context, leadID int64) (transport.CascadeResponse, error) {
	if _, err := s.leads.GetByID(ctx, leadID); err != nil {
		if errors.Is(err, leadsrepo.ErrNotFound) {
			return transport.CascadeResponse{}, apperr.NotFound(msgCascadeLeadNotFound)
		}
		return transport.CascadeResponse{}, err
	}

	files, err := s.repo.StoredFiles(ctx, leadID)
	if err != nil {
		return transport.CascadeResponse{}, err
	}

	var stats transport.CascadeStats
	if files.ClientID == nil {
		s.log.Warn("no client file for lead", "leadId", leadID)
	} else {
		stats.Documents = s.deleteStored(ctx, files.Documents)
		stats.Receipts = s.deleteStored(ctx, files.Receipts)
		stats.Contracts = s.deleteStored(ctx, files.Contracts) + s.deleteStored(ctx, files.Invoices)
	}
	stats.Total = stats.Documents + stats.Contracts + stats.Receipts + stats.Clients

	if err := s.repo.DeleteLeadCascade(ctx, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.CascadeResponse{}, apperr.NotFound(msgCascadeLeadNotFound)
		}
		return transport.CascadeResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadDeleted{BaseEvent: events.NewBaseEvent(), LeadID: leadID})
	s.log.Warn("lead erased", "leadId", leadID, "files", stats.Total,
		"documents", stats.Documents, "contracts", stats.Contracts, "receipts", stats.Receipts)
	return transport.CascadeResponse{
		Detail: "Lead et données associées supprimés.",
		LeadID: leadID,
		Stats:  stats,
	}, nil
}

// deleteStored removes the objects behind urls and returns how many went.
func (s *Service) deleteStored(ctx context.Context, urls []string) int {
	deleted := 0
	for _, raw := range urls {
		key, err := storage.ExtractBucketKey(raw, s.files.Bucket())
		if err != nil {
			s.log.Warn("stored url without key", "url", raw)
			continue
		}
		if err := s.files.DeleteObject(ctx, key); err != nil {
			s.log.Error("object delete failed", "key", key, "error", err)
			continue
		}
		deleted++
	}
	return deleted
}
