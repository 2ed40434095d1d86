// Package service holds the client file use cases: client records,
// contracts with their invoices, payment receipts and lead erasure.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/clients/repository"
	"papex_backend/internal/clients/transport"
	"papex_backend/internal/email"
	"papex_backend/internal/events"
	leadsrepo "papex_backend/internal/leads/repository"
	"papex_backend/internal/pdf"
	"papex_backend/platform/apperr"
	"papex_backend/platform/logger"
	"papex_backend/platform/validator"
)

const (
	msgLeadNotFound     = "Lead introuvable avec cet ID."
	msgClientNotFound   = "Client introuvable."
	msgContractNotFound = "Contrat introuvable."
	msgNoEmail          = "Ce client n'a pas d'adresse e-mail."
	dateLayout          = "2006-01-02"
)

// Repository is what the service needs from storage.
type Repository interface {
	UpsertForLead(ctx context.Context, leadID int64, f repository.ClientFields) (repository.Client, bool, error)
	GetByID(ctx context.Context, id int64) (repository.Client, error)
	GetByLeadID(ctx context.Context, leadID int64) (repository.Client, error)
	List(ctx context.Context) ([]repository.Client, error)
	CreateDocument(ctx context.Context, clientID int64, name, url string) (repository.Document, error)
	ListDocuments(ctx context.Context, clientID int64) ([]repository.Document, error)

	CreateContract(ctx context.Context, p repository.CreateContractParams) (repository.Contract, error)
	SetContractFiles(ctx context.Context, id int64, contractURL, invoiceURL string) error
	GetContract(ctx context.Context, id int64) (repository.Contract, error)
	ListContracts(ctx context.Context, clientID int64) ([]repository.Contract, error)
	DeleteContract(ctx context.Context, id int64) error

	CreateReceipt(ctx context.Context, p repository.CreateReceiptParams) (repository.Receipt, error)
	SetReceiptURL(ctx context.Context, id int64, url string) error
	ListReceipts(ctx context.Context, clientID int64) ([]repository.Receipt, error)
	PaidOnContract(ctx context.Context, contractID int64) (int64, error)
	DeleteReceipt(ctx context.Context, id int64) error

	StoredFiles(ctx context.Context, leadID int64) (repository.StoredFiles, error)
	DeleteLeadCascade(ctx context.Context, leadID int64) error
}

// LeadReader loads the lead a client file belongs to.
type LeadReader interface {
	GetByID(ctx context.Context, id int64) (leadsrepo.Lead, error)
}

// FileStore is the subset of object storage used for client files.
type FileStore interface {
	UploadFile(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (storage.Object, error)
	DownloadFile(ctx context.Context, fileKey string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, fileKey string) error
	GenerateDownloadURL(ctx context.Context, fileKey string) (*storage.PresignedURL, error)
	Bucket() string
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// Documents renders the billing PDFs.
type Documents interface {
	Contract(data pdf.ContractData) ([]byte, error)
	Invoice(data pdf.InvoiceData) ([]byte, error)
	Receipt(data pdf.ReceiptData) ([]byte, error)
	ContractRef(id int64) string
	InvoiceRef(id int64) string
	ReceiptRef(id int64) string
}

// Mailer sends billing documents to the client.
type Mailer interface {
	SendContract(ctx context.Context, to email.Recipient, reference string, attachments ...email.Attachment) error
	SendReceipts(ctx context.Context, to email.Recipient, attachments ...email.Attachment) error
}

type Service struct {
	repo   Repository
	leads  LeadReader
	files  FileStore
	docs   Documents
	mailer Mailer
	bus    events.Bus
	val    *validator.Validator
	log    *logger.Logger
	now    func() time.Time
}

func New(repo Repository, leads LeadReader, files FileStore, docs Documents, mailer Mailer, bus events.Bus,
	val *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		leads:  leads,
		files:  files,
		docs:   docs,
		mailer: mailer,
		bus:    bus,
		val:    val,
		log:    log,
		now:    time.Now,
	}
}

// Upsert opens the client file of a lead or updates it. The account email
// goes out only when the file is created.
func (s *Service) Upsert(ctx context.Context, leadID int64, req transport.ClientRequest) (transport.ClientResponse, error) {
	if err := s.val.Check(req); err != nil {
		return transport.ClientResponse{}, err
	}
	lead, err := s.leads.GetByID(ctx, leadID)
	if errors.Is(err, leadsrepo.ErrNotFound) {
		return transport.ClientResponse{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return transport.ClientResponse{}, err
	}

	fields := repository.ClientFields{
		Address:     trimmed(req.Address),
		PostalCode:  trimmed(req.PostalCode),
		City:        trimmed(req.City),
		Nationality: trimmed(req.Nationality),
		Notes:       req.Notes,
	}
	if req.BirthDate != nil && *req.BirthDate != "" {
		d, err := time.Parse(dateLayout, *req.BirthDate)
		if err != nil {
			return transport.ClientResponse{}, apperr.Fields(apperr.FieldErrors{"birth_date": {"Date invalide."}})
		}
		fields.BirthDate = &d
	}

	client, inserted, err := s.repo.UpsertForLead(ctx, lead.ID, fields)
	if err != nil {
		return transport.ClientResponse{}, err
	}
	if inserted {
		s.log.Info("client file opened", "clientId", client.ID, "leadId", lead.ID)
		s.bus.Publish(ctx, events.ClientAccountCreated{
			BaseEvent: events.NewBaseEvent(),
			ClientID:  client.ID,
			Lead:      lead.Snapshot(),
		})
	}
	return s.detail(ctx, client, &lead)
}

func (s *Service) Get(ctx context.Context, id int64) (transport.ClientResponse, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ClientResponse{}, notFound(err, msgClientNotFound)
	}
	return s.detail(ctx, client, nil)
}

func (s *Service) GetByLead(ctx context.Context, leadID int64) (transport.ClientResponse, error) {
	client, err := s.repo.GetByLeadID(ctx, leadID)
	if err != nil {
		return transport.ClientResponse{}, notFound(err, msgClientNotFound)
	}
	return s.detail(ctx, client, nil)
}

// List returns the client records without their documents.
func (s *Service) List(ctx context.Context) ([]transport.ClientResponse, error) {
	clients, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out, nil
}

// UploadDocument stores a supporting document for the client.
func (s *Service) UploadDocument(ctx context.Context, clientID int64, name, fileName, contentType string, data []byte) (transport.DocumentResponse, error) {
	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return transport.DocumentResponse{}, notFound(err, msgClientNotFound)
	}

	fields := apperr.FieldErrors{}
	if err := s.files.ValidateContentType(contentType); err != nil {
		fields.Add("file", err.Error())
	}
	if err := s.files.ValidateFileSize(int64(len(data))); err != nil {
		fields.Add("file", err.Error())
	}
	if !fields.Empty() {
		return transport.DocumentResponse{}, apperr.Fields(fields)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = fileName
	}
	obj, err := s.files.UploadFile(ctx, storage.FolderDocuments, fileName, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return transport.DocumentResponse{}, fmt.Errorf("upload document: %w", err)
	}
	doc, err := s.repo.CreateDocument(ctx, client.ID, name, obj.URL)
	if err != nil {
		s.deleteObjects(context.WithoutCancel(ctx), obj.Key)
		return transport.DocumentResponse{}, err
	}
	s.fileUpdated(ctx, client, ChangeDocument)
	return s.toDocumentResponse(ctx, doc), nil
}

// Kinds of ClientFileUpdated changes.
const (
	ChangeContract = "contract"
	ChangeReceipt  = "receipt"
	ChangeDocument = "document"
)

func (s *Service) fileUpdated(ctx context.Context, client repository.Client, change string) {
	s.bus.Publish(ctx, events.ClientFileUpdated{
		BaseEvent: events.NewBaseEvent(),
		ClientID:  client.ID,
		LeadID:    client.LeadID,
		Change:    change,
	})
}

func (s *Service) detail(ctx context.Context, client repository.Client, lead *leadsrepo.Lead) (transport.ClientResponse, error) {
	if lead == nil {
		l, err := s.leads.GetByID(ctx, client.LeadID)
		if err != nil && !errors.Is(err, leadsrepo.ErrNotFound) {
			return transport.ClientResponse{}, err
		}
		if err == nil {
			lead = &l
		}
	}

	docs, err := s.repo.ListDocuments(ctx, client.ID)
	if err != nil {
		return transport.ClientResponse{}, err
	}
	contracts, err := s.repo.ListContracts(ctx, client.ID)
	if err != nil {
		return transport.ClientResponse{}, err
	}
	receipts, err := s.repo.ListReceipts(ctx, client.ID)
	if err != nil {
		return transport.ClientResponse{}, err
	}

	out := toClientResponse(client)
	if lead != nil {
		out.Lead = toLeadInfo(*lead)
	}
	out.Documents = make([]transport.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out.Documents = append(out.Documents, s.toDocumentResponse(ctx, d))
	}
	out.Contracts = make([]transport.ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		out.Contracts = append(out.Contracts, s.toContractResponse(ctx, c))
	}
	out.Receipts = make([]transport.ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		out.Receipts = append(out.Receipts, s.toReceiptResponse(ctx, r))
	}
	return out, nil
}

// clientAndLead loads a client with its lead, both required.
func (s *Service) clientAndLead(ctx context.Context, clientID int64) (repository.Client, leadsrepo.Lead, error) {
	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return repository.Client{}, leadsrepo.Lead{}, notFound(err, msgClientNotFound)
	}
	lead, err := s.leads.GetByID(ctx, client.LeadID)
	if err != nil {
		return repository.Client{}, leadsrepo.Lead{}, notFound(err, msgLeadNotFound)
	}
	return client, lead, nil
}

// presign turns a stored object URL into a temporary download link.
func (s *Service) presign(ctx context.Context, raw string) *string {
	if raw == "" {
		return nil
	}
	key, err := storage.ExtractBucketKey(raw, s.files.Bucket())
	if err != nil {
		s.log.Warn("stored url without key", "url", raw)
		return nil
	}
	signed, err := s.files.GenerateDownloadURL(ctx, key)
	if err != nil {
		s.log.Warn("presign failed", "key", key, "error", err)
		return nil
	}
	return &signed.URL
}

// download fetches a stored PDF for an email attachment.
func (s *Service) download(ctx context.Context, raw, fileName string) (email.Attachment, error) {
	key, err := storage.ExtractBucketKey(raw, s.files.Bucket())
	if err != nil {
		return email.Attachment{}, err
	}
	rc, err := s.files.DownloadFile(ctx, key)
	if err != nil {
		return email.Attachment{}, fmt.Errorf("download %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return email.Attachment{}, fmt.Errorf("read %s: %w", key, err)
	}
	return email.Attachment{Content: data, FileName: fileName, MIMEType: "application/pdf"}, nil
}

func (s *Service) uploadPDF(ctx context.Context, folder, fileName string, data []byte) (storage.Object, error) {
	return s.files.UploadFile(ctx, folder, fileName, "application/pdf", bytes.NewReader(data), int64(len(data)))
}

func (s *Service) deleteObjects(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.files.DeleteObject(ctx, key); err != nil {
			s.log.Warn("object cleanup failed", "key", key, "error", err)
		}
	}
}

func recipient(lead leadsrepo.Lead) (email.Recipient, error) {
	if lead.Email == nil || strings.TrimSpace(*lead.Email) == "" {
		return email.Recipient{}, apperr.BadRequest(msgNoEmail)
	}
	return email.Recipient{Email: *lead.Email, FirstName: lead.FirstName, LastName: lead.LastName}, nil
}

func party(client repository.Client, lead leadsrepo.Lead) pdf.Party {
	p := pdf.Party{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Phone:     lead.Phone,
		Address:   joinNonEmpty(", ", client.Address, strings.TrimSpace(client.PostalCode+" "+client.City)),
	}
	if lead.Email != nil {
		p.Email = *lead.Email
	}
	return p
}

func toCents(euros float64) int64 {
	return int64(math.Round(euros * 100))
}

func toEuros(cents int64) float64 {
	return float64(cents) / 100
}

func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, leadsrepo.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, sep)
}
