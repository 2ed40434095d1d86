// Package service holds the job application use cases.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/candidates/repository"
	"papex_backend/internal/candidates/transport"
	jobsrepo "papex_backend/internal/jobs/repository"
	jobsservice "papex_backend/internal/jobs/service"
	"papex_backend/internal/pdf"
	"papex_backend/platform/apperr"
	"papex_backend/platform/logger"
	"papex_backend/platform/sanitize"
	"papex_backend/platform/validator"
)

const (
	msgJobRequired      = "L’offre d’emploi est requise"
	msgJobUnknown       = "Offre d’emploi inexistante"
	msgCVRequired       = "Le CV est requis"
	msgCVNotPDF         = "Le CV doit être un fichier PDF valide."
	msgCandidateUnknown = "Candidature introuvable."
)

// Repository is what the service needs from storage.
type Repository interface {
	Create(ctx context.Context, p repository.CreateParams) (int64, error)
	SetCV(ctx context.Context, id int64, url string) error
	GetByID(ctx context.Context, id int64) (repository.Candidate, error)
	List(ctx context.Context, f repository.ListFilter) ([]repository.Candidate, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// JobResolver finds the offer an application targets, by id or slug.
type JobResolver interface {
	Resolve(ctx context.Context, ref string) (jobsrepo.Job, error)
}

// FileStore is the subset of object storage used for CVs.
type FileStore interface {
	UploadFile(ctx context.Context, folder, fileName, contentType string, reader io.Reader, size int64) (storage.Object, error)
	DeleteObject(ctx context.Context, fileKey string) error
	GenerateDownloadURL(ctx context.Context, fileKey string) (*storage.PresignedURL, error)
	Bucket() string
	ValidateFileSize(sizeBytes int64) error
}

// CV is an uploaded resume held in memory.
type CV struct {
	FileName string
	Data     []byte
}

type Service struct {
	repo  Repository
	jobs  JobResolver
	files FileStore
	val   *validator.Validator
	log   *logger.Logger
}

func New(repo Repository, jobs JobResolver, files FileStore, val *validator.Validator, log *logger.Logger) *Service {
	return &Service{repo: repo, jobs: jobs, files: files, val: val, log: log}
}

// Apply records an application and stores its CV. The row is removed again
// when the upload fails.
func (s *Service) Apply(ctx context.Context, req transport.ApplyRequest, cv *CV) (transport.CandidateResponse, error) {
	req.Job = strings.TrimSpace(req.Job)
	if req.Job == "" {
		return transport.CandidateResponse{}, apperr.BadRequest(msgJobRequired)
	}
	if cv == nil || len(cv.Data) == 0 {
		return transport.CandidateResponse{}, apperr.BadRequest(msgCVRequired)
	}

	job, err := s.jobs.Resolve(ctx, req.Job)
	if errors.Is(err, jobsrepo.ErrNotFound) {
		return transport.CandidateResponse{}, apperr.NotFound(msgJobUnknown)
	}
	if err != nil {
		return transport.CandidateResponse{}, err
	}

	req.FirstName = sanitize.Text(req.FirstName)
	req.LastName = sanitize.Text(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.val.Check(req); err != nil {
		return transport.CandidateResponse{}, err
	}
	if err := s.checkCV(cv); err != nil {
		return transport.CandidateResponse{}, err
	}

	id, err := s.repo.Create(ctx, repository.CreateParams{
		JobID:     job.ID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		return transport.CandidateResponse{}, err
	}

	obj, err := s.files.UploadFile(ctx, storage.FolderCVs, cvFileName(req, id), "application/pdf",
		bytes.NewReader(cv.Data), int64(len(cv.Data)))
	if err != nil {
		s.rollback(ctx, id, "")
		return transport.CandidateResponse{}, apperr.Wrap(apperr.KindInternal,
			fmt.Sprintf("Erreur lors de l’upload du CV : %v", err), err)
	}
	if err := s.repo.SetCV(ctx, id, obj.URL); err != nil {
		s.rollback(ctx, id, obj.Key)
		return transport.CandidateResponse{}, err
	}

	s.log.Info("application received", "candidateId", id, "job", job.Slug)
	return s.Get(ctx, id)
}

func (s *Service) checkCV(cv *CV) error {
	fields := apperr.FieldErrors{}
	if err := s.files.ValidateFileSize(int64(len(cv.Data))); err != nil {
		fields.Add("cv", err.Error())
	} else if _, err := pdf.PageCount(cv.Data); err != nil {
		fields.Add("cv", msgCVNotPDF)
	}
	if !fields.Empty() {
		return apperr.Fields(fields)
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, id int64, key string) {
	ctx = context.WithoutCancel(ctx)
	if key != "" {
		if err := s.files.DeleteObject(ctx, key); err != nil {
			s.log.Warn("cv cleanup failed", "key", key, "error", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("application rollback failed", "candidateId", id, "error", err)
	}
}

func (s *Service) Get(ctx context.Context, id int64) (transport.CandidateResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CandidateResponse{}, mapNotFound(err)
	}
	return s.toResponse(ctx, c), nil
}

func (s *Service) List(ctx context.Context, req transport.ListRequest) ([]transport.CandidateResponse, error) {
	if err := s.val.Check(req); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, repository.ListFilter{JobSlug: strings.TrimSpace(req.Job), Status: req.Status})
	if err != nil {
		return nil, err
	}
	out := make([]transport.CandidateResponse, 0, len(rows))
	for _, c := range rows {
		out = append(out, s.toResponse(ctx, c))
	}
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, req transport.UpdateStatusRequest) (transport.CandidateResponse, error) {
	if err := s.val.Check(req); err != nil {
		return transport.CandidateResponse{}, err
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return transport.CandidateResponse{}, mapNotFound(err)
	}
	return s.Get(ctx, id)
}

// Delete removes the application and its CV object. A missing object does
// not block the deletion.
func (s *Service) Delete(ctx context.Context, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapNotFound(err)
	}
	if c.CVURL != "" {
		key, err := storage.ExtractBucketKey(c.CVURL, s.files.Bucket())
		if err == nil {
			err = s.files.DeleteObject(ctx, key)
		}
		if err != nil {
			s.log.Warn("cv delete failed", "candidateId", id, "error", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}
	s.log.Info("application deleted", "candidateId", id)
	return nil
}

// presign turns the stored CV URL into a temporary download link.
func (s *Service) presign(ctx context.Context, raw string) *string {
	if raw == "" {
		return nil
	}
	key, err := storage.ExtractBucketKey(raw, s.files.Bucket())
	if err != nil {
		s.log.Warn("cv url without key", "url", raw)
		return nil
	}
	signed, err := s.files.GenerateDownloadURL(ctx, key)
	if err != nil {
		s.log.Warn("cv presign failed", "key", key, "error", err)
		return nil
	}
	return &signed.URL
}

func (s *Service) toResponse(ctx context.Context, c repository.Candidate) transport.CandidateResponse {
	return transport.CandidateResponse{
		ID:            c.ID,
		Job:           c.JobID,
		JobSlug:       c.JobSlug,
		JobTitle:      c.JobTitle,
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		CVURL:         s.presign(ctx, c.CVURL),
		Status:        c.Status,
		StatusDisplay: transport.StatusLabel(c.Status),
		CreatedAt:     c.CreatedAt,
	}
}

func cvFileName(req transport.ApplyRequest, id int64) string {
	name := jobsservice.Slugify(req.LastName + " " + req.FirstName)
	if name == "" {
		name = "candidat"
	}
	return fmt.Sprintf("cv-%d-%s.pdf", id, name)
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgCandidateUnknown)
	}
	return err
}
