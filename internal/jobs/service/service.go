// Package service holds the job offer use cases.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"papex_backend/internal/jobs/repository"
	"papex_backend/internal/jobs/transport"
	"papex_backend/platform/apperr"
	"papex_backend/platform/logger"
)

const msgJobNotFound = "Offre introuvable."

// Slugs that collide with static routes.
var reservedSlugs = map[string]bool{"all": true, "active": true}

// Repository is what the service needs from storage.
type Repository interface {
	Create(ctx context.Context, p repository.CreateJobParams) (repository.Job, error)
	Update(ctx context.Context, id int64, p repository.UpdateJobParams) (repository.Job, error)
	Toggle(ctx context.Context, id int64) (repository.Job, error)
	GetBySlug(ctx context.Context, slug string) (repository.Job, error)
	GetByID(ctx context.Context, id int64) (repository.Job, error)
	List(ctx context.Context, activeOnly bool) ([]repository.Job, error)
	Delete(ctx context.Context, id int64) error
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type Service struct {
	repo Repository
	log  *logger.Logger
}

func New(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, req transport.JobRequest) (transport.JobResponse, error) {
	if err := normalize(&req, true); err != nil {
		return transport.JobResponse{}, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	base := Slugify(*req.Title)
	if base == "" {
		base = "offre"
	}

	// The unique index arbitrates concurrent creations with the same title.
	for attempt := 0; attempt < 3; attempt++ {
		slug, err := s.freeSlug(ctx, base)
		if err != nil {
			return transport.JobResponse{}, err
		}
		job, err := s.repo.Create(ctx, repository.CreateJobParams{
			Slug:        slug,
			Title:       *req.Title,
			Location:    *req.Location,
			Type:        *req.Type,
			Description: *req.Description,
			Missions:    req.Missions,
			Profile:     req.Profile,
			Diploma:     req.Diploma,
			StartDate:   req.StartDate,
			IsActive:    active,
		})
		if errors.Is(err, repository.ErrSlugTaken) {
			continue
		}
		if err != nil {
			return transport.JobResponse{}, err
		}
		s.log.Info("job created", "slug", job.Slug)
		return toResponse(job), nil
	}
	return transport.JobResponse{}, apperr.Conflict("Une offre avec ce titre est en cours de création.")
}

// freeSlug returns base, or base-1, base-2... whichever is unused first.
func (s *Service) freeSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for n := 1; ; n++ {
		taken := reservedSlugs[slug]
		if !taken {
			var err error
			if taken, err = s.repo.SlugExists(ctx, slug); err != nil {
				return "", err
			}
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func (s *Service) Get(ctx context.Context, slug string, editor bool) (transport.JobResponse, error) {
	job, err := s.load(ctx, slug)
	if err != nil {
		return transport.JobResponse{}, err
	}
	if !job.IsActive && !editor {
		return transport.JobResponse{}, apperr.NotFound(msgJobNotFound)
	}
	return toResponse(job), nil
}

// List returns active offers to the public and every offer to editors.
func (s *Service) List(ctx context.Context, editor bool) ([]transport.JobSummary, error) {
	jobs, err := s.repo.List(ctx, !editor)
	if err != nil {
		return nil, err
	}
	return toSummaries(jobs), nil
}

func (s *Service) Active(ctx context.Context) (transport.ActiveJobsResponse, error) {
	jobs, err := s.repo.List(ctx, true)
	if err != nil {
		return transport.ActiveJobsResponse{}, err
	}
	return transport.ActiveJobsResponse{Count: len(jobs), Results: toSummaries(jobs)}, nil
}

func (s *Service) All(ctx context.Context) (transport.AllJobsResponse, error) {
	jobs, err := s.repo.List(ctx, false)
	if err != nil {
		return transport.AllJobsResponse{}, err
	}
	out := transport.AllJobsResponse{Count: len(jobs), Results: make([]transport.JobResponse, 0, len(jobs))}
	for _, j := range jobs {
		if j.IsActive {
			out.ActiveCount++
		} else {
			out.InactiveCount++
		}
		out.Results = append(out.Results, toResponse(j))
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, slug string, req transport.JobRequest) (transport.JobResponse, error) {
	if err := normalize(&req, false); err != nil {
		return transport.JobResponse{}, err
	}
	job, err := s.load(ctx, slug)
	if err != nil {
		return transport.JobResponse{}, err
	}

	updated, err := s.repo.Update(ctx, job.ID, repository.UpdateJobParams{
		Title:       req.Title,
		Location:    req.Location,
		Type:        req.Type,
		Description: req.Description,
		Missions:    req.Missions,
		Profile:     req.Profile,
		Diploma:     req.Diploma,
		StartDate:   req.StartDate,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return transport.JobResponse{}, mapNotFound(err)
	}
	return toResponse(updated), nil
}

// Delete removes the offer and returns its title.
func (s *Service) Delete(ctx context.Context, slug string) (string, error) {
	job, err := s.load(ctx, slug)
	if err != nil {
		return "", err
	}
	if err := s.repo.Delete(ctx, job.ID); err != nil {
		return "", mapNotFound(err)
	}
	s.log.Warn("job deleted", "slug", job.Slug)
	return job.Title, nil
}

func (s *Service) ToggleStatus(ctx context.Context, slug string) (transport.ToggleResponse, error) {
	job, err := s.load(ctx, slug)
	if err != nil {
		return transport.ToggleResponse{}, err
	}
	job, err = s.repo.Toggle(ctx, job.ID)
	if err != nil {
		return transport.ToggleResponse{}, mapNotFound(err)
	}

	state := "désactivée"
	if job.IsActive {
		state = "activée"
	}
	return transport.ToggleResponse{
		Detail:   fmt.Sprintf("L'offre « %s » a été %s.", job.Title, state),
		IsActive: job.IsActive,
	}, nil
}

// Resolve finds a job from an id or a slug, as sent by the application form.
func (s *Service) Resolve(ctx context.Context, ref string) (repository.Job, error) {
	if id, ok := parseID(ref); ok {
		job, err := s.repo.GetByID(ctx, id)
		if err == nil || !errors.Is(err, repository.ErrNotFound) {
			return job, err
		}
	}
	return s.repo.GetBySlug(ctx, ref)
}

func (s *Service) load(ctx context.Context, slug string) (repository.Job, error) {
	job, err := s.repo.GetBySlug(ctx, slug)
	return job, mapNotFound(err)
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgJobNotFound)
	}
	return err
}

func parseID(ref string) (int64, bool) {
	id, err := strconv.ParseInt(ref, 10, 64)
	return id, err == nil && id > 0
}

func toResponse(j repository.Job) transport.JobResponse {
	return transport.JobResponse{
		ID:          j.ID,
		Slug:        j.Slug,
		Title:       j.Title,
		Location:    j.Location,
		Type:        j.Type,
		Description: j.Description,
		Missions:    nonNil(j.Missions),
		Profile:     nonNil(j.Profile),
		Diploma:     deref(j.Diploma),
		StartDate:   deref(j.StartDate),
		IsActive:    j.IsActive,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func toSummaries(jobs []repository.Job) []transport.JobSummary {
	out := make([]transport.JobSummary, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, transport.JobSummary{
			ID:          j.ID,
			Slug:        j.Slug,
			Title:       j.Title,
			Location:    j.Location,
			Type:        j.Type,
			Description: j.Description,
			IsActive:    j.IsActive,
			CreatedAt:   j.CreatedAt,
		})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
