package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"papex_backend/internal/adapters/storage"
	"papex_backend/internal/candidates/repository"
	"papex_backend/internal/candidates/transport"
	jobsrepo "papex_backend/internal/jobs/repository"
	"papex_backend/internal/pdf"
	"papex_backend/platform/apperr"
	"papex_backend/platform/branding"
	"papex_backend/platform/logger"
	"papex_backend/platform/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	rows    map[int64]repository.Candidate
	nextID  int64
	deleted []int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]repository.Candidate{}}
}

func (f *fakeRepo) Create(_ context.Context, p repository.CreateParams) (int64, error) {
	f.nextID++
	f.rows[f.nextID] = repository.Candidate{
		ID: f.nextID, JobID: p.JobID, JobSlug: "juriste", FirstName: p.FirstName, LastName: p.LastName,
		Email: p.Email, Status: transport.StatusPending, CreatedAt: time.Now(),
	}
	return f.nextID, nil
}

func (f *fakeRepo) SetCV(_ context.Context, id int64, url string) error {
	c, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.CVURL = url
	f.rows[id] = c
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (repository.Candidate, error) {
	c, ok := f.rows[id]
	if !ok {
		return repository.Candidate{}, repository.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) List(_ context.Context, filter repository.ListFilter) ([]repository.Candidate, error) {
	var out []repository.Candidate
	for _, c := range f.rows {
		if filter.Status == "" || c.Status == filter.Status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	c, ok := f.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	f.rows[id] = c
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeJobs struct{}

func (fakeJobs) Resolve(_ context.Context, ref string) (jobsrepo.Job, error) {
	if ref == "juriste" || ref == "3" {
		return jobsrepo.Job{ID: 3, Slug: "juriste", IsActive: true}, nil
	}
	return jobsrepo.Job{}, jobsrepo.ErrNotFound
}

type fakeStore struct {
	uploadErr error
	uploaded  []string
	deleted   []string
}

func (f *fakeStore) UploadFile(_ context.Context, folder, fileName, _ string, r io.Reader, _ int64) (storage.Object, error) {
	if f.uploadErr != nil {
		return storage.Object{}, f.uploadErr
	}
	_, _ = io.Copy(io.Discard, r)
	key := folder + "/" + fileName
	f.uploaded = append(f.uploaded, key)
	return storage.Object{Key: key, URL: "http://minio:9000/papex/" + key}, nil
}

func (f *fakeStore) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStore) GenerateDownloadURL(_ context.Context, key string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "http://signed/" + key + "?sig=1", FileKey: key}, nil
}

func (f *fakeStore) Bucket() string { return "papex" }

func (f *fakeStore) ValidateFileSize(size int64) error {
	if size > 1<<20 {
		return errors.New("fichier trop volumineux")
	}
	return nil
}

func samplePDF(t *testing.T) []byte {
	t.Helper()
	data, err := pdf.NewGenerator(branding.Default()).Receipt(pdf.ReceiptData{
		ReceiptID: 1,
		Client:    pdf.Party{FirstName: "Jean", LastName: "Dupont"},
		Service:   "Titre de séjour",
		Mode:      "Espèces",
		Totals:    pdf.ComputeReceipt(5000, nil, 0),
	})
	require.NoError(t, err)
	return data
}

func newTestService(repo *fakeRepo, store *fakeStore) *Service {
	return New(repo, fakeJobs{}, store, validator.New(), logger.NewWithWriter("production", io.Discard))
}

func validApplication() transport.ApplyRequest {
	return transport.ApplyRequest{Job: "juriste", FirstName: " Jean ", LastName: "Dupont", Email: "jean@example.com"}
}

func TestApplyStoresCVAndReturnsSignedURL(t *testing.T) {
	repo, store := newFakeRepo(), &fakeStore{}
	svc := newTestService(repo, store)

	out, err := svc.Apply(context.Background(), validApplication(), &CV{FileName: "cv.pdf", Data: samplePDF(t)})
	require.NoError(t, err)

	assert.Equal(t, "Jean", out.FirstName)
	assert.Equal(t, int64(3), out.Job)
	assert.Equal(t, "pending", out.Status)
	require.Len(t, store.uploaded, 1)
	assert.Equal(t, "cvs/cv-1-dupont-jean.pdf", store.uploaded[0])
	require.NotNil(t, out.CVURL)
	assert.Equal(t, "http://signed/cvs/cv-1-dupont-jean.pdf?sig=1", *out.CVURL)
	assert.Equal(t, "http://minio:9000/papex/cvs/cv-1-dupont-jean.pdf", repo.rows[1].CVURL)
}

func TestApplyRequiresJobAndCV(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeStore{})
	ctx := context.Background()

	req := validApplication()
	req.Job = " "
	_, err := svc.Apply(ctx, req, &CV{Data: samplePDF(t)})
	requireMessage(t, err, apperr.KindBadRequest, msgJobRequired)

	_, err = svc.Apply(ctx, validApplication(), nil)
	requireMessage(t, err, apperr.KindBadRequest, msgCVRequired)

	req = validApplication()
	req.Job = "comptable"
	_, err = svc.Apply(ctx, req, &CV{Data: samplePDF(t)})
	requireMessage(t, err, apperr.KindNotFound, msgJobUnknown)
}

func TestApplyValidatesFields(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStore{})

	req := validApplication()
	req.FirstName = "J"
	req.Email = "not-an-email"
	_, err := svc.Apply(context.Background(), req, &CV{Data: samplePDF(t)})
	require.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
	assert.Empty(t, repo.rows)
}

func TestApplyRejectsNonPDF(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStore{})

	_, err := svc.Apply(context.Background(), validApplication(), &CV{Data: []byte("plain text resume")})
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.FieldErrors{"cv": {msgCVNotPDF}}, appErr.Details)
	assert.Empty(t, repo.rows)
}

func TestApplyUploadFailureRemovesRow(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStore{uploadErr: errors.New("connection refused")})

	_, err := svc.Apply(context.Background(), validApplication(), &CV{Data: samplePDF(t)})
	requireMessage(t, err, apperr.KindInternal, "Erreur lors de l’upload du CV : connection refused")
	assert.Empty(t, repo.rows)
	assert.Equal(t, []int64{1}, repo.deleted)
}

func TestUpdateStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStore{})
	_, err := svc.Apply(context.Background(), validApplication(), &CV{Data: samplePDF(t)})
	require.NoError(t, err)

	out, err := svc.UpdateStatus(context.Background(), 1, transport.UpdateStatusRequest{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, "Validée", out.StatusDisplay)

	_, err = svc.UpdateStatus(context.Background(), 1, transport.UpdateStatusRequest{Status: "hired"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.UpdateStatus(context.Background(), 42, transport.UpdateStatusRequest{Status: "rejected"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListFiltersByStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeStore{})
	for i := 0; i < 2; i++ {
		_, err := svc.Apply(context.Background(), validApplication(), &CV{Data: samplePDF(t)})
		require.NoError(t, err)
	}
	_, _ = svc.UpdateStatus(context.Background(), 2, transport.UpdateStatusRequest{Status: "rejected"})

	out, err := svc.List(context.Background(), transport.ListRequest{Status: "rejected"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].ID)

	_, err = svc.List(context.Background(), transport.ListRequest{Status: "unknown"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDeleteRemovesCVObject(t *testing.T) {
	repo, store := newFakeRepo(), &fakeStore{}
	svc := newTestService(repo, store)
	_, err := svc.Apply(context.Background(), validApplication(), &CV{Data: samplePDF(t)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.Equal(t, []string{"cvs/cv-1-dupont-jean.pdf"}, store.deleted)
	assert.Empty(t, repo.rows)

	assert.True(t, apperr.Is(svc.Delete(context.Background(), 1), apperr.KindNotFound))
}

func requireMessage(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr), "expected app error, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	assert.True(t, strings.HasPrefix(appErr.Message, msg), appErr.Message)
}
