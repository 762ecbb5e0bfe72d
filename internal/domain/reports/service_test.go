package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/clinic/clinic/internal/platform/blobstore"
)

type mockRepo struct {
	reports    map[int64]*MedicalReport
	nextID     int64
	failCreate bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{reports: make(map[int64]*MedicalReport)}
}

func (m *mockRepo) Create(_ context.Context, r *MedicalReport) error {
	if m.failCreate {
		return fmt.Errorf("insert failed")
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	m.reports[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id int64) (*MedicalReport, error) {
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.reports[id]; !ok {
		return ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID int64, limit, offset int) ([]*MedicalReport, int, error) {
	var out []*MedicalReport
	for _, r := range m.reports {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func newTestService() (*Service, *mockRepo, *blobstore.InMemoryBlobStore) {
	repo := newMockRepo()
	blobs := blobstore.NewInMemoryBlobStore("sign-key")
	return NewService(repo, blobs), repo, blobs
}

func TestUpload_StoresBlobAndRow(t *testing.T) {
	svc, repo, blobs := newTestService()

	rep, err := svc.Upload(context.Background(), UploadInput{
		PatientID:   7,
		DoctorID:    3,
		Title:       "CBC results",
		FileName:    "cbc.pdf",
		ContentType: "application/pdf",
		Category:    "lab-report",
	}, strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rep.ID == 0 || rep.BlobID == "" {
		t.Fatal("expected row id and blob id")
	}
	if rep.SizeBytes != int64(len("pdf bytes")) {
		t.Errorf("expected size %d, got %d", len("pdf bytes"), rep.SizeBytes)
	}
	if _, ok := repo.reports[rep.ID]; !ok {
		t.Error("expected report row to be stored")
	}
	if _, err := blobs.GetMetadata(context.Background(), rep.BlobID); err != nil {
		t.Errorf("expected blob to exist: %v", err)
	}
}

func TestUpload_RowFailureCleansUpBlob(t *testing.T) {
	svc, repo, blobs := newTestService()
	repo.failCreate = true

	_, err := svc.Upload(context.Background(), UploadInput{
		PatientID: 7, DoctorID: 3, FileName: "cbc.pdf", ContentType: "application/pdf",
	}, strings.NewReader("pdf bytes"))
	if err == nil {
		t.Fatal("expected error")
	}

	// The orphaned blob must be removed.
	items, total, _ := blobs.ListByPatient(context.Background(), 7, "", 20, 0)
	if total != 0 || len(items) != 0 {
		t.Errorf("expected no blobs left behind, got %d", total)
	}
}

func TestUpload_TitleDefaultsToFileName(t *testing.T) {
	svc, _, _ := newTestService()

	rep, err := svc.Upload(context.Background(), UploadInput{
		PatientID: 7, DoctorID: 3, FileName: "xray.png", ContentType: "image/png",
	}, strings.NewReader("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Title != "xray.png" {
		t.Errorf("expected title to default to file name, got %s", rep.Title)
	}
}

func TestDownload_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService()

	rep, err := svc.Upload(context.Background(), UploadInput{
		PatientID: 7, DoctorID: 3, FileName: "cbc.pdf", ContentType: "application/pdf",
	}, strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, rc, err := svc.Download(context.Background(), rep.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "pdf bytes" {
		t.Errorf("expected file body to round-trip, got %q", data)
	}
	if got.FileName != "cbc.pdf" {
		t.Errorf("expected cbc.pdf, got %s", got.FileName)
	}
}

func TestSignedURLFlow(t *testing.T) {
	svc, _, _ := newTestService()

	rep, err := svc.Upload(context.Background(), UploadInput{
		PatientID: 7, DoctorID: 3, FileName: "cbc.pdf", ContentType: "application/pdf",
	}, strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	url, err := svc.SignedURL(context.Background(), rep.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url == "" {
		t.Fatal("expected a signed url")
	}

	// Tampered signature must be rejected.
	_, _, err = svc.DownloadByBlob(context.Background(), rep.BlobID, "9999999999", "bogus")
	if !errors.Is(err, blobstore.ErrSignatureInvalid) {
		t.Errorf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestDelete_RemovesRowAndBlob(t *testing.T) {
	svc, repo, blobs := newTestService()

	rep, err := svc.Upload(context.Background(), UploadInput{
		PatientID: 7, DoctorID: 3, FileName: "cbc.pdf", ContentType: "application/pdf",
	}, strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), rep.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.reports[rep.ID]; ok {
		t.Error("expected row to be deleted")
	}
	if _, err := blobs.GetMetadata(context.Background(), rep.BlobID); !errors.Is(err, blobstore.ErrBlobNotFound) {
		t.Errorf("expected blob to be deleted, got %v", err)
	}

	if err := svc.Delete(context.Background(), rep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
