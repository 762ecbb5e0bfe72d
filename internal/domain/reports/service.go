package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/clinic/clinic/internal/platform/blobstore"
)

// SignedURLTTL is how long a signed download link stays valid.
const SignedURLTTL = 15 * time.Minute

type Service struct {
	repo  Repository
	blobs blobstore.BlobStore
}

func NewService(repo Repository, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// UploadInput carries the report metadata accompanying a file upload.
type UploadInput struct {
	PatientID     int64
	DoctorID      int64
	AppointmentID *int64
	Title         string
	FileName      string
	ContentType   string
	Category      string
}

// Upload stores the file body in the blob store and records the report row.
// If the row insert fails the blob is removed so storage does not leak.
func (s *Service) Upload(ctx context.Context, in UploadInput, content io.Reader) (*MedicalReport, error) {
	if in.PatientID == 0 {
		return nil, fmt.Errorf("patient_id is required")
	}
	if in.DoctorID == 0 {
		return nil, fmt.Errorf("doctor_id is required")
	}
	if in.Title == "" {
		in.Title = in.FileName
	}

	meta, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    in.FileName,
		ContentType: in.ContentType,
		PatientID:   in.PatientID,
		Category:    in.Category,
	}, content)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	rep := &MedicalReport{
		PatientID:     in.PatientID,
		DoctorID:      in.DoctorID,
		AppointmentID: in.AppointmentID,
		Title:         in.Title,
		FileName:      meta.FileName,
		ContentType:   meta.ContentType,
		Category:      meta.Category,
		BlobID:        meta.ID,
		SizeBytes:     meta.Size,
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		_ = s.blobs.Delete(ctx, meta.ID)
		return nil, fmt.Errorf("record report: %w", err)
	}
	return rep, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*MedicalReport, error) {
	return s.repo.GetByID(ctx, id)
}

// Download returns the report row and a reader over the file body. The
// caller must close the reader.
func (s *Service) Download(ctx context.Context, id int64) (*MedicalReport, io.ReadCloser, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.blobs.Download(ctx, rep.BlobID)
	if err != nil {
		return nil, nil, fmt.Errorf("load file: %w", err)
	}
	return rep, rc, nil
}

// SignedURL returns a time-limited download link for the report's file.
func (s *Service) SignedURL(ctx context.Context, id int64) (string, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.blobs.SignedURL(ctx, rep.BlobID, SignedURLTTL)
}

// DownloadByBlob streams a blob after verifying its signed-URL parameters.
func (s *Service) DownloadByBlob(ctx context.Context, blobID, expires, sig string) (io.ReadCloser, *blobstore.BlobMetadata, error) {
	if err := s.blobs.VerifySignedURL(ctx, blobID, expires, sig); err != nil {
		return nil, nil, err
	}
	return s.blobs.Download(ctx, blobID)
}

// Delete removes the report row and its blob.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, rep.BlobID); err != nil && !errors.Is(err, blobstore.ErrBlobNotFound) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalReport, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
