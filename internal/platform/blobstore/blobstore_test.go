package blobstore

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"
)

func seedBlob(t *testing.T, store BlobStore, patientID int64, category, fileName, contentType, content string) *BlobMetadata {
	t.Helper()
	meta := BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
		PatientID:   patientID,
		Category:    category,
		CreatedBy:   "test-user",
	}
	result, err := store.Upload(context.Background(), meta, strings.NewReader(content))
	if err != nil {
		t.Fatalf("seedBlob: %v", err)
	}
	return result
}

func TestInMemoryBlobStore_Upload(t *testing.T) {
	store := NewInMemoryBlobStore("sign-key")
	content := "lab result body"

	meta := BlobMetadata{
		FileName:    "cbc.pdf",
		ContentType: "application/pdf",
		PatientID:   1,
		Category:    "lab-report",
		CreatedBy:   "doctor-1",
	}

	result, err := store.Upload(context.Background(), meta, strings.NewReader(content))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if result.Size != int64(len(content)) {
		t.Errorf("expected Size=%d, got %d", len(content), result.Size)
	}
	wantHash := fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
	if result.Hash != wantHash {
		t.Errorf("expected hash %s, got %s", wantHash, result.Hash)
	}
	if result.CreatedAt.IsZero() {
		t.Fatal("expected non-zero CreatedAt")
	}
}

func TestInMemoryBlobStore_Upload_Validation(t *testing.T) {
	store := NewInMemoryBlobStore("sign-key")

	_, err := store.Upload(context.Background(), BlobMetadata{}, strings.NewReader("x"))
	if err != ErrMissingFileName {
		t.Errorf("expected ErrMissingFileName, got %v", err)
	}

	_, err = store.Upload(context.Background(), BlobMetadata{
		FileName:    "evil.exe",
		ContentType: "application/x-msdownload",
	}, strings.NewReader("x"))
	if err != ErrInvalidContentType {
		t.Errorf("expected ErrInvalidContentType, got %v", err)
	}
}

func TestInMemoryBlobStore_DownloadRoundTrip(t *testing.T) {
	store := NewInMemoryBlobStore("sign-key")
	seeded := seedBlob(t, store, 1, "scan", "xray.png", "image/png", "binary-ish")

	rc, meta, err := store.Download(context.Background(), seeded.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "binary-ish" {
		t.Errorf("expected content to round-trip, got %q", data)
	}
	if meta.FileName != "xray.png" {
		t.Errorf("expected xray.png, got %s", meta.FileName)
	}

	if _, _, err := store.Download(context.Background(), "missing"); err != ErrBlobNotFound {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}

func TestInMemoryBlobStore_Delete(t *testing.T) {
	store := NewInMemoryBlobStore("sign-key")
	seeded := seedBlob(t, store, 1, "other", "note.txt", "text/plain", "x")

	if err := store.Delete(context.Background(), seeded.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(context.Background(), seeded.ID); err != ErrBlobNotFound {
		t.Errorf("expected ErrBlobNotFound on second delete, got %v", err)
	}
}

func TestInMemoryBlobStore_ListByPatient(t *testing.T) {
	store := NewInMemoryBlobStore("sign-key")
	seedBlob(t, store, 1, "lab-report", "a.pdf", "application/pdf", "a")
	seedBlob(t, store, 1, "scan", "b.png", "image/png", "b")
	seedBlob(t, store, 2, "lab-report", "c.pdf", "application/pdf", "c")

	items, total, err := store.ListByPatient(context.Background(), 1, "", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("expected 2 blobs for patient 1, got total=%d len=%d", total, len(items))
	}

	items, total, err = store.ListByPatient(context.Background(), 1, "scan", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].FileName != "b.png" {
		t.Errorf("expected only b.png for category scan, got total=%d", total)
	}
}

func TestInMemoryBlobStore_Search(t *testing.T) {
	store := NewInMemoryBlobStore("sign-key")
	seedBlob(t, store, 1, "lab-report", "blood-panel.pdf", "application/pdf", "a")
	seedBlob(t, store, 1, "scan", "chest-xray.png", "image/png", "b")

	items, total, err := store.Search(context.Background(), SearchParams{FileName: "xray"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || items[0].FileName != "chest-xray.png" {
		t.Errorf("expected chest-xray.png, got total=%d", total)
	}
}

func TestInMemoryBlobStore_SignedURL(t *testing.T) {
	store := NewInMemoryBlobStore("sign-key")
	seeded := seedBlob(t, store, 1, "lab-report", "a.pdf", "application/pdf", "a")

	signed, err := store.SignedURL(context.Background(), seeded.ID, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	u, err := url.Parse(signed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expires := u.Query().Get("expires")
	sig := u.Query().Get("sig")
	if expires == "" || sig == "" {
		t.Fatalf("expected expires and sig query params, got %s", signed)
	}

	if err := store.VerifySignedURL(context.Background(), seeded.ID, expires, sig); err != nil {
		t.Errorf("expected valid signature, got %v", err)
	}
	if err := store.VerifySignedURL(context.Background(), seeded.ID, expires, "tampered"); err != ErrSignatureInvalid {
		t.Errorf("expected ErrSignatureInvalid, got %v", err)
	}
	if err := store.VerifySignedURL(context.Background(), "other-id", expires, sig); err != ErrSignatureInvalid {
		t.Errorf("expected ErrSignatureInvalid for wrong id, got %v", err)
	}
}

func TestInMemoryBlobStore_SignedURL_Expired(t *testing.T) {
	store := NewInMemoryBlobStore("sign-key")
	seeded := seedBlob(t, store, 1, "lab-report", "a.pdf", "application/pdf", "a")

	signed, err := store.SignedURL(context.Background(), seeded.ID, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, _ := url.Parse(signed)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	err = store.VerifySignedURL(context.Background(), seeded.ID, u.Query().Get("expires"), u.Query().Get("sig"))
	if err != ErrSignatureInvalid {
		t.Errorf("expected ErrSignatureInvalid after expiry, got %v", err)
	}
}
