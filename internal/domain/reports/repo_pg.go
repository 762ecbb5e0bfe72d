package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const reportCols = `id, patient_id, doctor_id, appointment_id, title, file_name,
	content_type, category, blob_id, size_bytes, created_at`

func (r *repoPG) Create(ctx context.Context, rep *MedicalReport) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_reports (patient_id, doctor_id, appointment_id, title, file_name,
			content_type, category, blob_id, size_bytes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`,
		rep.PatientID, rep.DoctorID, rep.AppointmentID, rep.Title, rep.FileName,
		rep.ContentType, rep.Category, rep.BlobID, rep.SizeBytes,
	).Scan(&rep.ID, &rep.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*MedicalReport, error) {
	var rep MedicalReport
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM medical_reports WHERE id = $1`, id,
	).Scan(&rep.ID, &rep.PatientID, &rep.DoctorID, &rep.AppointmentID, &rep.Title, &rep.FileName,
		&rep.ContentType, &rep.Category, &rep.BlobID, &rep.SizeBytes, &rep.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64, limit, offset int) ([]*MedicalReport, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_reports WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+reportCols+` FROM medical_reports WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reps []*MedicalReport
	for rows.Next() {
		var rep MedicalReport
		if err := rows.Scan(&rep.ID, &rep.PatientID, &rep.DoctorID, &rep.AppointmentID, &rep.Title, &rep.FileName,
			&rep.ContentType, &rep.Category, &rep.BlobID, &rep.SizeBytes, &rep.CreatedAt); err != nil {
			return nil, 0, err
		}
		reps = append(reps, &rep)
	}
	return reps, total, rows.Err()
}
