package identity

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

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

func mapReadErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const patientCols = `id, name, email, phone, password_hash,
	age, blood_group, medical_history, created_at, updated_at`

func (r *repoPG) CreatePatient(ctx context.Context, p *Patient) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (name, email, phone, password_hash, age, blood_group, medical_history)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`,
		p.Name, p.Email, p.Phone, p.PasswordHash, p.Age, p.BloodGroup, p.MedicalHistory,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapWriteErr(err)
}

func (r *repoPG) GetPatientByID(ctx context.Context, id int64) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetPatientByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE email = $1`, email))
}

func (r *repoPG) UpdatePatient(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			name=$2, phone=$3, age=$4, blood_group=$5, medical_history=$6, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Phone, p.Age, p.BloodGroup, p.MedicalHistory,
	)
	return err
}

func (r *repoPG) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Email, &p.Phone, &p.PasswordHash,
			&p.Age, &p.BloodGroup, &p.MedicalHistory, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, rows.Err()
}

const doctorCols = `id, name, email, phone, password_hash,
	department, description, image_url, created_at, updated_at`

func (r *repoPG) CreateDoctor(ctx context.Context, d *Doctor) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctors (name, email, phone, password_hash, department, description, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`,
		d.Name, d.Email, d.Phone, d.PasswordHash, d.Department, d.Description, d.ImageURL,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return mapWriteErr(err)
}

func (r *repoPG) GetDoctorByID(ctx context.Context, id int64) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *repoPG) GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE email = $1`, email))
}

func (r *repoPG) UpdateDoctor(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctors SET
			name=$2, phone=$3, department=$4, description=$5, image_url=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Phone, d.Department, d.Description, d.ImageURL,
	)
	return err
}

func (r *repoPG) ListDoctors(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	countSQL := `SELECT COUNT(*) FROM doctors`
	dataSQL := `SELECT ` + doctorCols + ` FROM doctors ORDER BY id LIMIT $1 OFFSET $2`
	countArgs := []interface{}{}
	dataArgs := []interface{}{limit, offset}
	if department != "" {
		countSQL = `SELECT COUNT(*) FROM doctors WHERE department = $1`
		dataSQL = `SELECT ` + doctorCols + ` FROM doctors WHERE department = $1 ORDER BY id LIMIT $2 OFFSET $3`
		countArgs = []interface{}{department}
		dataArgs = []interface{}{department, limit, offset}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Email, &d.Phone, &d.PasswordHash,
			&d.Department, &d.Description, &d.ImageURL, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, &d)
	}
	return doctors, total, rows.Err()
}

func (r *repoPG) CreateAdmin(ctx context.Context, a *Admin) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO admins (name, email, password_hash)
		VALUES ($1,$2,$3)
		RETURNING id, created_at`,
		a.Name, a.Email, a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
	return mapWriteErr(err)
}

func (r *repoPG) GetAdminByEmail(ctx context.Context, email string) (*Admin, error) {
	var a Admin
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM admins WHERE email = $1`, email,
	).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &a, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Phone, &p.PasswordHash,
		&p.Age, &p.BloodGroup, &p.MedicalHistory, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &p, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.Phone, &d.PasswordHash,
		&d.Department, &d.Description, &d.ImageURL, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, mapReadErr(err)
	}
	return &d, nil
}
