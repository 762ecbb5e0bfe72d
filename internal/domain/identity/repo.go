package identity

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repository interface {
	CreatePatient(ctx context.Context, p *Patient) error
	GetPatientByID(ctx context.Context, id int64) (*Patient, error)
	GetPatientByEmail(ctx context.Context, email string) (*Patient, error)
	UpdatePatient(ctx context.Context, p *Patient) error
	ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error)

	CreateDoctor(ctx context.Context, d *Doctor) error
	GetDoctorByID(ctx context.Context, id int64) (*Doctor, error)
	GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error)
	UpdateDoctor(ctx context.Context, d *Doctor) error
	ListDoctors(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error)

	CreateAdmin(ctx context.Context, a *Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*Admin, error)
}
