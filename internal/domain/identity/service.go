package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/clinic/clinic/internal/platform/auth"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	repo   Repository
	issuer *auth.TokenIssuer
}

func NewService(repo Repository, issuer *auth.TokenIssuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// LoginResult carries the signed token and the authenticated account's
// public profile.
type LoginResult struct {
	Token       string      `json:"token"`
	AccountType string      `json:"account_type"`
	Account     interface{} `json:"account"`
}

func (s *Service) RegisterPatient(ctx context.Context, p *Patient, password string) error {
	if err := validateAccount(p.Name, p.Email, password); err != nil {
		return err
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	return s.repo.CreatePatient(ctx, p)
}

func (s *Service) RegisterDoctor(ctx context.Context, d *Doctor, password string) error {
	if err := validateAccount(d.Name, d.Email, password); err != nil {
		return err
	}
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	d.PasswordHash = hash
	return s.repo.CreateDoctor(ctx, d)
}

func (s *Service) RegisterAdmin(ctx context.Context, a *Admin, password string) error {
	if err := validateAccount(a.Name, a.Email, password); err != nil {
		return err
	}
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return s.repo.CreateAdmin(ctx, a)
}

// Login authenticates against the account table matching accountType and
// returns a signed token on success. Lookup failures and password mismatches
// both map to ErrInvalidCredentials so the response does not reveal whether
// the email exists.
func (s *Service) Login(ctx context.Context, accountType, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		id      int64
		name    string
		hash    string
		account interface{}
	)

	switch accountType {
	case "patient":
		p, err := s.repo.GetPatientByEmail(ctx, email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, name, hash, account = p.ID, p.Name, p.PasswordHash, p
	case "doctor":
		d, err := s.repo.GetDoctorByEmail(ctx, email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, name, hash, account = d.ID, d.Name, d.PasswordHash, d
	case "admin":
		a, err := s.repo.GetAdminByEmail(ctx, email)
		if err != nil {
			return nil, loginErr(err)
		}
		id, name, hash, account = a.ID, a.Name, a.PasswordHash, a
	default:
		return nil, fmt.Errorf("unknown account type: %s", accountType)
	}

	if !verifyPassword(password, hash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(id, accountType, name)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, AccountType: accountType, Account: account}, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.UpdatePatient(ctx, p)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.UpdateDoctor(ctx, d)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.ListPatients(ctx, limit, offset)
}

func (s *Service) ListDoctors(ctx context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.ListDoctors(ctx, department, limit, offset)
}

// PatientName returns the patient's display name, or "" when the patient
// does not exist.
func (s *Service) PatientName(ctx context.Context, id int64) (string, error) {
	p, err := s.repo.GetPatientByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return p.Name, nil
}

// DoctorName returns the doctor's display name, or "" when the doctor does
// not exist.
func (s *Service) DoctorName(ctx context.Context, id int64) (string, error) {
	d, err := s.repo.GetDoctorByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return d.Name, nil
}

func validateAccount(name, email, password string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func loginErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidCredentials
	}
	return err
}

func hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func verifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
