package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/clinic/clinic/internal/platform/auth"
)

type mockRepo struct {
	patients map[int64]*Patient
	doctors  map[int64]*Doctor
	admins   map[int64]*Admin
	nextID   int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients: make(map[int64]*Patient),
		doctors:  make(map[int64]*Doctor),
		admins:   make(map[int64]*Admin),
	}
}

func (m *mockRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *mockRepo) CreatePatient(_ context.Context, p *Patient) error {
	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return ErrEmailTaken
		}
	}
	p.ID = m.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetPatientByID(_ context.Context, id int64) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetPatientByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) UpdatePatient(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) ListPatients(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *mockRepo) CreateDoctor(_ context.Context, d *Doctor) error {
	for _, existing := range m.doctors {
		if existing.Email == d.Email {
			return ErrEmailTaken
		}
	}
	d.ID = m.id()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetDoctorByID(_ context.Context, id int64) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) GetDoctorByEmail(_ context.Context, email string) (*Doctor, error) {
	for _, d := range m.doctors {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) UpdateDoctor(_ context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) ListDoctors(_ context.Context, department string, limit, offset int) ([]*Doctor, int, error) {
	var out []*Doctor
	for _, d := range m.doctors {
		if department != "" && (d.Department == nil || *d.Department != department) {
			continue
		}
		out = append(out, d)
	}
	return out, len(out), nil
}

func (m *mockRepo) CreateAdmin(_ context.Context, a *Admin) error {
	a.ID = m.id()
	a.CreatedAt = time.Now()
	m.admins[a.ID] = a
	return nil
}

func (m *mockRepo) GetAdminByEmail(_ context.Context, email string) (*Admin, error) {
	for _, a := range m.admins {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, ErrNotFound
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewService(repo, issuer), repo
}

func TestRegisterPatient_HashesPassword(t *testing.T) {
	svc, repo := newTestService()

	p := Patient{Name: "Ada", Email: "Ada@Example.com"}
	if err := svc.RegisterPatient(context.Background(), &p, "correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.patients[p.ID]
	if stored.Email != "ada@example.com" {
		t.Errorf("expected lowercased email, got %s", stored.Email)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "correct-horse" {
		t.Error("expected password to be hashed")
	}
	if !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Errorf("expected a bcrypt hash, got %q", stored.PasswordHash)
	}
	if !verifyPassword("correct-horse", stored.PasswordHash) {
		t.Error("expected stored hash to verify against the password")
	}
}

func TestRegisterPatient_Validation(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name     string
		patient  Patient
		password string
	}{
		{"missing name", Patient{Email: "a@b.com"}, "longenough"},
		{"bad email", Patient{Name: "Ada", Email: "nope"}, "longenough"},
		{"short password", Patient{Name: "Ada", Email: "a@b.com"}, "short"},
	}
	for _, tc := range cases {
		if err := svc.RegisterPatient(context.Background(), &tc.patient, tc.password); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestService()

	p := Patient{Name: "Ada", Email: "ada@example.com"}
	if err := svc.RegisterPatient(context.Background(), &p, "correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.Login(context.Background(), "patient", "ada@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Token == "" {
		t.Error("expected a signed token")
	}
	if result.AccountType != "patient" {
		t.Errorf("expected patient, got %s", result.AccountType)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService()

	p := Patient{Name: "Ada", Email: "ada@example.com"}
	if err := svc.RegisterPatient(context.Background(), &p, "correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Login(context.Background(), "patient", "ada@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnknownEmailMapsToInvalidCredentials(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Login(context.Background(), "patient", "ghost@example.com", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_DoctorAndAdmin(t *testing.T) {
	svc, _ := newTestService()

	d := Doctor{Name: "Dr. Okafor", Email: "okafor@example.com"}
	if err := svc.RegisterDoctor(context.Background(), &d, "stethoscope1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := Admin{Name: "Root", Email: "root@example.com"}
	if err := svc.RegisterAdmin(context.Background(), &a, "admin-pass-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Login(context.Background(), "doctor", "okafor@example.com", "stethoscope1"); err != nil {
		t.Errorf("doctor login failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "admin", "root@example.com", "admin-pass-1"); err != nil {
		t.Errorf("admin login failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), "robot", "root@example.com", "admin-pass-1"); err == nil {
		t.Error("expected error for unknown account type")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	p1 := Patient{Name: "Ada", Email: "ada@example.com"}
	if err := svc.RegisterPatient(context.Background(), &p1, "correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2 := Patient{Name: "Other Ada", Email: "ada@example.com"}
	err := svc.RegisterPatient(context.Background(), &p2, "correct-horse")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestNameLookups(t *testing.T) {
	svc, _ := newTestService()

	p := Patient{Name: "Ada", Email: "ada@example.com"}
	if err := svc.RegisterPatient(context.Background(), &p, "correct-horse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name, err := svc.PatientName(context.Background(), p.ID)
	if err != nil || name != "Ada" {
		t.Errorf("expected Ada, got %q (%v)", name, err)
	}

	// Missing accounts report an empty name rather than an error.
	name, err = svc.PatientName(context.Background(), 9999)
	if err != nil || name != "" {
		t.Errorf("expected empty name for missing patient, got %q (%v)", name, err)
	}
	name, err = svc.DoctorName(context.Background(), 9999)
	if err != nil || name != "" {
		t.Errorf("expected empty name for missing doctor, got %q (%v)", name, err)
	}
}
