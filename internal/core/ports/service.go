package ports

import (
	"context"
	"io"

	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
)

type RegisterUserInput struct {
	FullName        string
	CPF             string
	BirthDate       string
	Username        string
	Password        string
	ConfirmPassword string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterUserInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

// DonorInput is a donor registration as submitted by a client. Identity fields
// are checked for presence; their content is judged by triage.
type DonorInput struct {
	Name         string
	BloodType    string
	ContactInfo  string
	RegisteredBy string
	Intake       domain.Intake
}

type DonorService interface {
	RegisterDonor(ctx context.Context, in DonorInput) (*domain.Donor, error)
	ListDonors(ctx context.Context) ([]domain.DonorView, error)
	ExportSpreadsheet(ctx context.Context, w io.Writer) error
	Screen(intake domain.Intake) domain.Verdict
}

// DonorExporter renders donor views into a downloadable document.
type DonorExporter interface {
	ExportDonors(w io.Writer, donors []domain.DonorView, generatedOn domain.Date) error
}
