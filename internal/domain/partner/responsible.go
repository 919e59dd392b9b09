package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolerp/backend/internal/domain/shared"
)

// Responsible represents the party financially responsible for one or more students.
// Receivable accounts in the ledger are opened per responsible.
type Responsible struct {
	shared.BaseAggregateRoot
	Name     string `json:"name"`
	Document string `json:"document"` // CPF, unique
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// NewResponsible creates a new responsible party
func NewResponsible(name, document, email string) (*Responsible, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Responsible name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Responsible name cannot exceed 200 characters")
	}
	document = strings.TrimSpace(document)
	if document == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT", "Responsible document cannot be empty")
	}
	if err := ValidateCPF(document); err != nil {
		return nil, err
	}

	return &Responsible{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Document:          document,
		Email:             email,
	}, nil
}

// ValidateCPF checks a CPF document, accepting both the formatted
// (000.000.000-00) and the bare 11-digit form. Both verifier digits are
// checked; CPFs made of a single repeated digit pass the digit arithmetic
// but are not issued, so they are rejected too.
func ValidateCPF(document string) error {
	digits := make([]int, 0, 11)
	for _, r := range document {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '.' || r == '-':
		default:
			return shared.NewDomainError("INVALID_DOCUMENT", "CPF contains invalid characters")
		}
	}
	if len(digits) != 11 {
		return shared.NewDomainError("INVALID_DOCUMENT", "CPF must have 11 digits")
	}

	allSame := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return shared.NewDomainError("INVALID_DOCUMENT", "CPF verifier digits do not match")
	}

	if cpfVerifierDigit(digits, 9) != digits[9] || cpfVerifierDigit(digits, 10) != digits[10] {
		return shared.NewDomainError("INVALID_DOCUMENT", "CPF verifier digits do not match")
	}
	return nil
}

// cpfVerifierDigit computes the verifier digit over the first n digits,
// weighting from n+1 down to 2.
func cpfVerifierDigit(digits []int, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += digits[i] * (n + 1 - i)
	}
	remainder := sum % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}

// ResponsibleRepository provides access to responsible parties.
// Only the lookup surface is part of the billing core; CRUD lives elsewhere.
type ResponsibleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Responsible, error)
	Save(ctx context.Context, responsible *Responsible) error
}
