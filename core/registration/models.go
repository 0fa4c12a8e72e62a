package registration

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rawadhq/rawad/core"
)

// Roles
const (
	RoleBeneficiary = "beneficiary"
	RoleMentor      = "mentor"
)

const (
	// StatusPending is the status assigned to every registration at creation.
	StatusPending = "pending"

	// MaxCVSize is the inclusive upper bound on an attached CV file (5 MiB).
	MaxCVSize = 5 * 1024 * 1024

	// CVContentType is the only accepted CV MIME type.
	CVContentType = "application/pdf"
)

var (
	Roles = []string{RoleBeneficiary, RoleMentor}

	// errors
	ErrNotFound = errors.New("registration not found")
)

// CVFile is the locally-held CV attachment of a Draft, not yet uploaded.
type CVFile struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// Draft holds the in-progress wizard input for one registration attempt.
// It is owned by the wizard until submitted, and is never persisted as-is.
type Draft struct {
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	// mentor fields
	YearsOfExperience string `json:"years_of_experience"`
	Specializations   string `json:"specializations"`
	Bio               string `json:"bio"`
	HRExperience      bool   `json:"hr_experience"`

	// beneficiary fields
	CurrentField string `json:"current_field"`
	Reason       string `json:"reason"`

	AdditionalNotes string  `json:"additional_notes"`
	CV              *CVFile `json:"-"`
}

// Clean trims all text fields and lowers the email.
func (d *Draft) Clean() {
	d.Role = core.CleanString(d.Role, true /* lower */)
	d.FullName = core.CleanString(d.FullName)
	d.Email = core.CleanString(d.Email, true /* lower */)
	d.Phone = core.CleanString(d.Phone)
	d.YearsOfExperience = core.CleanString(d.YearsOfExperience)
	d.Specializations = core.CleanString(d.Specializations)
	d.Bio = core.CleanString(d.Bio)
	d.CurrentField = core.CleanString(d.CurrentField)
	d.Reason = core.CleanString(d.Reason)
	d.AdditionalNotes = core.CleanString(d.AdditionalNotes)
}

func (d *Draft) IsMentor() bool      { return d.Role == RoleMentor }
func (d *Draft) IsBeneficiary() bool { return d.Role == RoleBeneficiary }

// registration maps the draft to its immutable persisted form. Role-conditional
// fields are copied only for the matching role; cvLink is the uploaded CV's URL.
func (d *Draft) registration(cvLink string) Registration {
	reg := Registration{
		FullName:        d.FullName,
		Email:           d.Email,
		Phone:           d.Phone,
		Role:            d.Role,
		CVLink:          cvLink,
		Bio:             d.Bio,
		AdditionalNotes: d.AdditionalNotes,
		Status:          StatusPending,
	}
	switch d.Role {
	case RoleMentor:
		reg.YearsOfExperience = d.YearsOfExperience
		reg.Specializations = d.Specializations
		reg.HRExperience = d.HRExperience
	case RoleBeneficiary:
		reg.CurrentField = d.CurrentField
		reg.Reason = d.Reason
	}
	return reg
}

// Registration is the immutable persisted record of a completed signup.
type Registration struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Role            string `json:"role"`
	CVLink          string `json:"cv_link"`
	Bio             string `json:"bio,omitempty"`
	AdditionalNotes string `json:"additional_notes,omitempty"`

	// mentor fields
	YearsOfExperience string `json:"years_of_experience,omitempty"`
	Specializations   string `json:"specializations,omitempty"`
	HRExperience      bool   `json:"hr_experience,omitempty"`

	// beneficiary fields
	CurrentField string `json:"current_field,omitempty"`
	Reason       string `json:"reason,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC, server-assigned
}

func (r *Registration) IsMentor() bool { return r.Role == RoleMentor }

// QueryFilter defines the available filters on registration queries.
// All fields are optional and AND-ed together.
type QueryFilter struct {
	// Search does a case-insensitive match on FullName or Email.
	Search      string    `json:"search" query:"search"`
	Role        string    `json:"role" query:"role"`
	CreatedFrom time.Time `json:"created_from" query:"created_from"`
	CreatedTo   time.Time `json:"created_to" query:"created_to"`
}

func (f *QueryFilter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Role = core.CleanString(f.Role, true /* lower */)
}

func (f *QueryFilter) Match(reg Registration) bool {
	if f.Role != "" && reg.Role != f.Role {
		return false
	}
	if !f.CreatedFrom.IsZero() && reg.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() && reg.CreatedAt.After(f.CreatedTo) {
		return false
	}
	if f.Search != "" {
		search := core.CleanString(f.Search, true /* lower */)
		name := core.CleanString(reg.FullName, true)
		email := core.CleanString(reg.Email, true)
		if !strings.Contains(name, search) && !strings.Contains(email, search) {
			return false
		}
	}
	return true
}

// Repository persists and retrieves registrations. Implementations assign the
// server-side ID and creation timestamp on create.
type Repository interface {
	CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
	// QueryRegistrations returns registrations matching filter, newest first.
	QueryRegistrations(ctx context.Context, filter QueryFilter) ([]Registration, error)
	GetRegistration(ctx context.Context, id string) (Registration, error)
	DeleteRegistrations(ctx context.Context, ids ...string) error
	// SubscribeRegistrations delivers the full newest-first list to cb on every
	// change to the backing store. The returned func cancels the subscription.
	SubscribeRegistrations(cb func([]Registration)) (unsubscribe func())
}
