package testutil

import (
	"context"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/rawadhq/rawad/core"
	"github.com/rawadhq/rawad/core/admin"
	"github.com/rawadhq/rawad/core/registration"
)

// InitConf sets a fixed test configuration, bypassing env lookups.
func InitConf() {
	core.Conf = &core.Config{
		Env:              "test",
		TestMode:         true,
		AppName:          "Rawad",
		SecretKey:        "test-secret-key",
		DefaultFromEmail: mail.Address{Name: "Rawad", Address: "noreply@rawad.test"},
		AdminEmail:       mail.Address{Name: "Admin", Address: "admin@rawad.test"},
		Server: core.ServerConfig{
			SessionExpirationDelta: 24 * time.Hour,
			ShutdownTimeout:        5 * time.Second,
		},
	}
}

func CreateRegistration(
	t *testing.T,
	repo registration.Repository,
	fullName, email, phone, role string,
) registration.Registration {
	t.Helper()

	reg := registration.Registration{
		FullName: fullName,
		Email:    email,
		Phone:    phone,
		Role:     role,
		CVLink:   "https://files.invalid/cv_uploads/seeded.pdf",
		Status:   registration.StatusPending,
	}
	switch role {
	case registration.RoleMentor:
		reg.YearsOfExperience = "5-10"
		reg.Specializations = "التوظيف"
		reg.Bio = "نبذة"
	case registration.RoleBeneficiary:
		reg.CurrentField = "تقنية المعلومات"
		reg.Reason = "تطوير المسار المهني"
	}

	reg, err := repo.CreateRegistration(context.Background(), reg)
	if err != nil {
		t.Fatalf("CreateRegistration() failed: %v", err)
	}
	return reg
}

func SeedAdmin(t *testing.T, repo admin.Repository, pwd string) admin.Credential {
	t.Helper()

	var cred admin.Credential
	if err := cred.SetPassword(pwd); err != nil {
		t.Fatalf("SeedAdmin() failed: %v", err)
	}
	if err := repo.SaveCredential(context.Background(), cred); err != nil {
		t.Fatalf("SeedAdmin() failed: %v", err)
	}
	return cred
}

// MultipartField is one part of a submission form, file parts carry a name.
type MultipartField struct {
	Field       string
	Value       string
	Filename    string
	ContentType string
}

// ValidMentorForm returns the form fields of a submission that passes every
// validation rule.
func ValidMentorForm() []MultipartField {
	return []MultipartField{
		{Field: "role", Value: registration.RoleMentor},
		{Field: "full_name", Value: "سارة الأحمد"},
		{Field: "email", Value: "sara@example.com"},
		{Field: "phone", Value: "0512345678"},
		{Field: "years_of_experience", Value: "5-10"},
		{Field: "specializations", Value: "التوظيف, تطوير المواهب"},
		{Field: "bio", Value: "أخصائية موارد بشرية"},
		{Field: "hr_experience", Value: "true"},
		{Field: "cv", Value: strings.Repeat("a", 128), Filename: "cv.pdf", ContentType: "application/pdf"},
	}
}
