package registration

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/rawadhq/rawad/core"
)

// User-facing messages are kept in Arabic; the platform's audience is Arabic-speaking
// and the admin panel displays them verbatim.
var (
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^05[0-9]{8}$`)

	msgFullNameRequired     = "الاسم الكامل مطلوب"
	msgEmailRequired        = "البريد الإلكتروني مطلوب"
	msgPhoneRequired        = "رقم الجوال مطلوب"
	msgRoleRequired         = "يرجى اختيار نوع التسجيل"
	msgCVRequired           = "إرفاق السيرة الذاتية مطلوب"
	msgBioRequired          = "النبذة التعريفية مطلوبة"
	msgSpecsRequired        = "التخصصات مطلوبة"
	msgYearsRequired        = "سنوات الخبرة مطلوبة"
	msgCurrentFieldRequired = "المجال المهني مطلوب"
	msgReasonRequired       = "سبب التسجيل مطلوب"

	msgEmailFormat = "صيغة البريد الإلكتروني غير صحيحة"
	msgPhoneFormat = "رقم الجوال يجب أن يبدأ بـ 05 ويتكون من 10 أرقام"
	msgCVType      = "يجب أن يكون ملف السيرة الذاتية من نوع PDF"
	msgCVSize      = "حجم ملف السيرة الذاتية يجب أن يكون أقل من 5 ميجابايت"
)

// ValidateRequired checks field presence on a draft and returns one descriptor per
// missing field. Role-conditional fields are required only once a role is chosen.
// Pure: no side effects, identical results on an unmodified draft.
func ValidateRequired(d *Draft) []core.FieldError {
	var flds []core.FieldError
	missing := func(field, msg string) {
		flds = append(flds, core.FieldError{Field: field, Error: msg})
	}

	if strings.TrimSpace(d.FullName) == "" {
		missing("full_name", msgFullNameRequired)
	}
	if strings.TrimSpace(d.Email) == "" {
		missing("email", msgEmailRequired)
	}
	if strings.TrimSpace(d.Phone) == "" {
		missing("phone", msgPhoneRequired)
	}
	if d.Role == "" {
		missing("role", msgRoleRequired)
	}
	if d.CV == nil {
		missing("cv", msgCVRequired)
	}

	switch d.Role {
	case RoleMentor:
		if strings.TrimSpace(d.Bio) == "" {
			missing("bio", msgBioRequired)
		}
		if strings.TrimSpace(d.Specializations) == "" {
			missing("specializations", msgSpecsRequired)
		}
		if strings.TrimSpace(d.YearsOfExperience) == "" {
			missing("years_of_experience", msgYearsRequired)
		}
	case RoleBeneficiary:
		if strings.TrimSpace(d.CurrentField) == "" {
			missing("current_field", msgCurrentFieldRequired)
		}
		if strings.TrimSpace(d.Reason) == "" {
			missing("reason", msgReasonRequired)
		}
	}
	return flds
}

// ValidateEmail reports whether s has a standard local@domain.tld shape.
func ValidateEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidatePhone reports whether s is a Saudi mobile number: 05 followed by 8 digits.
func ValidatePhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// ValidateCV checks the attached CV's constraints: MIME type must be exactly
// application/pdf and size must not exceed MaxCVSize (inclusive at the boundary).
func ValidateCV(f *CVFile) error {
	if f.ContentType != CVContentType {
		return core.NewValidationError(errors.New(msgCVType), core.FieldError{Field: "cv", Error: msgCVType})
	}
	if f.Size > MaxCVSize {
		return core.NewValidationError(errors.New(msgCVSize), core.FieldError{Field: "cv", Error: msgCVSize})
	}
	return nil
}

// Validate runs the full rule set in its fixed order: required fields first, then
// email format, then phone format, then CV constraints. It stops at the first
// failing rule so that a draft missing fields never surfaces a format error for a
// field the user has not filled in yet. Returns nil or a *core.ValidationError.
func (d *Draft) Validate() error {
	if flds := ValidateRequired(d); len(flds) > 0 {
		msgs := make([]string, 0, len(flds))
		for _, f := range flds {
			msgs = append(msgs, f.Error)
		}
		err := fmt.Errorf("يرجى ملء الحقول التالية: %s", strings.Join(msgs, "، "))
		return core.NewValidationError(err, flds...)
	}
	if !ValidateEmail(strings.TrimSpace(d.Email)) {
		return core.NewValidationError(errors.New(msgEmailFormat), core.FieldError{Field: "email", Error: msgEmailFormat})
	}
	if !ValidatePhone(strings.TrimSpace(d.Phone)) {
		return core.NewValidationError(errors.New(msgPhoneFormat), core.FieldError{Field: "phone", Error: msgPhoneFormat})
	}
	return ValidateCV(d.CV)
}
