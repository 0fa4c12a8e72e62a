package admin

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/rawadhq/rawad/core"
)

// password policy
var (
	pwdMinLen = 8
	pwdMaxSim = .7

	msgPwdMinLen     = "كلمة المرور يجب أن تتكون من 8 أحرف على الأقل"
	msgPwdNoSpace    = "كلمة المرور يجب ألا تحتوي على مسافات"
	msgPwdNotAllNum  = "كلمة المرور يجب ألا تكون أرقامًا فقط"
	msgPwdComplexity = "كلمة المرور يجب أن تحتوي على حرف كبير وحرف صغير ورقم ورمز خاص"
	msgPwdTooSimilar = "كلمة المرور مشابهة جدًا لبيانات الحساب"
)

func policyError(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "new_password", Error: msg})
}

// CheckPasswordPolicy applies the password policy to pwd:
// - minLen: 8
// - no whitespace
// - not all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no similarity to known account attributes (attrs)
// Returns nil or a *core.ValidationError on the new_password field.
func CheckPasswordPolicy(pwd string, attrs ...string) error {
	runes := []rune(pwd)
	if len(runes) < pwdMinLen {
		return policyError(msgPwdMinLen)
	}

	var digitCount int
	var hasUpper, hasLower, hasSpecial bool
	for _, char := range runes {
		switch {
		case unicode.IsSpace(char):
			return policyError(msgPwdNoSpace)
		case unicode.IsDigit(char):
			digitCount++
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		default:
			hasSpecial = true
		}
	}

	if digitCount == len(runes) {
		return policyError(msgPwdNotAllNum)
	}
	if !(hasUpper && hasLower && digitCount > 0 && hasSpecial) {
		return policyError(msgPwdComplexity)
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		matcher := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(strings.ToLower(attr), ""))
		if matcher.QuickRatio() >= pwdMaxSim {
			return policyError(msgPwdTooSimilar)
		}
	}
	return nil
}
