package registration

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReportCSV(t *testing.T) {
	createdAt := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	regs := []Registration{
		{
			FullName:          "سارة الأحمد",
			Email:             "sara@example.com",
			Phone:             "0512345678",
			Role:              RoleMentor,
			Specializations:   "التوظيف",
			YearsOfExperience: "5-10",
			CreatedAt:         createdAt,
		},
		{
			FullName:     "خالد العتيبي",
			Email:        "khaled@example.com",
			Phone:        "0598765432",
			Role:         RoleBeneficiary,
			CurrentField: "تقنية المعلومات",
			CreatedAt:    createdAt.AddDate(0, 0, 1),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, regs))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}), "report must start with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(out[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, reportHeader, rows[0])
	assert.Equal(t, []string{"سارة الأحمد", "sara@example.com", "0512345678", "موجه", "التوظيف", "5-10", "2024-03-15 09:30"}, rows[1])
	// beneficiaries report their current field in the specialization column
	assert.Equal(t, []string{"خالد العتيبي", "khaled@example.com", "0598765432", "باحث عن توجيه", "تقنية المعلومات", "", "2024-03-16 09:30"}, rows[2])
}

func TestWriteReportCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReportCSV(&buf, nil))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "an empty report still carries the header")
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "موجه", RoleLabel(RoleMentor))
	assert.Equal(t, "باحث عن توجيه", RoleLabel(RoleBeneficiary))
	assert.Equal(t, "other", RoleLabel("other"))
}
