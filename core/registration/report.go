package registration

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"
)

var reportHeader = []string{
	"الاسم الكامل",
	"البريد الإلكتروني",
	"رقم الهاتف",
	"الدور",
	"التخصص",
	"سنوات الخبرة",
	"تاريخ التسجيل",
}

// RoleLabel returns the Arabic display label for role.
func RoleLabel(role string) string {
	switch role {
	case RoleMentor:
		return "موجه"
	case RoleBeneficiary:
		return "باحث عن توجيه"
	}
	return role
}

// WriteReportCSV writes regs to w as a UTF-8 CSV preceded by a BOM so
// spreadsheet apps render the Arabic header correctly.
func WriteReportCSV(w io.Writer, regs []Registration) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return errors.Wrap(err, "writing BOM")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return errors.Wrap(err, "writing report header")
	}
	for _, reg := range regs {
		field := reg.Specializations
		if !reg.IsMentor() {
			field = reg.CurrentField
		}
		row := []string{
			reg.FullName,
			reg.Email,
			reg.Phone,
			RoleLabel(reg.Role),
			field,
			reg.YearsOfExperience,
			reg.CreatedAt.UTC().Format(dateLayout + " 15:04"),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing report row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing report")
}
