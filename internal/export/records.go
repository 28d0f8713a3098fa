package export

import (
	"bytes"
	"time"

	"github.com/spec-kit/records-service/internal/domain"
)

const (
	timestampLayout = time.RFC3339
	dateLayout      = "2006-01-02"
)

// DepartmentsWorkbook serializes departments plus lifecycle timestamps.
func DepartmentsWorkbook(departments []domain.Department) (*bytes.Buffer, error) {
	headers := []string{"ID", "Name", "Description", "Created At", "Updated At", "Archived At"}
	rows := make([][]any, 0, len(departments))
	for i := range departments {
		d := &departments[i]
		rows = append(rows, []any{
			d.ID,
			d.Name,
			d.Description,
			d.CreatedAt.Format(timestampLayout),
			d.UpdatedAt.Format(timestampLayout),
			archivedAtCell(d.ArchivedAt),
		})
	}
	return BuildWorkbook("Departments", headers, rows)
}

// PermissionsWorkbook serializes permissions plus lifecycle timestamps.
func PermissionsWorkbook(permissions []domain.Permission) (*bytes.Buffer, error) {
	headers := []string{"ID", "Name", "Description", "Created At", "Updated At", "Archived At"}
	rows := make([][]any, 0, len(permissions))
	for i := range permissions {
		p := &permissions[i]
		rows = append(rows, []any{
			p.ID,
			p.Name,
			p.Description,
			p.CreatedAt.Format(timestampLayout),
			p.UpdatedAt.Format(timestampLayout),
			archivedAtCell(p.ArchivedAt),
		})
	}
	return BuildWorkbook("Permissions", headers, rows)
}

// EmployeesWorkbook serializes the full employee field set plus lifecycle
// timestamps.
func EmployeesWorkbook(employees []domain.Employee) (*bytes.Buffer, error) {
	headers := []string{
		"ID", "NIK", "Fullname", "Date of Birth", "Gender", "Address",
		"Domicile Address", "Religion", "Nationality", "Education",
		"Primary Phone", "Secondary Phone", "Email", "Bank Name",
		"Account Number", "NPWP", "BPJS TK", "BPJS KS", "Hire Date", "NIP",
		"Status", "Created At", "Updated At", "Archived At",
	}
	rows := make([][]any, 0, len(employees))
	for i := range employees {
		e := &employees[i]
		rows = append(rows, []any{
			e.ID,
			e.NIK,
			e.Fullname,
			e.DateOfBirth.Format(dateLayout),
			e.Gender,
			e.Address,
			e.DomicileAddress,
			e.Religion,
			e.Nationality,
			e.Education,
			e.PhonePrimary,
			e.PhoneSecondary,
			e.Email,
			e.BankName,
			e.AccountNumber,
			e.NPWP,
			e.BPJSTK,
			e.BPJSKS,
			e.HireDate.Format(dateLayout),
			e.NIP,
			e.Status,
			e.CreatedAt.Format(timestampLayout),
			e.UpdatedAt.Format(timestampLayout),
			archivedAtCell(e.ArchivedAt),
		})
	}
	return BuildWorkbook("Employees", headers, rows)
}

func archivedAtCell(archivedAt *time.Time) string {
	if archivedAt == nil {
		return ""
	}
	return archivedAt.Format(timestampLayout)
}
