package domain

import "time"

// Employee models a personnel record. Identity numbers follow the Indonesian
// HR conventions of the source data: NIK (national identity number), NIP
// (employee number), NPWP (tax number), BPJS TK/KS (social insurance numbers).
type Employee struct {
	ID              string
	NIK             string
	Fullname        string
	DateOfBirth     time.Time
	Gender          string
	Address         string
	DomicileAddress string
	Religion        string
	Nationality     string
	Education       string
	PhonePrimary    string
	PhoneSecondary  string
	Email           string
	BankName        string
	AccountNumber   string
	NPWP            string
	BPJSTK          string
	BPJSKS          string
	HireDate        time.Time
	NIP             string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ArchivedAt      *time.Time
}

// Archived reports whether the employee record is soft-deleted.
func (e *Employee) Archived() bool {
	return e.ArchivedAt != nil
}
