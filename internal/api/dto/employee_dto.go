package dto

import "time"

// EmployeeRequest payload for create/update. Field names follow the source
// data's wire format; dates use the 2006-01-02 layout.
type EmployeeRequest struct {
	NIK              string `json:"nik"`
	Fullname         string `json:"fullname"`
	DateOfBirth      string `json:"date_of_birth"`
	Gender           string `json:"gender"`
	Address          string `json:"address"`
	DomicileAddress  string `json:"domicile_address"`
	Religion         string `json:"religion"`
	Nationality      string `json:"nationality"`
	Education        string `json:"education"`
	NumberTelephone1 string `json:"number_telephone_1"`
	NumberTelephone2 string `json:"number_telephone_2"`
	Email            string `json:"email"`
	BankAccount      string `json:"bank_account"`
	AccountNumber    string `json:"account_number"`
	NPWP             string `json:"npwp"`
	BPJSTK           string `json:"bpjs_tk"`
	BPJSKS           string `json:"bpjs_ks"`
	HireDate         string `json:"hire_date"`
	NIP              string `json:"nip"`
	EmployeeStatus   string `json:"employee_status"`
}

// EmployeeResponse payload.
type EmployeeResponse struct {
	ID               string     `json:"id"`
	NIK              string     `json:"nik"`
	Fullname         string     `json:"fullname"`
	DateOfBirth      string     `json:"date_of_birth"`
	Gender           string     `json:"gender"`
	Address          string     `json:"address"`
	DomicileAddress  string     `json:"domicile_address"`
	Religion         string     `json:"religion"`
	Nationality      string     `json:"nationality"`
	Education        string     `json:"education"`
	NumberTelephone1 string     `json:"number_telephone_1"`
	NumberTelephone2 string     `json:"number_telephone_2"`
	Email            string     `json:"email"`
	BankAccount      string     `json:"bank_account"`
	AccountNumber    string     `json:"account_number"`
	NPWP             string     `json:"npwp"`
	BPJSTK           string     `json:"bpjs_tk"`
	BPJSKS           string     `json:"bpjs_ks"`
	HireDate         string     `json:"hire_date"`
	NIP              string     `json:"nip"`
	EmployeeStatus   string     `json:"employee_status"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	ArchivedAt       *time.Time `json:"archivedAt"`
}
