package transport

import "time"

// Payment modes accepted on receipts.
const (
	ModeCard     = "CB"
	ModeCash     = "ESPECES"
	ModeTransfer = "VIREMENT"
	ModeCheque   = "CHEQUE"
)

// ModeLabel returns the French label printed on receipts.
func ModeLabel(mode string) string {
	switch mode {
	case ModeCard:
		return "Carte bancaire"
	case ModeCash:
		return "Espèces"
	case ModeTransfer:
		return "Virement"
	case ModeCheque:
		return "Chèque"
	default:
		return mode
	}
}

// ClientRequest creates or updates the client file of a lead; absent fields
// are left untouched.
type ClientRequest struct {
	Address     *string `json:"address" validate:"omitempty,max=255"`
	PostalCode  *string `json:"postal_code" validate:"omitempty,max=10"`
	City        *string `json:"city" validate:"omitempty,max=100"`
	Nationality *string `json:"nationality" validate:"omitempty,max=100"`
	BirthDate   *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string `json:"notes"`
}

type LeadInfo struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
}

type ClientResponse struct {
	ID          int64              `json:"id"`
	LeadID      int64              `json:"lead_id"`
	Lead        *LeadInfo          `json:"lead,omitempty"`
	Address     string             `json:"address"`
	PostalCode  string             `json:"postal_code"`
	City        string             `json:"city"`
	Nationality string             `json:"nationality"`
	BirthDate   *string            `json:"birth_date"`
	Notes       string             `json:"notes"`
	Documents   []DocumentResponse `json:"documents,omitempty"`
	Contracts   []ContractResponse `json:"contracts,omitempty"`
	Receipts    []ReceiptResponse  `json:"receipts,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// MaxAmount bounds every euro amount so its cents fit comfortably in BIGINT.
const MaxAmount = 99999999.99

// ContractRequest carries amounts in euros, at most MaxAmount.
type ContractRequest struct {
	Service         string   `json:"service" validate:"required,notblank,max=255"`
	AmountDue       float64  `json:"amount_due" validate:"gte=0,lte=99999999.99"`
	DiscountPercent float64  `json:"discount_percent" validate:"gte=0,lte=100"`
	RealAmountDue   *float64 `json:"real_amount_due" validate:"omitempty,gte=0,lte=99999999.99"`
}

type ContractResponse struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	Reference       string    `json:"reference"`
	Service         string    `json:"service"`
	AmountDue       float64   `json:"amount_due"`
	DiscountPercent float64   `json:"discount_percent"`
	RealAmountDue   *float64  `json:"real_amount_due"`
	FinalAmount     float64   `json:"final_amount"`
	ContractURL     *string   `json:"contract_url"`
	InvoiceURL      *string   `json:"invoice_url"`
	CreatedAt       time.Time `json:"created_at"`
}

type ReceiptRequest struct {
	ContractID  *int64  `json:"contract_id"`
	Amount      float64 `json:"amount" validate:"gt=0,lte=99999999.99"`
	Mode        string  `json:"mode" validate:"required,oneof=CB ESPECES VIREMENT CHEQUE"`
	PaymentDate string  `json:"payment_date" validate:"required,datetime=2006-01-02"`
}

type ReceiptResponse struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	ContractID  *int64    `json:"contract_id"`
	Reference   string    `json:"reference"`
	Amount      float64   `json:"amount"`
	Mode        string    `json:"mode"`
	ModeDisplay string    `json:"mode_display"`
	PaymentDate string    `json:"payment_date"`
	ReceiptURL  *string   `json:"receipt_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type DocumentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       *string   `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// CascadeStats counts the stored files removed with a lead.
type CascadeStats struct {
	Documents int `json:"documents"`
	Contracts int `json:"contracts"`
	Receipts  int `json:"receipts"`
	Clients   int `json:"clients"`
	Total     int `json:"total"`
}

type CascadeResponse struct {
	Detail string       `json:"detail"`
	LeadID int64        `json:"lead_id"`
	Stats  CascadeStats `json:"stats"`
}
