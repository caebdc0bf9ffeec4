package customer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AgreementStatus string

const (
	AgreementPending  AgreementStatus = "beklemede"
	AgreementPositive AgreementStatus = "olumlu"
	AgreementNegative AgreementStatus = "olumsuz"
)

// AgreementOption is one entry of the fixed agreement-status picker.
type AgreementOption struct {
	Value AgreementStatus
	Label string
}

// AgreementStatusOptions mirrors the backend model choices; it never needs a
// network round trip.
func AgreementStatusOptions() []AgreementOption {
	return []AgreementOption{
		{Value: AgreementPending, Label: "Beklemede"},
		{Value: AgreementPositive, Label: "Olumlu"},
		{Value: AgreementNegative, Label: "Olumsuz"},
	}
}

func (s AgreementStatus) Valid() bool {
	switch s {
	case AgreementPending, AgreementPositive, AgreementNegative:
		return true
	}
	return false
}

// Label renders the status for display; a missing status reads as pending.
func (s AgreementStatus) Label() string {
	if s == "" {
		s = AgreementPending
	}
	for _, o := range AgreementStatusOptions() {
		if o.Value == s {
			return o.Label
		}
	}
	return string(s)
}

type Customer struct {
	ID                    int64           `json:"id"`
	Rep                   int64           `json:"rep"`
	Username              string          `json:"username"`
	FirstName             string          `json:"first_name"`
	LastName              string          `json:"last_name"`
	Identification        *string         `json:"identification"`
	TaxOffice             *string         `json:"tax_office"`
	Address               string          `json:"address"`
	SubscriptionType      *int64          `json:"subscription_type"`
	SubscriptionDuration  *int64          `json:"subscription_duration"`
	SubscriptionStartDate Date            `json:"subscription_start_date"`
	PaymentType           *int64          `json:"payment_type"`
	Amount                decimal.Decimal `json:"amount"`
	Description           *string         `json:"description"`
	AgreementStatus       AgreementStatus `json:"agreement_status"`
	CreatedAt             time.Time       `json:"created_at"`
}

func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Initials returns the first letter of first and last name, as shown on the
// list avatar.
func (c *Customer) Initials() string {
	return firstRune(c.FirstName) + firstRune(c.LastName)
}

func firstRune(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return strings.ToUpper(string(r))
	}
	return ""
}
