package dto

import (
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest is the POST /api/customers/ body. Optional and
// nullable columns are pointers so a missing key can be told apart from zero.
type CreateCustomerRequest struct {
	Username              string           `json:"username"`
	FirstName             string           `json:"first_name"`
	LastName              string           `json:"last_name"`
	Identification        *string          `json:"identification"`
	TaxOffice             *string          `json:"tax_office"`
	Address               string           `json:"address"`
	SubscriptionType      *int64           `json:"subscription_type"`
	SubscriptionDuration  *int64           `json:"subscription_duration"`
	SubscriptionStartDate *customer.Date   `json:"subscription_start_date"`
	PaymentType           *int64           `json:"payment_type"`
	Amount                *decimal.Decimal `json:"amount"`
	Description           *string          `json:"description"`
	AgreementStatus       string           `json:"agreement_status"`
	Rep                   *int64           `json:"rep"`
}

// ToDomain converts the body and reports every invalid field at once.
func (r *CreateCustomerRequest) ToDomain() (*customer.CreateRequest, error) {
	req := &customer.CreateRequest{
		Username:        r.Username,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Identification:  deref(r.Identification),
		TaxOffice:       deref(r.TaxOffice),
		Address:         r.Address,
		Description:     deref(r.Description),
		AgreementStatus: customer.AgreementStatus(r.AgreementStatus),
	}
	if req.AgreementStatus == "" {
		req.AgreementStatus = customer.AgreementPending
	}
	if r.SubscriptionType != nil {
		req.SubscriptionType = *r.SubscriptionType
	}
	if r.SubscriptionDuration != nil {
		req.SubscriptionDuration = *r.SubscriptionDuration
	}
	if r.PaymentType != nil {
		req.PaymentType = *r.PaymentType
	}
	if r.SubscriptionStartDate != nil {
		req.SubscriptionStartDate = *r.SubscriptionStartDate
	}
	if r.Amount != nil {
		req.Amount = *r.Amount
	}
	if r.Rep != nil {
		req.Rep = *r.Rep
	}

	var errs apperrors.FieldErrors
	if err := req.Validate(); err != nil {
		if !errors.As(err, &errs) {
			return nil, err
		}
	}
	if r.Amount == nil {
		errs = append(errs, &apperrors.ValidationError{Field: "amount", Message: "is required"})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return req, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CustomerResponse mirrors the serializer output the client decodes.
type CustomerResponse struct {
	ID                    int64     `json:"id"`
	Rep                   int64     `json:"rep"`
	Username              string    `json:"username"`
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	Identification        *string   `json:"identification"`
	TaxOffice             *string   `json:"tax_office"`
	Address               string    `json:"address"`
	SubscriptionType      *int64    `json:"subscription_type"`
	SubscriptionDuration  *int64    `json:"subscription_duration"`
	SubscriptionStartDate string    `json:"subscription_start_date"`
	PaymentType           *int64    `json:"payment_type"`
	Amount                string    `json:"amount"`
	Description           *string   `json:"description"`
	AgreementStatus       string    `json:"agreement_status"`
	CreatedAt             time.Time `json:"created_at"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	status := c.AgreementStatus
	if status == "" {
		status = customer.AgreementPending
	}
	return CustomerResponse{
		ID:                    c.ID,
		Rep:                   c.Rep,
		Username:              c.Username,
		FirstName:             c.FirstName,
		LastName:              c.LastName,
		Identification:        c.Identification,
		TaxOffice:             c.TaxOffice,
		Address:               c.Address,
		SubscriptionType:      c.SubscriptionType,
		SubscriptionDuration:  c.SubscriptionDuration,
		SubscriptionStartDate: c.SubscriptionStartDate.String(),
		PaymentType:           c.PaymentType,
		Amount:                c.Amount.StringFixed(2),
		Description:           c.Description,
		AgreementStatus:       string(status),
		CreatedAt:             c.CreatedAt,
	}
}

func NewCustomerListResponse(cs []*customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewCustomerResponse(c))
	}
	return out
}

type ReferenceItemResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func NewReferenceListResponse(items []customer.ReferenceItem) []ReferenceItemResponse {
	out := make([]ReferenceItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ReferenceItemResponse{ID: it.ID, Name: it.Name})
	}
	return out
}
