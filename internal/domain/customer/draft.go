package customer

import (
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	// A zero Date counts as empty for "required".
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(Date); ok {
			return d.String()
		}
		return nil
	}, Date{})

	v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" {
			return true
		}
		_, err := decimal.NewFromString(normalizeAmount(s))
		return err == nil
	})

	v.RegisterValidation("agreement", func(fl validator.FieldLevel) bool {
		return AgreementStatus(fl.Field().String()).Valid()
	})

	return v
}

// Draft holds the Add-Customer form exactly as entered. Picker selections are
// kept as the string ids the pickers produce.
type Draft struct {
	Username              string `form:"username" validate:"required"`
	FirstName             string `form:"first_name" validate:"required"`
	LastName              string `form:"last_name" validate:"required"`
	Identification        string `form:"identification"`
	TaxOffice             string `form:"tax_office"`
	Address               string `form:"address" validate:"required"`
	SubscriptionType      string `form:"subscriptionType" validate:"required,number"`
	SubscriptionDuration  string `form:"subscriptionDuration" validate:"required,number"`
	SubscriptionStartDate Date   `form:"subscriptionStartDate" validate:"required"`
	PaymentType           string `form:"paymentType" validate:"required,number"`
	Amount                string `form:"amount" validate:"required,decimal"`
	Description           string `form:"description"`
	AgreementStatus       string `form:"agreementStatus" validate:"required,agreement"`
}

// NewDraft returns an empty form whose start date defaults to today.
func NewDraft() Draft {
	return Draft{SubscriptionStartDate: Today()}
}

// Validate reports every missing or malformed field. It never touches the
// network.
func (d *Draft) Validate() error {
	trimmed := *d
	trimmed.Username = strings.TrimSpace(d.Username)
	trimmed.FirstName = strings.TrimSpace(d.FirstName)
	trimmed.LastName = strings.TrimSpace(d.LastName)
	trimmed.Address = strings.TrimSpace(d.Address)
	trimmed.Amount = strings.TrimSpace(d.Amount)
	return toFieldErrors(validate.Struct(&trimmed))
}

// Payload turns a valid draft into the create request for representative
// repID.
func (d *Draft) Payload(repID int64) (*CreateRequest, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if repID <= 0 {
		return nil, apperrors.ErrNotAuthenticated
	}

	amount, err := decimal.NewFromString(normalizeAmount(strings.TrimSpace(d.Amount)))
	if err != nil {
		return nil, apperrors.NewValidationError("amount", "must be a number")
	}

	ids := make([]int64, 0, 3)
	for _, f := range []struct{ name, value string }{
		{"subscriptionType", d.SubscriptionType},
		{"subscriptionDuration", d.SubscriptionDuration},
		{"paymentType", d.PaymentType},
	} {
		id, err := strconv.ParseInt(f.value, 10, 64)
		if err != nil {
			return nil, apperrors.NewValidationError(f.name, "must be an id")
		}
		ids = append(ids, id)
	}

	return &CreateRequest{
		Username:              strings.TrimSpace(d.Username),
		FirstName:             strings.TrimSpace(d.FirstName),
		LastName:              strings.TrimSpace(d.LastName),
		Identification:        d.Identification,
		TaxOffice:             d.TaxOffice,
		Address:               strings.TrimSpace(d.Address),
		SubscriptionType:      ids[0],
		SubscriptionDuration:  ids[1],
		SubscriptionStartDate: d.SubscriptionStartDate,
		PaymentType:           ids[2],
		Amount:                amount,
		Description:           d.Description,
		AgreementStatus:       AgreementStatus(d.AgreementStatus),
		Rep:                   repID,
	}, nil
}

// CreateRequest is the POST /api/customers/ body.
type CreateRequest struct {
	Username              string          `json:"username" validate:"required,max=150"`
	FirstName             string          `json:"first_name" validate:"required,max=150"`
	LastName              string          `json:"last_name" validate:"required,max=150"`
	Identification        string          `json:"identification" validate:"max=100"`
	TaxOffice             string          `json:"tax_office" validate:"max=150"`
	Address               string          `json:"address" validate:"required"`
	SubscriptionType      int64           `json:"subscription_type" validate:"required,gt=0"`
	SubscriptionDuration  int64           `json:"subscription_duration" validate:"required,gt=0"`
	SubscriptionStartDate Date            `json:"subscription_start_date" validate:"required"`
	PaymentType           int64           `json:"payment_type" validate:"required,gt=0"`
	Amount                decimal.Decimal `json:"amount"`
	Description           string          `json:"description"`
	AgreementStatus       AgreementStatus `json:"agreement_status" validate:"required,agreement"`
	Rep                   int64           `json:"rep" validate:"required,gt=0"`
}

func (r *CreateRequest) Validate() error {
	if err := toFieldErrors(validate.Struct(r)); err != nil {
		return err
	}
	// max_digits=10, decimal_places=2 on the backend model
	if r.Amount.Exponent() < -2 || r.Amount.Abs().GreaterThanOrEqual(decimal.New(1, 8)) {
		return apperrors.FieldErrors{{Field: "amount", Message: "must have at most 8 integer and 2 fractional digits"}}
	}
	return nil
}

// ToCustomer builds the record the backend stores for this request.
func (r *CreateRequest) ToCustomer() *Customer {
	return &Customer{
		Rep:                   r.Rep,
		Username:              r.Username,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Identification:        optional(r.Identification),
		TaxOffice:             optional(r.TaxOffice),
		Address:               r.Address,
		SubscriptionType:      &r.SubscriptionType,
		SubscriptionDuration:  &r.SubscriptionDuration,
		SubscriptionStartDate: r.SubscriptionStartDate,
		PaymentType:           &r.PaymentType,
		Amount:                r.Amount,
		Description:           optional(r.Description),
		AgreementStatus:       r.AgreementStatus,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// normalizeAmount accepts a decimal comma as typed on Turkish keyboards.
func normalizeAmount(s string) string {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		return strings.Replace(s, ",", ".", 1)
	}
	return s
}

func toFieldErrors(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(apperrors.FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &apperrors.ValidationError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "number", "gt":
		return "must be a valid id"
	case "decimal":
		return "must be a number"
	case "agreement":
		return "must be one of beklemede, olumlu, olumsuz"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}
