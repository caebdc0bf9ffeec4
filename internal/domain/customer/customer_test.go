package customer_test

import (
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/pkg/apperrors"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgreementStatus(t *testing.T) {
	opts := customer.AgreementStatusOptions()
	require.Len(t, opts, 3)
	assert.Equal(t, customer.AgreementPending, opts[0].Value)

	assert.True(t, customer.AgreementNegative.Valid())
	assert.False(t, customer.AgreementStatus("iptal").Valid())
	assert.Equal(t, "Beklemede", customer.AgreementStatus("").Label())
	assert.Equal(t, "Olumlu", customer.AgreementPositive.Label())
}

func TestCustomer_Names(t *testing.T) {
	c := &customer.Customer{FirstName: "ayşe", LastName: "Yılmaz"}
	assert.Equal(t, "ayşe Yılmaz", c.FullName())
	assert.Equal(t, "AY", c.Initials())
	assert.Equal(t, "", (&customer.Customer{}).Initials())
}

func TestCustomer_DecodeBackendShape(t *testing.T) {
	body := `{"id":3,"rep":7,"username":"acme","first_name":"Ali","last_name":"Kaya",
		"identification":null,"tax_office":"Kadıköy","address":"x",
		"subscription_type":1,"subscription_duration":2,
		"subscription_start_date":"2025-03-14","payment_type":3,
		"amount":"1250.50","description":null,"agreement_status":"olumlu",
		"created_at":"2025-03-14T10:00:00Z"}`

	var c customer.Customer
	require.NoError(t, json.Unmarshal([]byte(body), &c))

	assert.Equal(t, int64(3), c.ID)
	assert.Nil(t, c.Identification)
	require.NotNil(t, c.TaxOffice)
	assert.Equal(t, "Kadıköy", *c.TaxOffice)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("1250.5")))
	assert.Equal(t, "14.03.2025", c.SubscriptionStartDate.Display())
	assert.Equal(t, customer.AgreementPositive, c.AgreementStatus)
}

func TestCustomer_DecodeCreatedAt(t *testing.T) {
	local := func(y int, mo time.Month, d, h, mi, s, ns int) time.Time {
		return time.Date(y, mo, d, h, mi, s, ns, time.Local)
	}
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339 utc", `"2025-03-14T10:00:00Z"`, time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)},
		{"rfc3339 offset", `"2025-03-14T13:00:00+03:00"`, time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)},
		{"naive with microseconds", `"2024-05-01T10:11:12.123456"`, local(2024, 5, 1, 10, 11, 12, 123456000)},
		{"naive with space", `"2024-05-01 10:11:12"`, local(2024, 5, 1, 10, 11, 12, 0)},
		{"null", `null`, time.Time{}},
		{"garbage", `"yesterday"`, time.Time{}},
		{"number", `1714558272`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"id":3,"first_name":"Ali","amount":"1.00","subscription_start_date":"2025-03-14","created_at":` + tt.raw + `}`

			var c customer.Customer
			require.NoError(t, json.Unmarshal([]byte(body), &c))

			assert.Equal(t, int64(3), c.ID)
			assert.Equal(t, "Ali", c.FirstName)
			assert.True(t, tt.want.Equal(c.CreatedAt), "got %s", c.CreatedAt)
		})
	}
}

func TestDate_RoundTrip(t *testing.T) {
	d := customer.DateOf(time.Date(2025, time.January, 5, 23, 30, 0, 0, time.FixedZone("TRT", 3*3600)))
	assert.Equal(t, "2025-01-05", d.String())

	raw, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-01-05"`, string(raw))

	var echoed customer.Date
	require.NoError(t, json.Unmarshal(raw, &echoed))
	assert.Equal(t, d, echoed)
	assert.Equal(t, "05.01.2025", echoed.Display())
}

func TestDate_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    customer.Date
		wantErr bool
	}{
		{"null", `null`, customer.Date{}, false},
		{"empty", `""`, customer.Date{}, false},
		{"timestamp", `"2024-12-31T21:00:00Z"`, customer.Date{Year: 2024, Month: 12, Day: 31}, false},
		{"garbage", `"31/12/2024"`, customer.Date{}, true},
		{"number", `20241231`, customer.Date{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d customer.Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}

	raw, err := json.Marshal(customer.Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(raw))
}

func TestReferenceKind(t *testing.T) {
	assert.Len(t, customer.ReferenceKinds(), 3)
	assert.Equal(t, "/api/payment-types/", customer.PaymentTypes.Path())
	assert.Equal(t, "subscription_durations", customer.SubscriptionDurations.String())
	assert.False(t, customer.ReferenceKind(0).Valid())

	items := []customer.ReferenceItem{{ID: 1, Name: "Aylık"}, {ID: 2, Name: "Yıllık"}}
	it, ok := customer.FindReference(items, 2)
	assert.True(t, ok)
	assert.Equal(t, "Yıllık", it.Name)
	_, ok = customer.FindReference(items, 9)
	assert.False(t, ok)
}

func filledDraft() customer.Draft {
	d := customer.NewDraft()
	d.Username = "acme"
	d.FirstName = "Ayşe"
	d.LastName = "Yılmaz"
	d.Address = "Kadıköy"
	d.SubscriptionType = "1"
	d.SubscriptionDuration = "2"
	d.PaymentType = "3"
	d.Amount = "1250,50"
	d.AgreementStatus = string(customer.AgreementPending)
	return d
}

func TestDraft_Validate(t *testing.T) {
	t.Run("complete draft passes", func(t *testing.T) {
		d := filledDraft()
		assert.NoError(t, d.Validate())
	})

	t.Run("defaults start date to today", func(t *testing.T) {
		assert.Equal(t, customer.Today(), customer.NewDraft().SubscriptionStartDate)
	})

	required := map[string]func(d *customer.Draft){
		"username":              func(d *customer.Draft) { d.Username = "  " },
		"first_name":            func(d *customer.Draft) { d.FirstName = "" },
		"last_name":             func(d *customer.Draft) { d.LastName = "" },
		"address":               func(d *customer.Draft) { d.Address = "" },
		"subscriptionStartDate": func(d *customer.Draft) { d.SubscriptionStartDate = customer.Date{} },
		"amount":                func(d *customer.Draft) { d.Amount = "" },
		"subscriptionType":      func(d *customer.Draft) { d.SubscriptionType = "" },
		"subscriptionDuration":  func(d *customer.Draft) { d.SubscriptionDuration = "" },
		"paymentType":           func(d *customer.Draft) { d.PaymentType = "" },
		"agreementStatus":       func(d *customer.Draft) { d.AgreementStatus = "" },
	}
	for field, blank := range required {
		t.Run("missing "+field, func(t *testing.T) {
			d := filledDraft()
			blank(&d)

			err := d.Validate()

			require.ErrorIs(t, err, apperrors.ErrValidation)
			var fe apperrors.FieldErrors
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, []string{field}, fe.Fields())
		})
	}

	t.Run("optional fields may be empty", func(t *testing.T) {
		d := filledDraft()
		d.Identification, d.TaxOffice, d.Description = "", "", ""
		assert.NoError(t, d.Validate())
	})

	t.Run("non-numeric amount", func(t *testing.T) {
		d := filledDraft()
		d.Amount = "on bin"
		var fe apperrors.FieldErrors
		require.ErrorAs(t, d.Validate(), &fe)
		assert.Equal(t, []string{"amount"}, fe.Fields())
	})

	t.Run("unknown agreement status", func(t *testing.T) {
		d := filledDraft()
		d.AgreementStatus = "iptal"
		assert.ErrorIs(t, d.Validate(), apperrors.ErrValidation)
	})
}

func TestDraft_Payload(t *testing.T) {
	t.Run("builds request", func(t *testing.T) {
		d := filledDraft()
		d.SubscriptionStartDate = customer.Date{Year: 2025, Month: 3, Day: 14}
		d.TaxOffice = "Kadıköy VD"

		req, err := d.Payload(7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), req.Rep)
		assert.Equal(t, int64(1), req.SubscriptionType)
		assert.Equal(t, int64(3), req.PaymentType)
		assert.Equal(t, "1250.5", req.Amount.String())
		assert.NoError(t, req.Validate())

		raw, err := json.Marshal(req)
		require.NoError(t, err)
		var wire map[string]any
		require.NoError(t, json.Unmarshal(raw, &wire))
		assert.Equal(t, "2025-03-14", wire["subscription_start_date"])
		assert.Equal(t, "1250.5", wire["amount"])
		assert.Equal(t, float64(7), wire["rep"])
		assert.Equal(t, "beklemede", wire["agreement_status"])

		c := req.ToCustomer()
		require.NotNil(t, c.TaxOffice)
		assert.Nil(t, c.Identification)
	})

	t.Run("requires a representative", func(t *testing.T) {
		d := filledDraft()
		_, err := d.Payload(0)
		assert.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	})

	t.Run("invalid draft", func(t *testing.T) {
		d := customer.NewDraft()
		_, err := d.Payload(7)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}
