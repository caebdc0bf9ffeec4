package handler_test

import (
	"context"
	"crm-rep/internal/api/handler"
	"crm-rep/internal/api/handler/dto"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validBody = `{
	"username": "acme",
	"first_name": "Ali",
	"last_name": "Kaya",
	"identification": "",
	"tax_office": "",
	"address": "Kadıköy",
	"subscription_type": 1,
	"subscription_duration": 2,
	"subscription_start_date": "2025-03-14",
	"payment_type": 3,
	"amount": "1250.50",
	"description": "",
	"agreement_status": "olumlu",
	"rep": 7
}`

func setupCustomerHandler() (*MockCustomerService, *MockUserService, *handler.CustomerHandler) {
	svc := new(MockCustomerService)
	users := new(MockUserService)
	return svc, users, handler.NewCustomerHandler(svc, users, logger)
}

func TestCustomerHandler_CreateCustomer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, users, h := setupCustomerHandler()
		users.On("Get", mock.Anything, int64(7)).Return(&user.User{ID: 7}, nil).Once()
		svc.On("Create", mock.Anything, mock.MatchedBy(func(r *customer.CreateRequest) bool {
			return r.Username == "acme" && r.Rep == 7 && r.Amount.Equal(decimal.RequireFromString("1250.5")) &&
				r.SubscriptionStartDate == customer.Date{Year: 2025, Month: time.March, Day: 14}
		})).Return(func(_ context.Context, r *customer.CreateRequest) *customer.Customer {
			c := r.ToCustomer()
			c.ID = 42
			return c
		}, nil).Once()

		w := postJSON(h.CreateCustomer, "/api/customers/", validBody)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp dto.CustomerResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, "1250.50", resp.Amount)
		assert.Equal(t, "2025-03-14", resp.SubscriptionStartDate)
		assert.Equal(t, "olumlu", resp.AgreementStatus)
		assert.Nil(t, resp.Identification)
		svc.AssertExpectations(t)
	})

	t.Run("Error - Missing Fields", func(t *testing.T) {
		svc, _, h := setupCustomerHandler()

		w := postJSON(h.CreateCustomer, "/api/customers/", `{"username":"acme"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		detail := decodeError(t, w)
		for _, field := range []string{"first_name", "last_name", "address", "subscription_type", "amount", "rep"} {
			assert.Contains(t, detail.Fields, field)
		}
		assert.NotContains(t, detail.Fields, "agreement_status", "missing status defaults to pending")
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Unknown Field", func(t *testing.T) {
		_, _, h := setupCustomerHandler()
		w := postJSON(h.CreateCustomer, "/api/customers/", `{"nickname":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error - Unknown Rep", func(t *testing.T) {
		svc, users, h := setupCustomerHandler()
		users.On("Get", mock.Anything, int64(7)).Return(nil, user.ErrNotFound).Once()

		w := postJSON(h.CreateCustomer, "/api/customers/", validBody)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w).Fields, "rep")
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Error - Duplicate Username", func(t *testing.T) {
		svc, users, h := setupCustomerHandler()
		users.On("Get", mock.Anything, int64(7)).Return(&user.User{ID: 7}, nil).Once()
		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, apperrors.FieldErrors{{Field: "username", Message: customer.ErrDuplicateUsername.Error()}}).Once()

		w := postJSON(h.CreateCustomer, "/api/customers/", validBody)

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, []string{customer.ErrDuplicateUsername.Error()}, decodeError(t, w).Fields["username"])
	})

	t.Run("Error - Service Failure", func(t *testing.T) {
		svc, users, h := setupCustomerHandler()
		users.On("Get", mock.Anything, int64(7)).Return(&user.User{ID: 7}, nil).Once()
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		w := postJSON(h.CreateCustomer, "/api/customers/", validBody)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCustomerHandler_ListCustomers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, _, h := setupCustomerHandler()
		svc.On("List", mock.Anything).Return([]*customer.Customer{
			{ID: 1, FirstName: "Ali", LastName: "Kaya", Amount: decimal.NewFromInt(10)},
		}, nil).Once()

		w := httptest.NewRecorder()
		h.ListCustomers(w, httptest.NewRequest(http.MethodGet, "/api/customers/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp []dto.CustomerResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "10.00", resp[0].Amount)
		assert.Equal(t, "beklemede", resp[0].AgreementStatus)
	})

	t.Run("Empty list is an empty array", func(t *testing.T) {
		svc, _, h := setupCustomerHandler()
		svc.On("List", mock.Anything).Return([]*customer.Customer{}, nil).Once()

		w := httptest.NewRecorder()
		h.ListCustomers(w, httptest.NewRequest(http.MethodGet, "/api/customers/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("Error", func(t *testing.T) {
		svc, _, h := setupCustomerHandler()
		svc.On("List", mock.Anything).Return(nil, errors.New("db down")).Once()

		w := httptest.NewRecorder()
		h.ListCustomers(w, httptest.NewRequest(http.MethodGet, "/api/customers/", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCustomerHandler_GetCustomer(t *testing.T) {
	serve := func(h *handler.CustomerHandler, id string) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Get("/api/customers/{customerID}/", h.GetCustomer)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers/"+id+"/", nil))
		return w
	}

	t.Run("Success", func(t *testing.T) {
		svc, _, h := setupCustomerHandler()
		svc.On("Get", mock.Anything, int64(5)).Return(&customer.Customer{ID: 5}, nil).Once()
		assert.Equal(t, http.StatusOK, serve(h, "5").Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		svc, _, h := setupCustomerHandler()
		svc.On("Get", mock.Anything, int64(5)).Return(nil, customer.ErrNotFound).Once()
		assert.Equal(t, http.StatusNotFound, serve(h, "5").Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		_, _, h := setupCustomerHandler()
		assert.Equal(t, http.StatusBadRequest, serve(h, "abc").Code)
	})
}

func TestCustomerHandler_ListReference(t *testing.T) {
	svc, _, h := setupCustomerHandler()
	svc.On("ListReference", mock.Anything, customer.PaymentTypes).
		Return([]customer.ReferenceItem{{ID: 1, Name: "Kredi Kartı"}}, nil).Once()
	svc.On("ListReference", mock.Anything, customer.SubscriptionTypes).
		Return(nil, errors.New("db down")).Once()

	w := httptest.NewRecorder()
	h.ListReference(customer.PaymentTypes)(w, httptest.NewRequest(http.MethodGet, "/api/payment-types/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Kredi Kartı"}]`, w.Body.String())

	w = httptest.NewRecorder()
	h.ListReference(customer.SubscriptionTypes)(w, httptest.NewRequest(http.MethodGet, "/api/subscription-types/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
