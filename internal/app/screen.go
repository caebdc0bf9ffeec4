package app

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/session"
	"crm-rep/internal/domain/user"
)

type Screen int

const (
	ScreenLogin Screen = iota
	ScreenHome
	ScreenCustomers
	ScreenAddCustomer
)

func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "Login"
	case ScreenHome:
		return "Home"
	case ScreenCustomers:
		return "Customers"
	case ScreenAddCustomer:
		return "AddCustomer"
	}
	return "Unknown"
}

// Title is the heading shown for the screen.
func (s Screen) Title() string {
	switch s {
	case ScreenLogin:
		return "Temsilci Giriş"
	case ScreenHome:
		return "Ana Sayfa"
	case ScreenCustomers:
		return "Müşteri Listesi"
	case ScreenAddCustomer:
		return "Müşteri Ekle"
	}
	return s.String()
}

// Alert is a blocking message shown to the representative.
type Alert struct {
	Title   string
	Message string
	// Fields lists the offending form fields for validation alerts.
	Fields []string
}

func (a Alert) IsZero() bool {
	return a.Title == "" && a.Message == ""
}

const (
	titleError      = "Hata"
	titleLoginError = "Giriş Hatası"
	titleSuccess    = "Başarılı"

	msgInvalidCredentials = "Kullanıcı adı veya şifre hatalı."
	msgUserFetchFailed    = "Kullanıcı bilgileri alınamadı."
	msgLoginFailed        = "Giriş yapılırken bir hata oluştu."

	msgRequiredFields    = "Lütfen tüm zorunlu alanları doldurun."
	msgLoginFirst        = "Lütfen önce giriş yapınız."
	msgCustomerCreated   = "Müşteri başarıyla eklendi!"
	msgCreateRejected    = "Müşteri eklenemedi. Status: "
	msgCreateFailed      = "Müşteri eklenirken bir hata oluştu."
	msgSubmitInProgress  = "Kayıt işlemi devam ediyor."
	MsgCustomersLoading  = "Müşteriler yükleniyor..."
	MsgCustomersFailed   = "Müşteriler yüklenirken bir hata oluştu"
	MsgCustomersEmpty    = "Henüz müşteri eklenmemiş"
	ActionRetry          = "Tekrar Dene"
	ActionAddNewCustomer = "Yeni Müşteri Ekle"
)

// API is everything the screens need from the backend.
type API interface {
	customer.Gateway

	ExchangeCredentials(ctx context.Context, username, password string) (session.Tokens, error)

	FetchCurrentUser(ctx context.Context, token string) (*user.User, error)

	RefreshAccessToken(ctx context.Context, refresh string) (string, error)
}
