package console

import (
	"bufio"
	"context"
	"crm-rep/internal/app"
	"crm-rep/internal/domain/customer"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

var errQuit = errors.New("quit")

// Console drives the client screens over a line-oriented terminal.
type Console struct {
	app    *app.App
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger

	shown app.Screen
}

func New(a *app.App, in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		app:    a,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger.With(slog.String("component", "console")),
		shown:  -1,
	}
}

// Run loops until the input ends, the user quits, or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		screen := c.app.Navigator.Current()
		if screen != c.shown {
			c.enter(ctx, screen)
		}

		var err error
		switch screen {
		case app.ScreenLogin:
			err = c.login(ctx)
		case app.ScreenHome:
			err = c.home()
		case app.ScreenCustomers:
			err = c.customers(ctx)
		case app.ScreenAddCustomer:
			err = c.addCustomer(ctx)
		}
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			c.leave()
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) enter(ctx context.Context, screen app.Screen) {
	c.leave()
	c.shown = screen
	c.printf("\n=== %s ===\n", screen.Title())

	switch screen {
	case app.ScreenCustomers:
		c.app.Customers.Mount(ctx)
	case app.ScreenAddCustomer:
		c.app.AddCustomer.Mount(ctx)
	}
}

func (c *Console) leave() {
	if c.shown == app.ScreenCustomers {
		c.app.Customers.Unmount()
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) showAlert(a app.Alert) {
	if a.IsZero() {
		return
	}
	c.printf("[%s] %s\n", a.Title, a.Message)
	if len(a.Fields) > 0 {
		c.printf("  alanlar: %s\n", strings.Join(a.Fields, ", "))
	}
}

func (c *Console) readLine(prompt string) (string, error) {
	c.printf("%s", prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) login(ctx context.Context) error {
	username, err := c.readLine("Kullanıcı Adı: ")
	if err != nil {
		return err
	}
	if username == "q" {
		return errQuit
	}
	password, err := c.readLine("Şifre: ")
	if err != nil {
		return err
	}
	c.showAlert(c.app.Login.Submit(ctx, username, password))
	return nil
}

func (c *Console) home() error {
	c.printf("%s\n", c.app.Home.Greeting())
	menu := c.app.Home.Menu()
	for i, s := range menu {
		c.printf("  %d) %s\n", i+1, s.Title())
	}
	c.printf("  c) Çıkış Yap\n  q) Kapat\n")

	choice, err := c.readLine("> ")
	if err != nil {
		return err
	}
	switch choice {
	case "q":
		return errQuit
	case "c":
		c.app.Logout()
		return nil
	}
	if n, convErr := strconv.Atoi(choice); convErr == nil && n >= 1 && n <= len(menu) {
		return c.navigate(menu[n-1])
	}
	c.printf("Geçersiz seçim\n")
	return nil
}

func (c *Console) navigate(to app.Screen) error {
	if err := c.app.Navigator.Navigate(to); err != nil {
		c.printf("%v\n", err)
	}
	return nil
}

func (c *Console) customers(ctx context.Context) error {
	view := c.app.Customers.View()
	c.renderCustomers(view)

	choice, err := c.readLine("> ")
	if err != nil {
		return err
	}
	switch {
	case choice == "q":
		return errQuit
	case choice == "b":
		c.app.Navigator.Back()
	case choice == "r":
		c.app.Customers.Refresh(ctx)
	case choice == "t" && view.State == app.StateError:
		c.app.Customers.Retry(ctx)
	case choice == "y":
		if err := c.app.Customers.AddNew(); err != nil {
			c.printf("%v\n", err)
		}
	default:
		c.printf("Geçersiz seçim\n")
	}
	return nil
}

func (c *Console) renderCustomers(v app.CustomersView) {
	switch v.State {
	case app.StateLoading:
		c.printf("%s\n", v.Message)
	case app.StateError:
		c.printf("%s\n  t) %s\n", v.Message, v.Action)
	case app.StateEmpty:
		c.printf("%s\n  y) %s\n", v.Message, v.Action)
	case app.StatePopulated:
		for _, cu := range v.Customers {
			c.printf("  [%s] %s - %s (%s)\n", cu.Initials(), cu.FullName(), cu.Address, cu.AgreementStatus.Label())
			if !cu.SubscriptionStartDate.IsZero() {
				c.printf("       Abonelik: %s\n", cu.SubscriptionStartDate.Display())
			}
		}
		c.printf("  y) %s\n", app.ActionAddNewCustomer)
	}
	c.printf("  r) Yenile  b) Geri  q) Kapat\n")
}

func (c *Console) addCustomer(ctx context.Context) error {
	c.app.AddCustomer.Sync(ctx)
	c.printf("  f) Formu doldur  g) Kaydet  b) Geri  q) Kapat\n")

	choice, err := c.readLine("> ")
	if err != nil {
		return err
	}
	switch choice {
	case "q":
		return errQuit
	case "b":
		c.app.Navigator.Back()
	case "f":
		return c.fillForm()
	case "g":
		alert, _ := c.app.AddCustomer.Submit(ctx)
		c.showAlert(alert)
	default:
		c.printf("Geçersiz seçim\n")
	}
	return nil
}

// fillForm prompts for every field; an empty answer keeps the current value.
// Picker answers must be one of the loaded options.
func (c *Console) fillForm() error {
	d := c.app.AddCustomer.Draft()
	refs := c.app.AddCustomer.References()

	text := []struct {
		label string
		field *string
	}{
		{"Kullanıcı Adı", &d.Username},
		{"Ad", &d.FirstName},
		{"Soyad", &d.LastName},
		{"TC / Vergi No", &d.Identification},
		{"Vergi Dairesi", &d.TaxOffice},
		{"Adres", &d.Address},
	}
	for _, f := range text {
		if err := c.prompt(f.label, f.field); err != nil {
			return err
		}
	}

	pickers := []struct {
		label   string
		kind    customer.ReferenceKind
		current string
	}{
		{"Abonelik Türü", customer.SubscriptionTypes, d.SubscriptionType},
		{"Abonelik Süresi", customer.SubscriptionDurations, d.SubscriptionDuration},
		{"Ödeme Türü", customer.PaymentTypes, d.PaymentType},
	}
	for _, p := range pickers {
		if err := c.pick(p.label, p.kind, refs.Items(p.kind), p.current); err != nil {
			return err
		}
	}

	date := d.SubscriptionStartDate.String()
	if err := c.prompt("Abonelik Başlangıç (YYYY-MM-DD)", &date); err != nil {
		return err
	}
	if parsed, err := customer.ParseDate(date); err == nil {
		d.SubscriptionStartDate = parsed
	} else if date != "" {
		c.printf("Geçersiz tarih, önceki değer korunuyor\n")
	}

	if err := c.prompt("Tutar", &d.Amount); err != nil {
		return err
	}
	if err := c.prompt("Açıklama", &d.Description); err != nil {
		return err
	}
	for _, o := range refs.AgreementStatuses {
		c.printf("    %s) %s\n", o.Value, o.Label)
	}
	if err := c.prompt("Anlaşma Durumu", &d.AgreementStatus); err != nil {
		return err
	}

	// Picker fields were already set through SelectReference.
	c.app.AddCustomer.Edit(func(draft *customer.Draft) {
		d.SubscriptionType = draft.SubscriptionType
		d.SubscriptionDuration = draft.SubscriptionDuration
		d.PaymentType = draft.PaymentType
		*draft = d
	})
	return nil
}

// pick asks for a picker id until it names a loaded option. An empty answer
// keeps current.
func (c *Console) pick(label string, kind customer.ReferenceKind, items []customer.ReferenceItem, current string) error {
	for _, it := range items {
		c.printf("    %d) %s\n", it.ID, it.Name)
	}
	for {
		v := current
		if err := c.prompt(label, &v); err != nil {
			return err
		}
		if v == current {
			return nil
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.printf("Geçersiz seçim: %q bir numara değil\n", v)
			continue
		}
		if err := c.app.AddCustomer.SelectReference(kind, id); err != nil {
			c.logger.Debug("Picker selection rejected", slog.String("kind", kind.String()), slog.Int64("id", id), slog.Any("error", err))
			c.printf("Geçersiz seçim: %d listede yok\n", id)
			continue
		}
		return nil
	}
}

func (c *Console) prompt(label string, field *string) error {
	p := label + ": "
	if *field != "" {
		p = fmt.Sprintf("%s [%s]: ", label, *field)
	}
	v, err := c.readLine(p)
	if err != nil {
		return err
	}
	if v != "" {
		*field = v
	}
	return nil
}
