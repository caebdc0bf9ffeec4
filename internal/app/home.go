package app

import (
	"crm-rep/internal/domain/session"
)

type HomeScreen struct {
	store *session.Store
	nav   *Navigator
}

func NewHomeScreen(store *session.Store, nav *Navigator) *HomeScreen {
	return &HomeScreen{store: store, nav: nav}
}

func (h *HomeScreen) Greeting() string {
	u := h.store.User()
	if u == nil {
		return ""
	}
	return "Hoş geldiniz, " + u.DisplayName()
}

// Menu lists the screens the drawer offers, excluding Home itself.
func (h *HomeScreen) Menu() []Screen {
	var out []Screen
	for _, s := range h.nav.Screens() {
		if s != ScreenHome {
			out = append(out, s)
		}
	}
	return out
}
