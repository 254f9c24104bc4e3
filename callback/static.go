// Package callback provides callback handlers answering the name and
// password callbacks raised by login modules.
package callback

import (
	"context"

	"github.com/shrinex/warden/authc"
)

// StaticHandler answers with fixed credentials
type StaticHandler struct {
	Name     string
	Password []rune
}

var _ authc.CallbackHandler = (*StaticHandler)(nil)

func (h *StaticHandler) Handle(ctx context.Context, callbacks ...authc.Callback) error {
	for _, cb := range callbacks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch c := cb.(type) {
		case *authc.NameCallback:
			c.SetName(h.Name)
		case *authc.PasswordCallback:
			c.SetPassword(h.Password)
		default:
			return &authc.UnsupportedCallbackError{Callback: cb}
		}
	}

	return nil
}

// Wipe clears the held password
func (h *StaticHandler) Wipe() {
	clear(h.Password)
	h.Password = nil
}
