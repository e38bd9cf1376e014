package handler

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const flashSession = "linkpay_flash"

// Flash is a one-shot message surfaced on the next page render.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

func addFlash(store sessions.Store, c echo.Context, kind, message string) {
	sess, _ := store.Get(c.Request(), flashSession)
	sess.AddFlash(message, kind)
	_ = sess.Save(c.Request(), c.Response())
}

// takeFlashes drains pending flash messages for the current visitor.
func takeFlashes(store sessions.Store, c echo.Context) []Flash {
	sess, err := store.Get(c.Request(), flashSession)
	if err != nil {
		return nil
	}
	var out []Flash
	for _, kind := range []string{"success", "error"} {
		for _, raw := range sess.Flashes(kind) {
			if msg, ok := raw.(string); ok {
				out = append(out, Flash{Kind: kind, Message: msg})
			}
		}
	}
	_ = sess.Save(c.Request(), c.Response())
	return out
}
