package router

import (
	"time"

	tg "github.com/pulsedelivery/orderbot/internal/telegram"
	"github.com/pulsedelivery/orderbot/internal/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Conversation is the minimal interface the router needs from the order form:
// whether a user has a form in progress and a handler that consumes the update.
type Conversation interface {
	InProgress(userID int64) bool
	Handle(c tele.Context) error
}

// UpdateOptions controls fallback behaviour for non-command updates.
type UpdateOptions struct {
	// IdleText handles text from users with no active form, after command
	// lookup fails.
	IdleText tele.HandlerFunc
}

// UpdateRoutes builds handlers for text, contact, photo and location updates.
// Everything from a user with an active form goes to the conversation; idle
// text is matched against commands first.
func UpdateRoutes(conv Conversation, reg *tg.Registry, opts UpdateOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()

		if conv != nil && conv.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "form", start, "", "", func() error {
				return conv.Handle(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if opts.IdleText != nil {
			return handleWithSummary(c, "idle_text", start, "", "", func() error {
				return opts.IdleText(c)
			})
		}

		logHandlerSummary(c, "idle_text", start, "skip", "ok", nil)
		return nil
	}

	formOnly := func(name string) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if conv != nil && conv.InProgress(c.Sender().ID) {
				return handleWithSummary(c, name, start, "", "", func() error {
					return conv.Handle(c)
				})
			}
			logHandlerSummary(c, name, start, "skip", "ok", nil)
			return nil
		}
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(textHandler)},
		{Endpoint: tele.OnContact, Handler: wrap(formOnly("form_contact"))},
		{Endpoint: tele.OnPhoto, Handler: wrap(formOnly("form_photo"))},
		{Endpoint: tele.OnLocation, Handler: wrap(formOnly("form_location"))},
	}
}
