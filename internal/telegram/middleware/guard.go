package middleware

import (
	"log/slog"

	"github.com/pulsedelivery/orderbot/internal/guard"
	"github.com/pulsedelivery/orderbot/internal/logger"
	tghelpers "github.com/pulsedelivery/orderbot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// GuardOptions wires the protection controller into the update pipeline.
type GuardOptions struct {
	Controller *guard.Controller
	// AdminID bypasses every check so the admin can always reach the bot,
	// including while it is paused.
	AdminID int64
	// OnLimited, if set, answers a throttled user.
	OnLimited tele.HandlerFunc
	// OnAutoBan is invoked once when a flooding user gets blacklisted,
	// letting the caller persist the ban and notify the admin.
	OnAutoBan func(c tele.Context, userID int64)
}

// GuardMiddleware consults the protection controller before every update.
// Dropped updates produce no reply except the optional throttle notice.
func GuardMiddleware(opts GuardOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Controller == nil {
				return next(c)
			}
			if opts.AdminID != 0 && user.ID == opts.AdminID {
				return next(c)
			}

			verdict := opts.Controller.Check(user.ID)
			if verdict == guard.Allow {
				return next(c)
			}

			ctx := tghelpers.BuildContext(c)
			logger.Warn(ctx, "guard", "guard.drop",
				slog.String("verdict", verdict.String()),
				slog.Int64("user_id", user.ID),
				slog.String("rid", logger.RIDFrom(ctx)),
			)

			switch verdict {
			case guard.RateLimited:
				if opts.OnLimited != nil {
					return opts.OnLimited(c)
				}
			case guard.AutoBanned:
				if opts.OnAutoBan != nil {
					opts.OnAutoBan(c, user.ID)
				}
			}
			return nil
		}
	}
}
