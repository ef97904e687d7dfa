package telegram

import (
	"github.com/pulsedelivery/orderbot/internal/guard"
	"github.com/pulsedelivery/orderbot/internal/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the shared middleware chain: recover first, then
// the protection controller, then logging and metrics.
func DefaultMiddlewares(ctrl *guard.Controller, adminID int64, onLimited tele.HandlerFunc, onAutoBan func(tele.Context, int64)) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if ctrl != nil {
		mws = append(mws, Middleware{
			Name: "guard",
			Use: middleware.GuardMiddleware(middleware.GuardOptions{
				Controller: ctrl,
				AdminID:    adminID,
				OnLimited:  onLimited,
				OnAutoBan:  onAutoBan,
			}),
		})
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)

	return mws
}
