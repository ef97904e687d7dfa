// Package bot assembles the order-intake bot: the conversation form, the
// subscription gate, operator notifications and the admin panel.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/pulsedelivery/orderbot/internal/config"
	"github.com/pulsedelivery/orderbot/internal/geo"
	"github.com/pulsedelivery/orderbot/internal/guard"
	"github.com/pulsedelivery/orderbot/internal/logger"
	"github.com/pulsedelivery/orderbot/internal/order"
	"github.com/pulsedelivery/orderbot/internal/session"
	"github.com/pulsedelivery/orderbot/internal/storage"
	tg "github.com/pulsedelivery/orderbot/internal/telegram"
	"github.com/pulsedelivery/orderbot/internal/telegram/callbacks"
	"github.com/pulsedelivery/orderbot/internal/telegram/commands"
	tghelpers "github.com/pulsedelivery/orderbot/internal/telegram/helpers"
	"github.com/pulsedelivery/orderbot/internal/telegram/middleware"
	"github.com/pulsedelivery/orderbot/internal/telegram/router"

	tele "gopkg.in/telebot.v4"
)

// App owns every long-lived component and wires them into the bot runtime.
type App struct {
	cfg *config.Config

	ctrl     *guard.Controller
	sessions session.Manager
	form     *Form
	gate     *Gate
	notifier *Notifier
	admin    *Admin

	blacklist BlacklistStore
	stop      context.CancelFunc
}

// New builds the application from configuration. Optional subsystems
// (database, Redis, geocoder) are wired only when enabled.
func New(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	a := &App{cfg: cfg}
	cleanup := func() {}

	a.ctrl = guard.New(guard.Config{
		Limit:        cfg.RateLimit.Limit,
		Period:       time.Duration(cfg.RateLimit.PeriodSeconds) * time.Second,
		MaxPerMinute: cfg.RateLimit.MaxPerMinute,
	})

	if cfg.Redis.URL != "" {
		mgr, err := session.NewRedisManager(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, cleanup, fmt.Errorf("redis sessions: %w", err)
		}
		a.sessions = mgr
	} else {
		a.sessions = session.NewMemoryManager()
	}

	var geocoder order.Geocoder
	if cfg.Geocoder.Enabled {
		geocoder = geo.NewClient(geo.Config{
			BaseURL:   cfg.Geocoder.BaseURL,
			UserAgent: cfg.Geocoder.UserAgent,
		})
	}
	machine := order.NewMachine(geocoder)

	var store OrderStore
	if cfg.Database.Enabled {
		if err := storage.RunMigrations(cfg.Database); err != nil {
			return nil, cleanup, fmt.Errorf("migrations: %w", err)
		}
		db, err := storage.Connect(cfg.Database)
		if err != nil {
			return nil, cleanup, fmt.Errorf("storage: %w", err)
		}
		cleanup = func() { _ = db.Close() }

		store = storage.NewOrderRepo(db)
		repo := storage.NewBlacklistRepo(db)
		a.blacklist = repo

		ids, err := repo.Load(ctx)
		if err != nil {
			logger.Error(ctx, "guard", "blacklist.load",
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		} else {
			a.ctrl.Load(ids)
			logger.Info(ctx, "guard", "blacklist.load", slog.Int("count", len(ids)))
		}
	}

	a.notifier = NewNotifier(nil, cfg.Telegram.AdminID)
	a.gate = NewGate(nil, cfg.Channel.ID)
	a.form = NewForm(a.sessions, machine, store, a.notifier)

	return a, cleanup, nil
}

// Run starts the bot and blocks until ctx is cancelled or the admin stops it.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.stop = cancel
	a.admin = NewAdmin(a.ctrl, a.sessions, a.blacklist, cancel)

	reg := tg.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)

	routes := router.UpdateRoutes(a.form, reg, router.UpdateOptions{
		IdleText: a.handleIdleText,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendHTML(c, textAdminNoAccess)
		},
	})...)

	middlewares := tg.DefaultMiddlewares(a.ctrl, a.cfg.Telegram.AdminID, a.handleThrottled, a.handleAutoBan)

	return tg.Run(ctx, tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: middlewares,
		Routes:      routes,
		OnStart: func(ctx context.Context, rt tg.Runtime) error {
			a.gate.Bind(rt.Bot)
			a.notifier.Bind(rt.Bot)
			a.notifier.Startup()
			return nil
		},
		OnStop: func(ctx context.Context, rt tg.Runtime) error {
			a.notifier.Shutdown()
			return nil
		},
	})
}

func (a *App) registerCommands(reg *tg.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Почати оформлення замовлення",
		Aliases:     []string{"order"},
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     a.handleHelp,
		Description: "Як користуватися ботом",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.admin.Panel,
		Description: "Панель керування ботом",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/ban", commands.Command{
		Handler:     a.admin.Ban,
		Description: "Заблокувати користувача",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.RegisterCommand("/unban", commands.Command{
		Handler:     a.admin.Unban,
		Description: "Розблокувати користувача",
		AdminOnly:   true,
		Hidden:      true,
	})
}

func (a *App) registerCallbacks(reg *tg.Registry) {
	formChoices := map[string]string{
		cbSelfShip:      order.ChoiceSelfShip,
		cbDelivery:      order.ChoiceDelivery,
		cbManualAddress: order.ChoiceManual,
		cbASAP:          order.ChoiceASAP,
		cbCustomTime:    order.ChoiceCustomTime,
		cbPayCash:       order.ChoiceCash,
		cbPayCashless:   order.ChoiceCashless,
		cbEditOrder:     order.ChoiceEdit,
		cbEnterPromo:    order.ChoicePromo,
		cbSendOrder:     order.ChoiceSubmit,
		cbAddMoreItems:  order.ChoiceAddMore,
		cbFinishEditing: order.ChoiceFinishEdit,
	}
	for key, choice := range formChoices {
		_ = reg.RegisterCallback(key, a.choiceHandler(choice))
	}

	_ = reg.RegisterCallback(cbRemoveItem, func(c tele.Context) error {
		idx, err := callbacks.PayloadInt(c)
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: textOops})
		}
		tghelpers.ClearInlineKeyboard(c)
		return a.form.ApplyEvent(c, order.RemoveItem{Index: idx})
	})

	_ = reg.RegisterCallback(cbCheckSub, a.handleCheckSubscription)
	_ = reg.RegisterCallback(cbAcceptOrder, a.adminOnly(a.notifier.AcceptOrder))

	_ = reg.RegisterCallback(cbAdminPause, a.adminOnly(a.admin.Pause))
	_ = reg.RegisterCallback(cbAdminResume, a.adminOnly(a.admin.Resume))
	_ = reg.RegisterCallback(cbAdminStatus, a.adminOnly(a.admin.Status))
	_ = reg.RegisterCallback(cbAdminBlacklist, a.adminOnly(a.admin.Blacklist))
	_ = reg.RegisterCallback(cbAdminRefresh, a.adminOnly(a.admin.Blacklist))
	_ = reg.RegisterCallback(cbAdminUnblock, a.adminOnly(a.admin.Unblock))
	_ = reg.RegisterCallback(cbAdminStop, a.adminOnly(a.admin.Stop))
	_ = reg.RegisterCallback(cbAdminBack, a.adminOnly(a.admin.Back))
}

func (a *App) choiceHandler(choice string) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.ClearInlineKeyboard(c)
		return a.form.ApplyEvent(c, order.Choice{Key: choice})
	}
}

func (a *App) adminOnly(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})(h)
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if a.gate.Enabled() && !a.gate.Subscribed(ctx, c.Sender().ID) {
		return tghelpers.SendHTML(c, textSubscribeGate, subscribeKb(a.gate.Channel()))
	}
	return a.form.BeginCaptcha(c)
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendHTML(c, textHelp, newOrderKb())
}

func (a *App) handleCheckSubscription(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if !a.gate.Subscribed(ctx, c.Sender().ID) {
		return c.Respond(&tele.CallbackResponse{Text: textSubscribeFirst, ShowAlert: true})
	}
	_ = c.Delete()
	return a.form.BeginCaptcha(c)
}

// handleIdleText answers users with no active form. The repeat-order button
// restarts the form without a captcha; anything else gets a hint.
func (a *App) handleIdleText(c tele.Context) error {
	text := strings.ToLower(strings.TrimSpace(c.Text()))
	if strings.Contains(text, "нове замовлення") {
		ctx := tghelpers.BuildContext(c)
		if a.gate.Enabled() && !a.gate.Subscribed(ctx, c.Sender().ID) {
			return tghelpers.SendHTML(c, textSubscribeGate, subscribeKb(a.gate.Channel()))
		}
		return a.form.BeginOrder(c)
	}
	return tghelpers.SendHTML(c, textIdleHint, newOrderKb())
}

func (a *App) handleThrottled(c tele.Context) error {
	return tghelpers.SendText(c, fmt.Sprintf(textThrottled, a.cfg.RateLimit.PeriodSeconds))
}

func (a *App) handleAutoBan(c tele.Context, userID int64) {
	ctx := tghelpers.BuildContext(c)
	if a.blacklist != nil {
		if err := a.blacklist.Add(ctx, userID); err != nil {
			logger.Error(ctx, "guard", "blacklist.add",
				slog.Int64("user_id", userID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	logger.Warn(ctx, "guard", "guard.auto_ban", slog.Int64("user_id", userID))
	a.notifier.AutoBanned(userID)
}
