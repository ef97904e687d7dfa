package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"log/slog"

	"github.com/pulsedelivery/orderbot/internal/guard"
	"github.com/pulsedelivery/orderbot/internal/logger"
	"github.com/pulsedelivery/orderbot/internal/session"
	"github.com/pulsedelivery/orderbot/internal/telegram/callbacks"
	tghelpers "github.com/pulsedelivery/orderbot/internal/telegram/helpers"
	"github.com/pulsedelivery/orderbot/internal/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// BlacklistStore persists blacklist changes so bans survive restarts.
// A nil store keeps bans in memory only.
type BlacklistStore interface {
	Add(ctx context.Context, userID int64) error
	Remove(ctx context.Context, userID int64) (bool, error)
}

// Admin implements the operator panel: pause/resume, status, blacklist
// management and shutdown.
type Admin struct {
	ctrl      *guard.Controller
	sessions  session.Manager
	blacklist BlacklistStore
	stop      func()
}

func NewAdmin(ctrl *guard.Controller, sessions session.Manager, blacklist BlacklistStore, stop func()) *Admin {
	return &Admin{ctrl: ctrl, sessions: sessions, blacklist: blacklist, stop: stop}
}

// Panel handles the /admin command.
func (a *Admin) Panel(c tele.Context) error {
	return tghelpers.SendHTML(c, textAdminPanel, adminPanelKb(a.ctrl.Running()))
}

// Pause suspends update processing for everyone except the operator.
func (a *Admin) Pause(c tele.Context) error {
	a.ctrl.Pause()
	_ = c.Respond(&tele.CallbackResponse{Text: textAdminPaused})
	return tghelpers.EditHTML(c, textAdminPanel, adminPanelKb(false))
}

// Resume re-enables update processing.
func (a *Admin) Resume(c tele.Context) error {
	a.ctrl.Resume()
	_ = c.Respond(&tele.CallbackResponse{Text: textAdminResumed})
	return tghelpers.EditHTML(c, textAdminPanel, adminPanelKb(true))
}

// Status shows the running flag, active session count and blacklist size.
func (a *Admin) Status(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	count, err := a.sessions.Count(ctx)
	if err != nil {
		logger.Warn(ctx, "svc.orders", "session.count",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}

	state := "🟢 Працює"
	if !a.ctrl.Running() {
		state = "⏸️ Призупинено"
	}
	var b strings.Builder
	b.WriteString("📊 <b>Статус бота:</b>\n\n")
	fmt.Fprintf(&b, "▶️ Стан: %s\n", state)
	fmt.Fprintf(&b, "👥 Активних сесій: %d\n", count)
	fmt.Fprintf(&b, "🚫 У чорному списку: %d\n", len(a.ctrl.Blacklist()))

	return tghelpers.EditHTML(c, b.String(), backKb())
}

// Blacklist shows the current blacklist with per-user unblock buttons.
func (a *Admin) Blacklist(c tele.Context) error {
	ids := a.blacklistIDs()
	return tghelpers.EditHTML(c, renderBlacklist(ids), blacklistKb(ids))
}

func (a *Admin) blacklistIDs() []int64 {
	ids := a.ctrl.Blacklist()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Unblock removes the user from the callback payload from the blacklist.
func (a *Admin) Unblock(c tele.Context) error {
	userID, err := callbacks.PayloadInt64(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textOops})
	}

	ctx := tghelpers.BuildContext(c)
	a.ctrl.Unban(userID)
	if a.blacklist != nil {
		if _, err := a.blacklist.Remove(ctx, userID); err != nil {
			logger.Error(ctx, "guard", "blacklist.remove",
				slog.Int64("user_id", userID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	logger.Info(ctx, "guard", "blacklist.unban", slog.Int64("user_id", userID))

	_ = c.Respond(&tele.CallbackResponse{Text: fmt.Sprintf("✅ Користувача %d розблоковано", userID)})
	return a.Blacklist(c)
}

// Stop cancels the application context; main then shuts the bot down.
func (a *Admin) Stop(c tele.Context) error {
	_ = c.Respond(&tele.CallbackResponse{Text: textAdminStopping})
	if err := tghelpers.EditHTML(c, textAdminStopping); err != nil {
		return err
	}
	if a.stop != nil {
		a.stop()
	}
	return nil
}

// Back returns from a sub-view to the panel root.
func (a *Admin) Back(c tele.Context) error {
	return tghelpers.EditHTML(c, textAdminPanel, adminPanelKb(a.ctrl.Running()))
}

// Ban handles "/ban <id>": blacklists the user and persists the ban.
func (a *Admin) Ban(c tele.Context) error {
	userID, ok := commandID(c)
	if !ok {
		return tghelpers.SendHTML(c, "Використання: /ban &lt;id&gt;")
	}

	ctx := tghelpers.BuildContext(c)
	a.ctrl.Ban(userID)
	if a.blacklist != nil {
		if err := a.blacklist.Add(ctx, userID); err != nil {
			logger.Error(ctx, "guard", "blacklist.add",
				slog.Int64("user_id", userID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	logger.Info(ctx, "guard", "blacklist.ban", slog.Int64("user_id", userID))
	return tghelpers.SendHTML(c, fmt.Sprintf("🚫 Користувача <code>%d</code> заблоковано", userID))
}

// Unban handles "/unban <id>".
func (a *Admin) Unban(c tele.Context) error {
	userID, ok := commandID(c)
	if !ok {
		return tghelpers.SendHTML(c, "Використання: /unban &lt;id&gt;")
	}

	ctx := tghelpers.BuildContext(c)
	a.ctrl.Unban(userID)
	if a.blacklist != nil {
		if _, err := a.blacklist.Remove(ctx, userID); err != nil {
			logger.Error(ctx, "guard", "blacklist.remove",
				slog.Int64("user_id", userID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	logger.Info(ctx, "guard", "blacklist.unban", slog.Int64("user_id", userID))
	return tghelpers.SendHTML(c, fmt.Sprintf("✅ Користувача <code>%d</code> розблоковано", userID))
}

func renderBlacklist(ids []int64) string {
	if len(ids) == 0 {
		return textBlacklistEmpty
	}
	var b strings.Builder
	b.WriteString(textBlacklistHeader)
	for i, id := range ids {
		fmt.Fprintf(&b, "%d. <code>%d</code>\n", i+1, id)
	}
	return strings.TrimRight(b.String(), "\n")
}

func backKb() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⬅️ Назад", Unique: cbAdminBack},
	})
}

func commandID(c tele.Context) (int64, bool) {
	arg := strings.TrimSpace(c.Message().Payload)
	if arg == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
