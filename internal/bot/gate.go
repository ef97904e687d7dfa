package bot

import (
	"context"
	"log/slog"

	"github.com/pulsedelivery/orderbot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

// chatMemberAPI is the slice of the bot API the gate needs.
type chatMemberAPI interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// channelRecipient lets a raw "@username" or "-100…" id act as a Recipient.
type channelRecipient string

func (r channelRecipient) Recipient() string { return string(r) }

// Gate checks that a user is subscribed to the required channel before the
// order form opens. A missing channel id disables the gate.
type Gate struct {
	api     chatMemberAPI
	channel string
}

func NewGate(api chatMemberAPI, channel string) *Gate {
	return &Gate{api: api, channel: channel}
}

// Bind attaches the bot API once it exists. Called before polling starts.
func (g *Gate) Bind(api chatMemberAPI) { g.api = api }

func (g *Gate) Enabled() bool {
	return g != nil && g.channel != "" && g.api != nil
}

func (g *Gate) Channel() string { return g.channel }

// Subscribed reports whether the user is a member of the channel.
// API errors fail closed: an unverifiable user is treated as unsubscribed.
func (g *Gate) Subscribed(ctx context.Context, userID int64) bool {
	if !g.Enabled() {
		return true
	}
	member, err := g.api.ChatMemberOf(channelRecipient(g.channel), &tele.User{ID: userID})
	if err != nil {
		logger.Warn(ctx, "tg", "gate.check",
			slog.String("status", "fail"),
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return false
	}
	switch member.Role {
	case tele.Creator, tele.Administrator, tele.Member:
		return true
	default:
		return false
	}
}
