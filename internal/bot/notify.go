package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"log/slog"

	"github.com/pulsedelivery/orderbot/internal/logger"
	"github.com/pulsedelivery/orderbot/internal/order"
	"github.com/pulsedelivery/orderbot/internal/telegram/callbacks"
	tghelpers "github.com/pulsedelivery/orderbot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// operatorAPI is the slice of the bot API the notifier needs.
type operatorAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier delivers order and lifecycle notices to the operator chat and
// confirmation messages back to customers.
type Notifier struct {
	api     operatorAPI
	adminID int64
}

func NewNotifier(api operatorAPI, adminID int64) *Notifier {
	return &Notifier{api: api, adminID: adminID}
}

// Bind attaches the bot API once it exists. Called before polling starts.
func (n *Notifier) Bind(api operatorAPI) { n.api = api }

var htmlOpts = &tele.SendOptions{
	ParseMode:             tele.ModeHTML,
	DisableWebPagePreview: true,
}

// OrderSubmitted sends the rendered order to the operator with an accept
// button, then forwards the attached photos.
func (n *Notifier) OrderSubmitted(c tele.Context, o *order.Order) error {
	if n == nil || n.api == nil || n.adminID == 0 {
		return nil
	}
	admin := tele.ChatID(n.adminID)

	opts := *htmlOpts
	opts.ReplyMarkup = acceptOrderKb(o.ID, o.CustomerID)
	if _, err := n.api.Send(admin, order.RenderOperator(o), &opts); err != nil {
		return fmt.Errorf("notify operator: %w", err)
	}

	ctx := tghelpers.BuildContext(c)
	for _, fileID := range o.Photos {
		fileID := fileID
		err := tghelpers.Enqueue(ctx, "notify.photo", "sendPhoto", func() error {
			_, err := n.api.Send(admin, &tele.Photo{File: tele.File{FileID: fileID}})
			return err
		})
		if err != nil {
			logger.Warn(ctx, "notify", "order.photo",
				slog.String("order_id", o.ID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	return nil
}

// AcceptOrder handles the operator pressing the accept button. The callback
// payload carries "orderID:clientID" so no message-text parsing is needed.
func (n *Notifier) AcceptOrder(c tele.Context) error {
	orderID, clientPart, ok := callbacks.PayloadPair(c, ":")
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: textOops})
	}
	clientID, err := strconv.ParseInt(clientPart, 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textOops})
	}

	if msg := c.Callback().Message; msg != nil {
		body := escapeText(msg.Text) + textOrderAcceptedBanner
		if err := tghelpers.EditHTML(c, body); err != nil {
			ctx := tghelpers.BuildContext(c)
			logger.Warn(ctx, "notify", "order.accept_edit",
				slog.String("order_id", orderID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}

	if _, err := n.api.Send(tele.ChatID(clientID), fmt.Sprintf(textOrderAccepted, orderID), htmlOpts); err != nil {
		return fmt.Errorf("notify customer: %w", err)
	}

	ctx := tghelpers.BuildContext(c)
	logger.Info(ctx, "notify", "order.accepted",
		slog.String("order_id", orderID),
		slog.Int64("user_id", clientID),
	)
	return nil
}

// Startup announces the bot coming up to the operator.
func (n *Notifier) Startup() {
	n.notice(textStartupNotice)
}

// Shutdown announces the bot going down.
func (n *Notifier) Shutdown() {
	n.notice(textShutdownNotice)
}

// AutoBanned tells the operator that the flood guard blacklisted a user.
func (n *Notifier) AutoBanned(userID int64) {
	n.notice(fmt.Sprintf("🚫 Користувача <code>%d</code> автоматично заблоковано за флуд", userID))
}

func (n *Notifier) notice(text string) {
	if n == nil || n.api == nil || n.adminID == 0 {
		return
	}
	ctx := context.Background()
	err := tghelpers.Enqueue(ctx, "notify.notice", "sendMessage", func() error {
		_, err := n.api.Send(tele.ChatID(n.adminID), text, htmlOpts)
		return err
	})
	if err != nil {
		logger.Warn(ctx, "notify", "notice",
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
