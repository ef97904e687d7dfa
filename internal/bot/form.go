package bot

import (
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/pulsedelivery/orderbot/internal/logger"
	"github.com/pulsedelivery/orderbot/internal/order"
	"github.com/pulsedelivery/orderbot/internal/session"
	tghelpers "github.com/pulsedelivery/orderbot/internal/telegram/helpers"
	"github.com/pulsedelivery/orderbot/internal/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// OrderStore persists submitted orders. A nil store keeps the bot working
// without a database.
type OrderStore interface {
	Save(ctx context.Context, o *order.Order) error
}

// OrderNotifier tells the operator about a submitted order.
type OrderNotifier interface {
	OrderSubmitted(c tele.Context, o *order.Order) error
}

// Form drives the order conversation: it maps Telegram updates to typed
// events, runs them through the transition machine and renders the next
// prompt. It implements router.Conversation.
type Form struct {
	sessions session.Manager
	machine  *order.Machine
	store    OrderStore
	notifier OrderNotifier
}

func NewForm(sessions session.Manager, machine *order.Machine, store OrderStore, notifier OrderNotifier) *Form {
	return &Form{sessions: sessions, machine: machine, store: store, notifier: notifier}
}

// InProgress reports whether the user has an active form. Storage errors
// count as "no form" so a broken session store never traps a user.
func (f *Form) InProgress(userID int64) bool {
	s, err := f.sessions.Get(context.Background(), userID)
	if err != nil {
		return false
	}
	return s.State.InProgress()
}

// BeginCaptcha opens a fresh form behind the arithmetic challenge.
func (f *Form) BeginCaptcha(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	challenge := order.NewCaptcha()
	err := f.sessions.Update(ctx, userID, func(s *session.Session) {
		s.State = order.StateCaptcha
		s.Draft = order.NewDraft(userID)
		s.Draft.Captcha = &challenge
	})
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, fmt.Sprintf(textCaptchaAsk, challenge.Question()), keyboard.RemoveKeyboard())
}

// BeginOrder opens a fresh form at the name step, skipping the captcha.
// Used for repeat orders started from the reply button.
func (f *Form) BeginOrder(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	err := f.sessions.Update(ctx, userID, func(s *session.Session) {
		s.State = order.StateName
		s.Draft = order.NewDraft(userID)
	})
	if err != nil {
		return err
	}
	return tghelpers.SendHTML(c, textAskName, cancelKb())
}

// Handle consumes one update from a user with an active form. A photo with a
// caption produces two events; only the last one is answered with a prompt so
// the user gets a single confirmation.
func (f *Form) Handle(c tele.Context) error {
	msg := c.Message()
	if msg == nil {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	st := order.StateIdle
	if s, err := f.sessions.Get(ctx, c.Sender().ID); err == nil {
		st = s.State
	}

	evs := eventsFrom(msg, st)
	for i, ev := range evs {
		if err := f.applyEvent(c, ev, i < len(evs)-1); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEvent runs one event through the machine and reacts to the outcome.
// Callback handlers use it directly with Choice events.
func (f *Form) ApplyEvent(c tele.Context, ev order.Event) error {
	return f.applyEvent(c, ev, false)
}

func (f *Form) applyEvent(c tele.Context, ev order.Event, silent bool) error {
	ctx := tghelpers.BuildContext(c)
	userID := c.Sender().ID

	var (
		out   order.Outcome
		prev  order.State
		draft order.Draft
	)
	err := f.sessions.Update(ctx, userID, func(s *session.Session) {
		prev = s.State
		if s.Draft == nil {
			s.Draft = order.NewDraft(userID)
		}
		out = f.machine.Apply(ctx, s.State, s.Draft, ev)
		if out.Kind == order.Advanced || out.Kind == order.Completed || out.Kind == order.Cancelled {
			s.State = out.State
		}
		draft = *s.Draft
	})
	if err != nil {
		return err
	}

	switch out.Kind {
	case order.Cancelled:
		if err := f.sessions.Clear(ctx, userID); err != nil {
			logger.Warn(ctx, "svc.orders", "session.clear",
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		return tghelpers.SendHTML(c, textCancelled, newOrderKb())

	case order.Rejected:
		return f.reject(c, ctx, userID, out.Reason)

	case order.Completed:
		return f.completed(c, ctx, userID, out.Order)

	default:
		if silent {
			return nil
		}
		return f.prompt(c, prev, out.State, &draft, ev)
	}
}

func (f *Form) reject(c tele.Context, ctx context.Context, userID int64, reason order.RejectReason) error {
	if reason == order.ReasonCaptchaExpired {
		_ = f.sessions.Clear(ctx, userID)
		return tghelpers.SendHTML(c, textCaptchaExpired, newOrderKb())
	}
	return tghelpers.SendHTML(c, rejectText(reason))
}

func rejectText(reason order.RejectReason) string {
	switch reason {
	case order.ReasonBadCaptcha:
		return textCaptchaWrong
	case order.ReasonBadName:
		return textBadName
	case order.ReasonBadPhone:
		return textBadPhone
	case order.ReasonNoItems:
		return textNoItems
	case order.ReasonTooManyPhotos:
		return textTooManyPhotos
	case order.ReasonBadItemIndex:
		return textBadItemIndex
	case order.ReasonShortAddress:
		return textShortAddress
	case order.ReasonShortTime:
		return textBadTime
	case order.ReasonBadAmount:
		return textBadChangeAmount
	case order.ReasonIncomplete:
		return textIncomplete
	default:
		return textUnexpected
	}
}

func (f *Form) completed(c tele.Context, ctx context.Context, userID int64, o *order.Order) error {
	if f.store != nil {
		if err := f.store.Save(ctx, o); err != nil {
			logger.Error(ctx, "svc.orders", "order.save",
				slog.String("order_id", o.ID),
				slog.Int64("user_id", userID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	if f.notifier != nil {
		if err := f.notifier.OrderSubmitted(c, o); err != nil {
			logger.Error(ctx, "svc.orders", "order.notify",
				slog.String("order_id", o.ID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}
	if err := f.sessions.Clear(ctx, userID); err != nil {
		logger.Warn(ctx, "svc.orders", "session.clear",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
	}

	logger.Info(ctx, "svc.orders", "order.submitted",
		slog.String("order_id", o.ID),
		slog.Int64("user_id", userID),
		slog.Int("items", len(o.Items)),
		slog.Int("photos", len(o.Photos)),
	)

	thanks := textSubmitted
	if o.PromoCode != "" {
		thanks = fmt.Sprintf(textSubmittedPromo, o.PromoCode)
	}
	return tghelpers.SendHTML(c, thanks, newOrderKb())
}

// prompt sends the message and keyboard for the state the form just entered.
func (f *Form) prompt(c tele.Context, prev, next order.State, d *order.Draft, ev order.Event) error {
	switch next {
	case order.StateName:
		if prev == order.StateCaptcha {
			if err := tghelpers.SendHTML(c, textCaptchaPassed, keyboard.RemoveKeyboard()); err != nil {
				return err
			}
		}
		return tghelpers.SendHTML(c, textAskName, cancelKb())

	case order.StatePhone:
		return tghelpers.SendHTML(c, textAskPhone, phoneKb())

	case order.StateItems:
		return f.promptItems(c, d, ev)

	case order.StateDeliveryMode:
		return tghelpers.SendHTML(c, textAskDeliveryMode, deliveryModeKb())

	case order.StatePickupAddress:
		return tghelpers.SendHTML(c, textAskPickupAddress, cancelKb())

	case order.StateAddressMethod:
		return tghelpers.SendHTML(c, textAskAddressMethod, addressMethodKb())

	case order.StateDeliveryAddress:
		return tghelpers.SendHTML(c, textAskAddress, cancelKb())

	case order.StateDeliveryTime:
		if _, viaLocation := ev.(order.Location); viaLocation {
			saved := fmt.Sprintf(textLocationSaved, d.DeliveryAddress)
			if err := tghelpers.SendHTML(c, saved, keyboard.RemoveKeyboard()); err != nil {
				return err
			}
		}
		return tghelpers.SendHTML(c, textAskTime, deliveryTimeKb())

	case order.StateCustomTime:
		return tghelpers.SendHTML(c, textAskCustomTime, cancelKb())

	case order.StatePayment:
		return tghelpers.SendHTML(c, textAskPayment, paymentKb())

	case order.StateChangeAmount:
		return tghelpers.SendHTML(c, textAskChangeAmount, cancelKb())

	case order.StateReview:
		for _, fileID := range d.Photos {
			if err := tghelpers.SendPhoto(c, fileID); err != nil {
				logger.Warn(tghelpers.BuildContext(c), "svc.orders", "review.photo",
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
			}
		}
		return tghelpers.SendHTML(c, order.RenderReview(d), reviewKb())

	case order.StatePromoCode:
		return tghelpers.SendHTML(c, textAskPromo, cancelKb())
	}
	return nil
}

// promptItems distinguishes the ways the form lands on the item step: fresh
// collection, an item just added, the edit view after a removal, or the "add
// more" branch of editing.
func (f *Form) promptItems(c tele.Context, d *order.Draft, ev order.Event) error {
	switch e := ev.(type) {
	case order.Text, order.Photo:
		return tghelpers.SendHTML(c, textItemAdded)
	case order.RemoveItem:
		if !d.HasItems() {
			return tghelpers.SendHTML(c, textItemsEmpty, itemsKb())
		}
		return tghelpers.SendHTML(c, order.RenderItemList(d), itemsEditKb(d))
	case order.Choice:
		if e.Key == order.ChoiceAddMore {
			return tghelpers.SendHTML(c, textAddItems, itemsKb())
		}
		return tghelpers.SendHTML(c, order.RenderItemList(d), itemsEditKb(d))
	default:
		return tghelpers.SendHTML(c, textAskItems, itemsKb())
	}
}

// eventsFrom maps one Telegram message to machine events. A photo with a
// caption yields two events, the photo first. The cancel phrase works from
// every state; the done phrase is a control phrase only while items are being
// collected, so a name or address containing it stays ordinary text.
func eventsFrom(msg *tele.Message, st order.State) []order.Event {
	switch {
	case msg.Contact != nil:
		return []order.Event{order.Contact{Phone: msg.Contact.PhoneNumber}}
	case msg.Photo != nil:
		evs := []order.Event{order.Photo{Ref: msg.Photo.FileID}}
		if caption := strings.TrimSpace(msg.Caption); caption != "" {
			evs = append(evs, order.Text{Value: caption})
		}
		return evs
	case msg.Location != nil:
		return []order.Event{order.Location{
			Lat: float64(msg.Location.Lat),
			Lon: float64(msg.Location.Lng),
		}}
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "":
		return nil
	case isCancelPhrase(text):
		return []order.Event{order.Cancel{}}
	case st == order.StateItems && isDonePhrase(text):
		return []order.Event{order.Done{}}
	default:
		return []order.Event{order.Text{Value: text}}
	}
}

func isCancelPhrase(text string) bool {
	return text == btnCancel || strings.Contains(strings.ToLower(text), "скасувати")
}

func isDonePhrase(text string) bool {
	return text == btnDone || strings.Contains(strings.ToLower(text), "це все")
}
