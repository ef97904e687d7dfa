package order

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// OutcomeKind classifies the result of applying one event.
type OutcomeKind int

const (
	// Advanced means the input was accepted; fields were mutated and the
	// machine moved to Outcome.State (possibly the same state during item
	// accumulation).
	Advanced OutcomeKind = iota
	// Rejected means the input did not pass validation. The state and the
	// draft are untouched; the caller re-prompts.
	Rejected
	// Cancelled means the order was aborted; the caller discards the draft.
	Cancelled
	// Completed means the terminal submit transition fired and Outcome.Order
	// carries the finished record.
	Completed
)

// RejectReason names why an input was rejected, so callers can pick a
// corrective message and tests can assert on the exact cause.
type RejectReason string

const (
	ReasonNone            RejectReason = ""
	ReasonBadCaptcha      RejectReason = "bad_captcha"
	ReasonCaptchaExpired  RejectReason = "captcha_expired"
	ReasonBadName         RejectReason = "bad_name"
	ReasonBadPhone        RejectReason = "bad_phone"
	ReasonNoItems         RejectReason = "no_items"
	ReasonTooManyPhotos   RejectReason = "too_many_photos"
	ReasonBadItemIndex    RejectReason = "bad_item_index"
	ReasonShortAddress    RejectReason = "short_address"
	ReasonShortTime       RejectReason = "short_time"
	ReasonBadAmount       RejectReason = "bad_amount"
	ReasonIncomplete      RejectReason = "incomplete"
	ReasonUnexpectedInput RejectReason = "unexpected_input"
)

// Outcome is the result of one transition attempt.
type Outcome struct {
	Kind   OutcomeKind
	State  State
	Reason RejectReason
	Order  *Order
}

func advanced(next State) Outcome { return Outcome{Kind: Advanced, State: next} }

func rejected(st State, reason RejectReason) Outcome {
	return Outcome{Kind: Rejected, State: st, Reason: reason}
}

// Geocoder resolves coordinates to a human-readable address. It must fail
// closed: on error or timeout it reports ok=false and the machine falls back
// to a raw coordinate string.
type Geocoder interface {
	Resolve(ctx context.Context, lat, lon float64) (addr string, ok bool)
}

// Machine owns the order-form transition contract. It is stateless; the
// current state and the draft travel with the session.
type Machine struct {
	geocoder Geocoder
	now      func() time.Time
}

// Option customises machine construction.
type Option func(*Machine)

// WithClock overrides the wall clock, used by tests for stable order ids.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// NewMachine builds a machine. geocoder may be nil; shared locations then
// always fall back to raw coordinates.
func NewMachine(geocoder Geocoder, opts ...Option) *Machine {
	m := &Machine{geocoder: geocoder, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply validates ev against the current state, mutates the draft on success
// and returns the outcome. A transition either completes fully (fields
// mutated, state advanced) or rejects without touching the draft; there is no
// partial application.
func (m *Machine) Apply(ctx context.Context, st State, d *Draft, ev Event) Outcome {
	if st.Terminal() {
		return rejected(st, ReasonUnexpectedInput)
	}
	if _, ok := ev.(Cancel); ok {
		return Outcome{Kind: Cancelled, State: StateCancelled}
	}

	switch st {
	case StateCaptcha:
		return m.applyCaptcha(st, d, ev)
	case StateName:
		return m.applyName(st, d, ev)
	case StatePhone:
		return m.applyPhone(st, d, ev)
	case StateItems:
		return m.applyItems(st, d, ev)
	case StateDeliveryMode:
		return m.applyDeliveryMode(st, d, ev)
	case StatePickupAddress:
		return m.applyPickupAddress(st, d, ev)
	case StateAddressMethod:
		return m.applyAddressMethod(ctx, st, d, ev)
	case StateDeliveryAddress:
		return m.applyDeliveryAddress(st, d, ev)
	case StateDeliveryTime:
		return m.applyDeliveryTime(st, d, ev)
	case StateCustomTime:
		return m.applyCustomTime(st, d, ev)
	case StatePayment:
		return m.applyPayment(st, d, ev)
	case StateChangeAmount:
		return m.applyChangeAmount(st, d, ev)
	case StateReview:
		return m.applyReview(st, d, ev)
	case StatePromoCode:
		return m.applyPromoCode(st, d, ev)
	}
	return rejected(st, ReasonUnexpectedInput)
}

func (m *Machine) applyCaptcha(st State, d *Draft, ev Event) Outcome {
	txt, ok := ev.(Text)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	if d.Captcha == nil {
		return rejected(st, ReasonCaptchaExpired)
	}
	if !d.Captcha.Check(strings.TrimSpace(txt.Value)) {
		return rejected(st, ReasonBadCaptcha)
	}
	d.Captcha = nil
	return advanced(StateName)
}

func (m *Machine) applyName(st State, d *Draft, ev Event) Outcome {
	txt, ok := ev.(Text)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	name := strings.TrimSpace(txt.Value)
	if !validName(name) {
		return rejected(st, ReasonBadName)
	}
	d.Name = escapeHTML(name)
	return advanced(StatePhone)
}

func (m *Machine) applyPhone(st State, d *Draft, ev Event) Outcome {
	var phone string
	switch e := ev.(type) {
	case Contact:
		phone = strings.TrimSpace(e.Phone)
		if phone == "" {
			return rejected(st, ReasonBadPhone)
		}
	case Text:
		phone = strings.TrimSpace(e.Value)
		if !validPhone(phone) {
			return rejected(st, ReasonBadPhone)
		}
	default:
		return rejected(st, ReasonUnexpectedInput)
	}
	d.Phone = escapeHTML(phone)
	d.ResetItems()
	return advanced(StateItems)
}

func (m *Machine) applyItems(st State, d *Draft, ev Event) Outcome {
	switch e := ev.(type) {
	case Text:
		line := strings.TrimSpace(e.Value)
		if line == "" {
			return rejected(st, ReasonUnexpectedInput)
		}
		for _, part := range strings.Split(line, "\n") {
			if part = strings.TrimSpace(part); part != "" {
				d.Items = append(d.Items, escapeHTML(part))
			}
		}
		return advanced(StateItems)
	case Photo:
		if len(d.Photos) >= MaxPhotos {
			return rejected(st, ReasonTooManyPhotos)
		}
		d.Photos = append(d.Photos, e.Ref)
		return advanced(StateItems)
	case Done:
		if !d.HasItems() {
			return rejected(st, ReasonNoItems)
		}
		return advanced(StateDeliveryMode)
	case RemoveItem:
		if !d.RemoveItem(e.Index) {
			return rejected(st, ReasonBadItemIndex)
		}
		return advanced(StateItems)
	case Choice:
		switch e.Key {
		case ChoiceAddMore:
			return advanced(StateItems)
		case ChoiceFinishEdit:
			if !d.HasItems() {
				return rejected(st, ReasonNoItems)
			}
			return advanced(StateReview)
		}
	}
	return rejected(st, ReasonUnexpectedInput)
}

func (m *Machine) applyDeliveryMode(st State, d *Draft, ev Event) Outcome {
	choice, ok := ev.(Choice)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	switch choice.Key {
	case ChoiceSelfShip:
		d.Mode = ModeSelfShip
		return advanced(StatePickupAddress)
	case ChoiceDelivery:
		d.Mode = ModeDelivery
		// Courier picks up from the depot; the origin stays a placeholder.
		d.PickupAddress = placeholder
		return advanced(StateAddressMethod)
	}
	return rejected(st, ReasonUnexpectedInput)
}

func (m *Machine) applyPickupAddress(st State, d *Draft, ev Event) Outcome {
	txt, ok := ev.(Text)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	addr := strings.TrimSpace(txt.Value)
	if !validAddress(addr) {
		return rejected(st, ReasonShortAddress)
	}
	d.PickupAddress = escapeHTML(addr)
	return advanced(StateDeliveryAddress)
}

func (m *Machine) applyAddressMethod(ctx context.Context, st State, d *Draft, ev Event) Outcome {
	switch e := ev.(type) {
	case Choice:
		if e.Key == ChoiceManual {
			return advanced(StateDeliveryAddress)
		}
	case Location:
		addr := m.resolveAddress(ctx, e.Lat, e.Lon)
		d.DeliveryAddress = escapeHTML(addr)
		d.Location = &Coordinates{Lat: e.Lat, Lon: e.Lon}
		return advanced(StateDeliveryTime)
	}
	return rejected(st, ReasonUnexpectedInput)
}

func (m *Machine) resolveAddress(ctx context.Context, lat, lon float64) string {
	if m.geocoder != nil {
		if addr, ok := m.geocoder.Resolve(ctx, lat, lon); ok && strings.TrimSpace(addr) != "" {
			return addr
		}
	}
	return fmt.Sprintf("Координати: %.6f, %.6f", lat, lon)
}

func (m *Machine) applyDeliveryAddress(st State, d *Draft, ev Event) Outcome {
	txt, ok := ev.(Text)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	addr := strings.TrimSpace(txt.Value)
	if !validAddress(addr) {
		return rejected(st, ReasonShortAddress)
	}
	d.DeliveryAddress = escapeHTML(addr)
	d.Location = nil
	return advanced(StateDeliveryTime)
}

func (m *Machine) applyDeliveryTime(st State, d *Draft, ev Event) Outcome {
	choice, ok := ev.(Choice)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	switch choice.Key {
	case ChoiceASAP:
		d.Time = TimeChoice{ASAP: true}
		return advanced(StatePayment)
	case ChoiceCustomTime:
		return advanced(StateCustomTime)
	}
	return rejected(st, ReasonUnexpectedInput)
}

func (m *Machine) applyCustomTime(st State, d *Draft, ev Event) Outcome {
	txt, ok := ev.(Text)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	t := strings.TrimSpace(txt.Value)
	if !validTime(t) {
		return rejected(st, ReasonShortTime)
	}
	d.Time = TimeChoice{Custom: escapeHTML(t)}
	return advanced(StatePayment)
}

func (m *Machine) applyPayment(st State, d *Draft, ev Event) Outcome {
	choice, ok := ev.(Choice)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	switch choice.Key {
	case ChoiceCash:
		d.Payment = PayCash
		return advanced(StateChangeAmount)
	case ChoiceCashless:
		d.Payment = PayCashless
		return advanced(StateReview)
	}
	return rejected(st, ReasonUnexpectedInput)
}

func (m *Machine) applyChangeAmount(st State, d *Draft, ev Event) Outcome {
	txt, ok := ev.(Text)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	amount := strings.TrimSpace(txt.Value)
	if !validChangeAmount(amount) {
		return rejected(st, ReasonBadAmount)
	}
	d.ChangeFrom = escapeHTML(amount)
	return advanced(StateReview)
}

func (m *Machine) applyReview(st State, d *Draft, ev Event) Outcome {
	choice, ok := ev.(Choice)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	switch choice.Key {
	case ChoiceEdit:
		return advanced(StateItems)
	case ChoicePromo:
		return advanced(StatePromoCode)
	case ChoiceSubmit:
		return m.complete(st, d)
	}
	return rejected(st, ReasonUnexpectedInput)
}

func (m *Machine) applyPromoCode(st State, d *Draft, ev Event) Outcome {
	txt, ok := ev.(Text)
	if !ok {
		return rejected(st, ReasonUnexpectedInput)
	}
	code := strings.TrimSpace(txt.Value)
	if code == "" {
		return rejected(st, ReasonUnexpectedInput)
	}
	d.PromoCode = escapeHTML(code)
	return m.complete(st, d)
}

func (m *Machine) complete(st State, d *Draft) Outcome {
	o, err := NewOrder(d, m.now())
	if err != nil {
		return rejected(st, ReasonIncomplete)
	}
	return Outcome{Kind: Completed, State: StateSubmitted, Order: o}
}
