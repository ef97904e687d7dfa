package order

import (
	"context"
	"strconv"
	"testing"
	"time"
)

type stubGeocoder struct {
	addr string
	ok   bool
}

func (s stubGeocoder) Resolve(_ context.Context, _, _ float64) (string, bool) {
	return s.addr, s.ok
}

func fixedClock() time.Time {
	return time.Unix(1_724_741_123, 0)
}

func newTestMachine(g Geocoder) *Machine {
	return NewMachine(g, WithClock(fixedClock))
}

// apply runs one event and advances st in place on success.
func apply(t *testing.T, m *Machine, st *State, d *Draft, ev Event) Outcome {
	t.Helper()
	out := m.Apply(context.Background(), *st, d, ev)
	if out.Kind == Advanced || out.Kind == Completed || out.Kind == Cancelled {
		*st = out.State
	}
	return out
}

func mustAdvance(t *testing.T, m *Machine, st *State, d *Draft, ev Event, want State) {
	t.Helper()
	out := apply(t, m, st, d, ev)
	if out.Kind != Advanced {
		t.Fatalf("event %#v in %q: kind = %v, reason = %q, want Advanced", ev, out.State, out.Kind, out.Reason)
	}
	if out.State != want {
		t.Fatalf("event %#v: state = %q, want %q", ev, out.State, want)
	}
}

func startedDraft() (*Draft, State) {
	d := NewDraft(42)
	c := NewCaptcha()
	d.Captcha = &c
	return d, StateCaptcha
}

func TestHappyPathCourierDelivery(t *testing.T) {
	m := newTestMachine(stubGeocoder{addr: "вул. Хрещатик, 1, Київ", ok: true})
	d, st := startedDraft()

	mustAdvance(t, m, &st, d, Text{Value: strconv.Itoa(d.Captcha.A + d.Captcha.B)}, StateName)
	mustAdvance(t, m, &st, d, Text{Value: "Anna Maria"}, StatePhone)
	mustAdvance(t, m, &st, d, Contact{Phone: "+380501234567"}, StateItems)
	mustAdvance(t, m, &st, d, Text{Value: "Піца Маргарита\nКола 0.5"}, StateItems)
	mustAdvance(t, m, &st, d, Done{}, StateDeliveryMode)
	mustAdvance(t, m, &st, d, Choice{Key: ChoiceDelivery}, StateAddressMethod)
	mustAdvance(t, m, &st, d, Location{Lat: 50.4501, Lon: 30.5234}, StateDeliveryTime)
	mustAdvance(t, m, &st, d, Choice{Key: ChoiceASAP}, StatePayment)
	mustAdvance(t, m, &st, d, Choice{Key: ChoiceCash}, StateChangeAmount)
	mustAdvance(t, m, &st, d, Text{Value: "500 грн"}, StateReview)

	out := apply(t, m, &st, d, Choice{Key: ChoiceSubmit})
	if out.Kind != Completed {
		t.Fatalf("submit: kind = %v, reason = %q, want Completed", out.Kind, out.Reason)
	}
	if out.Order == nil {
		t.Fatal("submit: nil order")
	}
	if st != StateSubmitted {
		t.Fatalf("state after submit = %q", st)
	}

	o := out.Order
	if o.CustomerID != 42 {
		t.Errorf("CustomerID = %d", o.CustomerID)
	}
	if len(o.Items) != 2 || o.Items[0] != "Піца Маргарита" || o.Items[1] != "Кола 0.5" {
		t.Errorf("Items = %v", o.Items)
	}
	if o.PickupAddress != "—" {
		t.Errorf("PickupAddress = %q, want placeholder", o.PickupAddress)
	}
	if o.DeliveryAddress != "вул. Хрещатик, 1, Київ" {
		t.Errorf("DeliveryAddress = %q", o.DeliveryAddress)
	}
	if o.Location == nil || o.Location.Lat != 50.4501 {
		t.Errorf("Location = %+v", o.Location)
	}
	if !o.Time.ASAP {
		t.Errorf("Time = %+v", o.Time)
	}
	if o.Payment != PayCash || o.ChangeFrom != "500 грн" {
		t.Errorf("Payment = %q ChangeFrom = %q", o.Payment, o.ChangeFrom)
	}
	if want := "741123"; o.ID != want {
		t.Errorf("ID = %q, want %q", o.ID, want)
	}
}

func TestHappyPathSelfShipCashless(t *testing.T) {
	m := newTestMachine(nil)
	d, st := startedDraft()

	mustAdvance(t, m, &st, d, Text{Value: strconv.Itoa(d.Captcha.A + d.Captcha.B)}, StateName)
	mustAdvance(t, m, &st, d, Text{Value: "Олег"}, StatePhone)
	mustAdvance(t, m, &st, d, Text{Value: "0501234567"}, StateItems)
	mustAdvance(t, m, &st, d, Text{Value: "Документи"}, StateItems)
	mustAdvance(t, m, &st, d, Done{}, StateDeliveryMode)
	mustAdvance(t, m, &st, d, Choice{Key: ChoiceSelfShip}, StatePickupAddress)
	mustAdvance(t, m, &st, d, Text{Value: "вул. Саксаганського, 12"}, StateDeliveryAddress)
	mustAdvance(t, m, &st, d, Text{Value: "просп. Перемоги, 50"}, StateDeliveryTime)
	mustAdvance(t, m, &st, d, Choice{Key: ChoiceCustomTime}, StateCustomTime)
	mustAdvance(t, m, &st, d, Text{Value: "18:30"}, StatePayment)
	mustAdvance(t, m, &st, d, Choice{Key: ChoiceCashless}, StateReview)

	out := apply(t, m, &st, d, Choice{Key: ChoiceSubmit})
	if out.Kind != Completed {
		t.Fatalf("submit: kind = %v, reason = %q", out.Kind, out.Reason)
	}
	o := out.Order
	if o.Mode != ModeSelfShip {
		t.Errorf("Mode = %q", o.Mode)
	}
	if o.Location != nil {
		t.Errorf("Location = %+v, want nil after manual address", o.Location)
	}
	if o.Time.Custom != "18:30" || o.Time.ASAP {
		t.Errorf("Time = %+v", o.Time)
	}
	if o.ChangeFrom != "" {
		t.Errorf("ChangeFrom = %q, want empty for cashless", o.ChangeFrom)
	}
}

func TestCaptcha(t *testing.T) {
	m := newTestMachine(nil)

	t.Run("wrong answer rejects without mutation", func(t *testing.T) {
		d, st := startedDraft()
		wrong := strconv.Itoa(d.Captcha.A + d.Captcha.B + 1)
		out := m.Apply(context.Background(), st, d, Text{Value: wrong})
		if out.Kind != Rejected || out.Reason != ReasonBadCaptcha {
			t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
		}
		if d.Captcha == nil {
			t.Fatal("captcha cleared on rejection")
		}
	})

	t.Run("non-numeric answer rejects", func(t *testing.T) {
		d, st := startedDraft()
		out := m.Apply(context.Background(), st, d, Text{Value: "seven"})
		if out.Kind != Rejected || out.Reason != ReasonBadCaptcha {
			t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
		}
	})

	t.Run("missing challenge reports expiry", func(t *testing.T) {
		d := NewDraft(42)
		out := m.Apply(context.Background(), StateCaptcha, d, Text{Value: "5"})
		if out.Reason != ReasonCaptchaExpired {
			t.Fatalf("reason = %q", out.Reason)
		}
	})

	t.Run("correct answer clears the challenge", func(t *testing.T) {
		d, st := startedDraft()
		out := m.Apply(context.Background(), st, d, Text{Value: strconv.Itoa(d.Captcha.A + d.Captcha.B)})
		if out.Kind != Advanced || out.State != StateName {
			t.Fatalf("kind = %v, state = %q", out.Kind, out.State)
		}
		if d.Captcha != nil {
			t.Fatal("captcha not cleared")
		}
	})
}

func TestCaptchaBounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		c := NewCaptcha()
		if c.A < 1 || c.A > 5 || c.B < 1 || c.B > 5 {
			t.Fatalf("operands out of range: %+v", c)
		}
	}
}

func TestNameValidation(t *testing.T) {
	m := newTestMachine(nil)
	cases := []struct {
		name string
		ok   bool
	}{
		{"Anna Maria", true},
		{"Олена", true},
		{"Anna1", false},
		{"A", false},
		{"   ", false},
		{"Дуже довге імʼя яке точно не влазить у тридцять символів", false},
	}
	for _, tc := range cases {
		d := NewDraft(1)
		out := m.Apply(context.Background(), StateName, d, Text{Value: tc.name})
		got := out.Kind == Advanced
		if got != tc.ok {
			t.Errorf("name %q: accepted = %v, want %v (reason %q)", tc.name, got, tc.ok, out.Reason)
		}
		if !tc.ok && d.Name != "" {
			t.Errorf("name %q: draft mutated on rejection", tc.name)
		}
	}
}

func TestPhoneValidation(t *testing.T) {
	m := newTestMachine(nil)
	cases := []struct {
		phone string
		ok    bool
	}{
		{"+380501234567", true},
		{"0501234567", true},
		{"050-123-45-67", false},
		{"12345", false},
		{"+38050abc4567", false},
	}
	for _, tc := range cases {
		d := NewDraft(1)
		out := m.Apply(context.Background(), StatePhone, d, Text{Value: tc.phone})
		if got := out.Kind == Advanced; got != tc.ok {
			t.Errorf("phone %q: accepted = %v, want %v", tc.phone, got, tc.ok)
		}
	}
}

func TestItemAccumulation(t *testing.T) {
	m := newTestMachine(nil)

	t.Run("multiline text splits into items", func(t *testing.T) {
		d := NewDraft(1)
		out := m.Apply(context.Background(), StateItems, d, Text{Value: "Хліб\n\n Молоко \n"})
		if out.Kind != Advanced || out.State != StateItems {
			t.Fatalf("kind = %v, state = %q", out.Kind, out.State)
		}
		if len(d.Items) != 2 || d.Items[0] != "Хліб" || d.Items[1] != "Молоко" {
			t.Fatalf("Items = %v", d.Items)
		}
	})

	t.Run("done without items rejects", func(t *testing.T) {
		d := NewDraft(1)
		out := m.Apply(context.Background(), StateItems, d, Done{})
		if out.Kind != Rejected || out.Reason != ReasonNoItems {
			t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
		}
	})

	t.Run("done with a photo only is enough", func(t *testing.T) {
		d := NewDraft(1)
		m.Apply(context.Background(), StateItems, d, Photo{Ref: "file1"})
		out := m.Apply(context.Background(), StateItems, d, Done{})
		if out.Kind != Advanced || out.State != StateDeliveryMode {
			t.Fatalf("kind = %v, state = %q", out.Kind, out.State)
		}
	})

	t.Run("photo cap holds", func(t *testing.T) {
		d := NewDraft(1)
		for i := 0; i < MaxPhotos; i++ {
			out := m.Apply(context.Background(), StateItems, d, Photo{Ref: "file"})
			if out.Kind != Advanced {
				t.Fatalf("photo %d rejected: %q", i, out.Reason)
			}
		}
		out := m.Apply(context.Background(), StateItems, d, Photo{Ref: "one-too-many"})
		if out.Kind != Rejected || out.Reason != ReasonTooManyPhotos {
			t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
		}
		if len(d.Photos) != MaxPhotos {
			t.Fatalf("len(Photos) = %d after rejection", len(d.Photos))
		}
	})

	t.Run("remove first of three", func(t *testing.T) {
		d := NewDraft(1)
		d.Items = []string{"A", "B", "C"}
		out := m.Apply(context.Background(), StateItems, d, RemoveItem{Index: 0})
		if out.Kind != Advanced {
			t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
		}
		if len(d.Items) != 2 || d.Items[0] != "B" || d.Items[1] != "C" {
			t.Fatalf("Items = %v", d.Items)
		}
	})

	t.Run("remove out of range rejects", func(t *testing.T) {
		d := NewDraft(1)
		d.Items = []string{"A"}
		out := m.Apply(context.Background(), StateItems, d, RemoveItem{Index: 3})
		if out.Kind != Rejected || out.Reason != ReasonBadItemIndex {
			t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
		}
	})

	t.Run("finish edit returns to review", func(t *testing.T) {
		d := NewDraft(1)
		d.Items = []string{"A"}
		out := m.Apply(context.Background(), StateItems, d, Choice{Key: ChoiceFinishEdit})
		if out.Kind != Advanced || out.State != StateReview {
			t.Fatalf("kind = %v, state = %q", out.Kind, out.State)
		}
	})
}

func TestPhoneEntryResetsItems(t *testing.T) {
	m := newTestMachine(nil)
	d := NewDraft(1)
	d.Items = []string{"stale"}
	d.Photos = []string{"stale"}
	out := m.Apply(context.Background(), StatePhone, d, Text{Value: "+380501234567"})
	if out.Kind != Advanced {
		t.Fatalf("kind = %v", out.Kind)
	}
	if d.HasItems() {
		t.Fatalf("items not reset: %v / %v", d.Items, d.Photos)
	}
}

func TestGeocoderFallback(t *testing.T) {
	m := newTestMachine(stubGeocoder{ok: false})
	d := NewDraft(1)
	out := m.Apply(context.Background(), StateAddressMethod, d, Location{Lat: 50.4501, Lon: 30.5234})
	if out.Kind != Advanced || out.State != StateDeliveryTime {
		t.Fatalf("kind = %v, state = %q", out.Kind, out.State)
	}
	if want := "Координати: 50.450100, 30.523400"; d.DeliveryAddress != want {
		t.Fatalf("DeliveryAddress = %q, want %q", d.DeliveryAddress, want)
	}
	if d.Location == nil {
		t.Fatal("coordinates dropped")
	}
}

func TestManualAddressClearsLocation(t *testing.T) {
	m := newTestMachine(nil)
	d := NewDraft(1)
	d.Location = &Coordinates{Lat: 1, Lon: 2}
	out := m.Apply(context.Background(), StateDeliveryAddress, d, Text{Value: "вул. Банкова, 11"})
	if out.Kind != Advanced {
		t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
	}
	if d.Location != nil {
		t.Fatal("stale location kept after manual address")
	}
}

func TestShortInputsRejected(t *testing.T) {
	m := newTestMachine(nil)
	cases := []struct {
		state  State
		ev     Event
		reason RejectReason
	}{
		{StatePickupAddress, Text{Value: "вул."}, ReasonShortAddress},
		{StateDeliveryAddress, Text{Value: "дім"}, ReasonShortAddress},
		{StateCustomTime, Text{Value: "9"}, ReasonShortTime},
		{StateChangeAmount, Text{Value: "п'ятсот"}, ReasonBadAmount},
	}
	for _, tc := range cases {
		d := NewDraft(1)
		out := m.Apply(context.Background(), tc.state, d, tc.ev)
		if out.Kind != Rejected || out.Reason != tc.reason {
			t.Errorf("state %q event %#v: kind = %v, reason = %q, want %q", tc.state, tc.ev, out.Kind, out.Reason, tc.reason)
		}
	}
}

func TestChangeAmountAcceptsCurrencySuffix(t *testing.T) {
	m := newTestMachine(nil)
	for _, amount := range []string{"500", "500 грн", "1 000 грн", "500грн"} {
		d := NewDraft(1)
		out := m.Apply(context.Background(), StateChangeAmount, d, Text{Value: amount})
		if out.Kind != Advanced {
			t.Errorf("amount %q rejected: %q", amount, out.Reason)
		}
	}
}

func TestCancelFromAnyState(t *testing.T) {
	m := newTestMachine(nil)
	states := []State{
		StateCaptcha, StateName, StatePhone, StateItems, StateDeliveryMode,
		StatePickupAddress, StateAddressMethod, StateDeliveryAddress,
		StateDeliveryTime, StateCustomTime, StatePayment, StateChangeAmount,
		StateReview, StatePromoCode,
	}
	for _, st := range states {
		d := NewDraft(1)
		out := m.Apply(context.Background(), st, d, Cancel{})
		if out.Kind != Cancelled || out.State != StateCancelled {
			t.Errorf("cancel in %q: kind = %v, state = %q", st, out.Kind, out.State)
		}
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	m := newTestMachine(nil)
	for _, st := range []State{StateSubmitted, StateCancelled} {
		out := m.Apply(context.Background(), st, NewDraft(1), Text{Value: "hello"})
		if out.Kind != Rejected || out.Reason != ReasonUnexpectedInput {
			t.Errorf("state %q: kind = %v, reason = %q", st, out.Kind, out.Reason)
		}
	}
}

func TestUnexpectedInputKeepsState(t *testing.T) {
	m := newTestMachine(nil)
	d := NewDraft(1)
	out := m.Apply(context.Background(), StateDeliveryMode, d, Text{Value: "just text"})
	if out.Kind != Rejected || out.Reason != ReasonUnexpectedInput {
		t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
	}
	if out.State != StateDeliveryMode {
		t.Fatalf("state = %q", out.State)
	}
}

func TestSubmitWithoutItemsRejects(t *testing.T) {
	m := newTestMachine(nil)
	d := NewDraft(1)
	out := m.Apply(context.Background(), StateReview, d, Choice{Key: ChoiceSubmit})
	if out.Kind != Rejected || out.Reason != ReasonIncomplete {
		t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
	}
}

func TestPromoCodeSubmits(t *testing.T) {
	m := newTestMachine(nil)
	d := NewDraft(1)
	d.Items = []string{"Товар"}
	out := m.Apply(context.Background(), StatePromoCode, d, Text{Value: "SUMMER<10>"})
	if out.Kind != Completed {
		t.Fatalf("kind = %v, reason = %q", out.Kind, out.Reason)
	}
	if out.Order.PromoCode != "SUMMER&lt;10&gt;" {
		t.Fatalf("PromoCode = %q", out.Order.PromoCode)
	}
}

func TestHTMLEscapedOnEntry(t *testing.T) {
	m := newTestMachine(nil)
	d := NewDraft(1)
	out := m.Apply(context.Background(), StateItems, d, Text{Value: "<b>болт & гайка</b>"})
	if out.Kind != Advanced {
		t.Fatalf("kind = %v", out.Kind)
	}
	if want := "&lt;b&gt;болт &amp; гайка&lt;/b&gt;"; d.Items[0] != want {
		t.Fatalf("item = %q, want %q", d.Items[0], want)
	}
}
