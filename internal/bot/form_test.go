package bot

import (
	"context"
	"testing"

	"github.com/pulsedelivery/orderbot/internal/order"
	"github.com/pulsedelivery/orderbot/internal/session"

	tele "gopkg.in/telebot.v4"
)

func TestEventsFromText(t *testing.T) {
	evs := eventsFrom(&tele.Message{Text: "  дві піци  "}, order.StateItems)
	if len(evs) != 1 {
		t.Fatalf("expected one event, got %d", len(evs))
	}
	txt, ok := evs[0].(order.Text)
	if !ok {
		t.Fatalf("expected order.Text, got %T", evs[0])
	}
	if txt.Value != "дві піци" {
		t.Fatalf("value = %q", txt.Value)
	}
}

func TestEventsFromControlPhrases(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{btnDone, "done"},
		{"Це все", "done"},
		{btnCancel, "cancel"},
		{"Скасувати замовлення", "cancel"},
		{"скасувати", "cancel"},
	}
	for _, tc := range cases {
		evs := eventsFrom(&tele.Message{Text: tc.text}, order.StateItems)
		if len(evs) != 1 {
			t.Fatalf("%q: expected one event, got %d", tc.text, len(evs))
		}
		switch tc.want {
		case "done":
			if _, ok := evs[0].(order.Done); !ok {
				t.Errorf("%q: expected Done, got %T", tc.text, evs[0])
			}
		case "cancel":
			if _, ok := evs[0].(order.Cancel); !ok {
				t.Errorf("%q: expected Cancel, got %T", tc.text, evs[0])
			}
		}
	}
}

// The done phrase is only a control phrase while collecting items; cancel
// works everywhere.
func TestEventsFromControlPhrasesOutsideItems(t *testing.T) {
	for _, st := range []order.State{order.StateName, order.StateDeliveryAddress, order.StateCustomTime} {
		evs := eventsFrom(&tele.Message{Text: "Це все"}, st)
		if len(evs) != 1 {
			t.Fatalf("state %q: expected one event, got %d", st, len(evs))
		}
		txt, ok := evs[0].(order.Text)
		if !ok {
			t.Fatalf("state %q: expected Text, got %T", st, evs[0])
		}
		if txt.Value != "Це все" {
			t.Fatalf("state %q: value = %q", st, txt.Value)
		}

		evs = eventsFrom(&tele.Message{Text: btnCancel}, st)
		if _, ok := evs[0].(order.Cancel); !ok {
			t.Fatalf("state %q: cancel should stay global, got %T", st, evs[0])
		}
	}
}

func TestEventsFromContact(t *testing.T) {
	evs := eventsFrom(&tele.Message{Contact: &tele.Contact{PhoneNumber: "+380501234567"}}, order.StatePhone)
	if len(evs) != 1 {
		t.Fatalf("expected one event, got %d", len(evs))
	}
	contact, ok := evs[0].(order.Contact)
	if !ok {
		t.Fatalf("expected order.Contact, got %T", evs[0])
	}
	if contact.Phone != "+380501234567" {
		t.Fatalf("phone = %q", contact.Phone)
	}
}

func TestEventsFromPhotoWithCaption(t *testing.T) {
	msg := &tele.Message{
		Photo:   &tele.Photo{File: tele.File{FileID: "file-1"}},
		Caption: "торт на замовлення",
	}
	evs := eventsFrom(msg, order.StateItems)
	if len(evs) != 2 {
		t.Fatalf("expected photo+caption events, got %d", len(evs))
	}
	if photo, ok := evs[0].(order.Photo); !ok || photo.Ref != "file-1" {
		t.Fatalf("first event = %#v", evs[0])
	}
	if txt, ok := evs[1].(order.Text); !ok || txt.Value != "торт на замовлення" {
		t.Fatalf("second event = %#v", evs[1])
	}
}

func TestEventsFromLocation(t *testing.T) {
	msg := &tele.Message{Location: &tele.Location{Lat: 50.4501, Lng: 30.5234}}
	evs := eventsFrom(msg, order.StateAddressMethod)
	if len(evs) != 1 {
		t.Fatalf("expected one event, got %d", len(evs))
	}
	loc, ok := evs[0].(order.Location)
	if !ok {
		t.Fatalf("expected order.Location, got %T", evs[0])
	}
	if loc.Lat < 50.45 || loc.Lat > 50.46 {
		t.Fatalf("lat = %v", loc.Lat)
	}
}

func TestEventsFromEmptyText(t *testing.T) {
	if evs := eventsFrom(&tele.Message{Text: "   "}, order.StateItems); evs != nil {
		t.Fatalf("expected no events, got %#v", evs)
	}
}

func TestRejectTextCoversEveryReason(t *testing.T) {
	reasons := []order.RejectReason{
		order.ReasonBadCaptcha,
		order.ReasonBadName,
		order.ReasonBadPhone,
		order.ReasonNoItems,
		order.ReasonTooManyPhotos,
		order.ReasonBadItemIndex,
		order.ReasonShortAddress,
		order.ReasonShortTime,
		order.ReasonBadAmount,
		order.ReasonIncomplete,
		order.ReasonUnexpectedInput,
	}
	seen := map[string]order.RejectReason{}
	for _, reason := range reasons {
		text := rejectText(reason)
		if text == "" {
			t.Errorf("reason %q has no message", reason)
		}
		if prev, dup := seen[text]; dup && prev != reason {
			// Shared texts are fine only when intentional; currently none are.
			t.Errorf("reasons %q and %q share message %q", prev, reason, text)
		}
		seen[text] = reason
	}
}

func TestFormInProgress(t *testing.T) {
	sessions := session.NewMemoryManager()
	form := NewForm(sessions, order.NewMachine(nil), nil, nil)

	if form.InProgress(42) {
		t.Fatal("fresh user should have no form")
	}

	err := sessions.Update(context.Background(), 42, func(s *session.Session) {
		s.State = order.StateItems
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !form.InProgress(42) {
		t.Fatal("expected active form after state change")
	}

	if err := sessions.Clear(context.Background(), 42); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if form.InProgress(42) {
		t.Fatal("cleared session should be idle")
	}
}
