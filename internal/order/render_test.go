package order

import (
	"strings"
	"testing"
	"time"
)

func TestRenderReview(t *testing.T) {
	d := NewDraft(42)
	d.Name = "Анна"
	d.Phone = "+380501234567"
	d.Items = []string{"Піца", "Кола"}
	d.Mode = ModeDelivery
	d.PickupAddress = placeholder
	d.DeliveryAddress = "вул. Хрещатик, 1"
	d.Location = &Coordinates{Lat: 50.4501, Lon: 30.5234}
	d.Time = TimeChoice{ASAP: true}
	d.Payment = PayCash
	d.ChangeFrom = "500"

	got := RenderReview(d)
	for _, want := range []string{
		"📋 <b>ПЕРЕВІРТЕ ВАШЕ ЗАМОВЛЕННЯ:</b>",
		"👤 Ім'я: Анна",
		"• Піца\n• Кола",
		"🚛 Тип: Одержувач",
		"🏠 Адреса відправлення: —",
		"https://maps.google.com/?q=50.4501,30.5234",
		"https://maps.apple.com/?q=50.4501,30.5234",
		"⏰ Час доставки: Якнайшвидше ⚡",
		"💰 Оплата: Готівка 💵",
		"💲 Решта з: 500",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("review missing %q\n%s", want, got)
		}
	}
}

func TestRenderReviewOmitsOptionalLines(t *testing.T) {
	d := NewDraft(42)
	d.Payment = PayCashless
	got := RenderReview(d)
	if strings.Contains(got, "Решта з") {
		t.Errorf("change line rendered for cashless payment:\n%s", got)
	}
	if strings.Contains(got, "Переглянути на") {
		t.Errorf("maps line rendered without location:\n%s", got)
	}
	if !strings.Contains(got, "📦 Що доставити:\n—") {
		t.Errorf("empty items not rendered as placeholder:\n%s", got)
	}
}

func TestRenderOperator(t *testing.T) {
	d := NewDraft(42)
	d.Name = "Олег"
	d.Items = []string{"Документи"}
	d.PromoCode = "WELCOME"
	o, err := NewOrder(d, time.Unix(1_724_741_123, 0))
	if err != nil {
		t.Fatal(err)
	}
	got := RenderOperator(o)
	for _, want := range []string{
		"🆕 <b>НОВЕ ЗАМОВЛЕННЯ #741123:</b>",
		"👤 Клієнт: Олег (ID: 42)",
		"🎟️ Промокод: WELCOME",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("operator message missing %q\n%s", want, got)
		}
	}
}

func TestRenderOperatorSkipsEmptyPromo(t *testing.T) {
	d := NewDraft(42)
	d.Items = []string{"Документи"}
	o, err := NewOrder(d, time.Unix(1_724_741_123, 0))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(RenderOperator(o), "Промокод") {
		t.Error("promo line rendered for empty code")
	}
}

func TestRenderItemList(t *testing.T) {
	d := NewDraft(1)
	d.Items = []string{"A", "B"}
	d.Photos = []string{"p1", "p2", "p3"}
	got := RenderItemList(d)
	for _, want := range []string{"1. A", "2. B", "📷 Прикріплено фото: 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("item list missing %q\n%s", want, got)
		}
	}
}

func TestNewOrderRequiresCustomerAndItems(t *testing.T) {
	now := time.Now()
	if _, err := NewOrder(nil, now); err == nil {
		t.Error("nil draft accepted")
	}
	if _, err := NewOrder(NewDraft(0), now); err == nil {
		t.Error("zero customer accepted")
	}
	if _, err := NewOrder(NewDraft(1), now); err == nil {
		t.Error("empty items accepted")
	}
	d := NewDraft(1)
	d.Photos = []string{"p"}
	if _, err := NewOrder(d, now); err != nil {
		t.Errorf("photo-only draft rejected: %v", err)
	}
}
