package order

import (
	"fmt"
	"strings"
)

// placeholder fills fields that were never collected.
const placeholder = "—"

// escapeHTML neutralises Telegram HTML metacharacters. Draft fields are
// escaped once on the way in, so rendered messages embed them as-is.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// MapsLinks returns Google and Apple Maps URLs for a shared location.
func (c Coordinates) MapsLinks() (google, apple string) {
	google = fmt.Sprintf("https://maps.google.com/?q=%v,%v", c.Lat, c.Lon)
	apple = fmt.Sprintf("https://maps.apple.com/?q=%v,%v", c.Lat, c.Lon)
	return google, apple
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func itemLines(items []string) string {
	if len(items) == 0 {
		return placeholder
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(item)
	}
	return b.String()
}

// RenderReview builds the customer-facing confirmation message shown before
// submit. All draft fields are already HTML-escaped.
func RenderReview(d *Draft) string {
	var b strings.Builder
	b.WriteString("📋 <b>ПЕРЕВІРТЕ ВАШЕ ЗАМОВЛЕННЯ:</b>\n\n")
	fmt.Fprintf(&b, "👤 Ім'я: %s\n", orDash(d.Name))
	fmt.Fprintf(&b, "📱 Телефон: %s\n", orDash(d.Phone))
	writeBody(&b, d.Items, d.Mode, d.PickupAddress, d.DeliveryAddress, d.Location, d.Time, d.Payment, d.ChangeFrom)
	return b.String()
}

// RenderOperator builds the operator notification for a submitted order.
func RenderOperator(o *Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 <b>НОВЕ ЗАМОВЛЕННЯ #%s:</b>\n\n", o.ID)
	fmt.Fprintf(&b, "👤 Клієнт: %s (ID: %d)\n", orDash(o.Name), o.CustomerID)
	fmt.Fprintf(&b, "📱 Телефон: %s\n", orDash(o.Phone))
	if o.PromoCode != "" {
		fmt.Fprintf(&b, "🎟️ Промокод: %s\n", o.PromoCode)
	}
	writeBody(&b, o.Items, o.Mode, o.PickupAddress, o.DeliveryAddress, o.Location, o.Time, o.Payment, o.ChangeFrom)
	return b.String()
}

// RenderItemList builds the numbered edit view of collected items.
func RenderItemList(d *Draft) string {
	var b strings.Builder
	b.WriteString("📋 Поточний список товарів:\n\n")
	for i, item := range d.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	if len(d.Photos) > 0 {
		fmt.Fprintf(&b, "\n📷 Прикріплено фото: %d\n", len(d.Photos))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeBody(b *strings.Builder, items []string, mode DeliveryMode, pickup, delivery string, loc *Coordinates, t TimeChoice, pay PaymentMode, changeFrom string) {
	modeLabel := placeholder
	if mode != "" {
		modeLabel = mode.Label()
	}
	payLabel := placeholder
	if pay != "" {
		payLabel = pay.Label()
	}
	fmt.Fprintf(b, "📦 Що доставити:\n%s\n", itemLines(items))
	fmt.Fprintf(b, "🚛 Тип: %s\n", modeLabel)
	fmt.Fprintf(b, "🏠 Адреса відправлення: %s\n", orDash(pickup))
	fmt.Fprintf(b, "📍 Адреса доставки: %s\n", orDash(delivery))
	if loc != nil {
		google, apple := loc.MapsLinks()
		fmt.Fprintf(b, "🗺️ Переглянути на: <a href='%s'>Google Maps</a> | <a href='%s'>Apple Maps</a>\n", google, apple)
	}
	fmt.Fprintf(b, "⏰ Час доставки: %s\n", t.Label())
	fmt.Fprintf(b, "💰 Оплата: %s\n", payLabel)
	if pay == PayCash {
		fmt.Fprintf(b, "💲 Решта з: %s\n", orDash(changeFrom))
	}
}
