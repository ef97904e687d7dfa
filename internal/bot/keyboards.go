package bot

import (
	"fmt"
	"strconv"

	"github.com/pulsedelivery/orderbot/internal/order"
	"github.com/pulsedelivery/orderbot/internal/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Callback keys registered in the registry and embedded in inline buttons.
const (
	cbSelfShip      = "sender"
	cbDelivery      = "delivery"
	cbManualAddress = "manual_address"
	cbASAP          = "asap"
	cbCustomTime    = "custom_time"
	cbPayCash       = "payment_cash"
	cbPayCashless   = "payment_cashless"
	cbEditOrder     = "edit_order"
	cbEnterPromo    = "enter_promo"
	cbSendOrder     = "send_order"
	cbRemoveItem    = "remove_item"
	cbAddMoreItems  = "add_more_items"
	cbFinishEditing = "finish_editing"
	cbCheckSub      = "check_subscription"
	cbAcceptOrder   = "accept_order"

	cbAdminPause     = "admin_pause_bot"
	cbAdminResume    = "admin_start_bot"
	cbAdminStatus    = "admin_status"
	cbAdminBlacklist = "admin_blacklist"
	cbAdminRefresh   = "admin_blacklist_refresh"
	cbAdminUnblock   = "unblock"
	cbAdminStop      = "admin_stop_bot"
	cbAdminBack      = "admin_back"
)

func newOrderKb() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{btnNewOrder})
}

func cancelKb() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{btnCancel})
}

func phoneKb() *tele.ReplyMarkup {
	return keyboard.ContactRequest(btnSharePhone, []string{btnCancel})
}

func itemsKb() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{btnDone}, []string{btnCancel})
}

func addressMethodKb() *tele.ReplyMarkup {
	return keyboard.LocationRequest(btnShareLocation,
		[]string{btnManualAddress},
		[]string{btnCancel},
	)
}

func deliveryModeKb() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📦 Моє відправлення", Unique: cbSelfShip},
		{Text: "🚚 Доставка", Unique: cbDelivery},
	})
}

func deliveryTimeKb() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "⚡ Якнайшвидше", Unique: cbASAP},
		{Text: "⏱️ Вказати свій час", Unique: cbCustomTime},
	})
}

func paymentKb() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💵 Готівка", Unique: cbPayCash},
		{Text: "💳 Переказ на карту", Unique: cbPayCashless},
	})
}

func reviewKb() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "✏️ Редагувати замовлення", Unique: cbEditOrder},
		{Text: "🎟️ Ввести промокод", Unique: cbEnterPromo},
		{Text: "📨 Надіслати замовлення", Unique: cbSendOrder},
	})
}

// itemsEditKb lists every item with a remove button, then the edit controls.
func itemsEditKb(d *order.Draft) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for i, item := range d.Items {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   "❌ Видалити " + strconv.Itoa(i+1) + ": " + truncate(item, 15),
			Unique: cbRemoveItem,
			Data:   strconv.Itoa(i),
		}})
	}
	rows = append(rows,
		[]keyboard.InlineBtn{{Text: "➕ Додати ще товар", Unique: cbAddMoreItems}},
		[]keyboard.InlineBtn{{Text: "✅ Завершити редагування", Unique: cbFinishEditing}},
	)
	return keyboard.InlineButtonsRows(rows...)
}

func subscribeKb(channel string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	join := markup.URL("📢 Підписатися на канал", "https://t.me/"+trimAt(channel))
	check := markup.Data("✅ Я підписався", cbCheckSub)
	markup.Inline(markup.Row(join), markup.Row(check))
	return markup
}

func acceptOrderKb(orderID string, customerID int64) *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{{
		Text:   "✅ Прийняти замовлення",
		Unique: cbAcceptOrder,
		Data:   orderID + ":" + strconv.FormatInt(customerID, 10),
	}})
}

func adminPanelKb(running bool) *tele.ReplyMarkup {
	toggle := keyboard.InlineBtn{Text: "⏸️ Призупинити бота", Unique: cbAdminPause}
	if !running {
		toggle = keyboard.InlineBtn{Text: "▶️ Запустити бота", Unique: cbAdminResume}
	}
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{toggle},
		[]keyboard.InlineBtn{{Text: "📊 Статус", Unique: cbAdminStatus}},
		[]keyboard.InlineBtn{{Text: "📋 Чорний список", Unique: cbAdminBlacklist}},
		[]keyboard.InlineBtn{{Text: "⏹️ Зупинити бота", Unique: cbAdminStop}},
	)
}

func blacklistKb(snapshot []int64) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for _, id := range snapshot {
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   fmt.Sprintf("❌ Видалити %d", id),
			Unique: cbAdminUnblock,
			Data:   strconv.FormatInt(id, 10),
		}})
	}
	rows = append(rows,
		[]keyboard.InlineBtn{{Text: "🔄 Оновити", Unique: cbAdminRefresh}},
		[]keyboard.InlineBtn{{Text: "⬅️ Назад", Unique: cbAdminBack}},
	)
	return keyboard.InlineButtonsRows(rows...)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}

func trimAt(channel string) string {
	if len(channel) > 0 && channel[0] == '@' {
		return channel[1:]
	}
	return channel
}
