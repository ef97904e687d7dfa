package bot

import (
	"strings"
	"testing"

	"github.com/pulsedelivery/orderbot/internal/order"
)

func TestItemsEditKbLayout(t *testing.T) {
	d := order.NewDraft(1)
	d.Items = []string{"молоко", "дуже довга назва товару з деталями", "хліб"}

	kb := itemsEditKb(d)
	rows := kb.InlineKeyboard
	// one row per item plus "add more" and "finish" rows
	if len(rows) != 5 {
		t.Fatalf("rows = %d", len(rows))
	}

	first := rows[0][0]
	if first.Unique != cbRemoveItem || first.Data != "0" {
		t.Fatalf("first remove button = %+v", first)
	}
	if !strings.Contains(first.Text, "1: молоко") {
		t.Fatalf("first button text = %q", first.Text)
	}

	long := rows[1][0]
	if !strings.HasSuffix(long.Text, "…") {
		t.Fatalf("long item should be truncated, got %q", long.Text)
	}

	if rows[3][0].Unique != cbAddMoreItems {
		t.Fatalf("expected add-more row, got %+v", rows[3][0])
	}
	if rows[4][0].Unique != cbFinishEditing {
		t.Fatalf("expected finish row, got %+v", rows[4][0])
	}
}

func TestAcceptOrderKbPayload(t *testing.T) {
	kb := acceptOrderKb("741123", 42)
	if len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != 1 {
		t.Fatalf("unexpected layout: %+v", kb.InlineKeyboard)
	}
	btn := kb.InlineKeyboard[0][0]
	if btn.Unique != cbAcceptOrder {
		t.Fatalf("unique = %q", btn.Unique)
	}
	if btn.Data != "741123:42" {
		t.Fatalf("data = %q", btn.Data)
	}
}

func TestBlacklistKb(t *testing.T) {
	kb := blacklistKb([]int64{10, 20})
	rows := kb.InlineKeyboard
	if len(rows) != 4 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][0].Unique != cbAdminUnblock || rows[0][0].Data != "10" {
		t.Fatalf("first unblock button = %+v", rows[0][0])
	}
	if rows[2][0].Unique != cbAdminRefresh {
		t.Fatalf("expected refresh row, got %+v", rows[2][0])
	}
	if rows[3][0].Unique != cbAdminBack {
		t.Fatalf("expected back row, got %+v", rows[3][0])
	}
}

func TestAdminPanelKbToggles(t *testing.T) {
	running := adminPanelKb(true)
	if running.InlineKeyboard[0][0].Unique != cbAdminPause {
		t.Fatalf("running panel should offer pause, got %+v", running.InlineKeyboard[0][0])
	}
	paused := adminPanelKb(false)
	if paused.InlineKeyboard[0][0].Unique != cbAdminResume {
		t.Fatalf("paused panel should offer resume, got %+v", paused.InlineKeyboard[0][0])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("короткий", 15); got != "короткий" {
		t.Fatalf("short string changed: %q", got)
	}
	got := truncate("дуже довга назва товару", 15)
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	if runes := []rune(got); len(runes) != 16 {
		t.Fatalf("truncated length = %d", len(runes))
	}
}

func TestTrimAt(t *testing.T) {
	if trimAt("@channel") != "channel" {
		t.Fatal("should strip leading @")
	}
	if trimAt("channel") != "channel" {
		t.Fatal("plain name should pass through")
	}
}

func TestRenderBlacklist(t *testing.T) {
	if got := renderBlacklist(nil); got != textBlacklistEmpty {
		t.Fatalf("empty list render = %q", got)
	}
	got := renderBlacklist([]int64{5, 9})
	if !strings.Contains(got, "<code>5</code>") || !strings.Contains(got, "<code>9</code>") {
		t.Fatalf("render = %q", got)
	}
	if !strings.HasPrefix(got, "📋") {
		t.Fatalf("missing header: %q", got)
	}
}
