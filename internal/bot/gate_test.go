package bot

import (
	"context"
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type fakeMemberAPI struct {
	role tele.MemberStatus
	err  error

	gotChat string
	gotUser string
}

func (f *fakeMemberAPI) ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error) {
	f.gotChat = chat.Recipient()
	f.gotUser = user.Recipient()
	if f.err != nil {
		return nil, f.err
	}
	return &tele.ChatMember{Role: f.role}, nil
}

func TestGateDisabledWithoutChannel(t *testing.T) {
	gate := NewGate(&fakeMemberAPI{}, "")
	if gate.Enabled() {
		t.Fatal("gate without channel must be disabled")
	}
	if !gate.Subscribed(context.Background(), 1) {
		t.Fatal("disabled gate must admit everyone")
	}
}

func TestGateAllowsMemberRoles(t *testing.T) {
	for _, role := range []tele.MemberStatus{tele.Creator, tele.Administrator, tele.Member} {
		api := &fakeMemberAPI{role: role}
		gate := NewGate(api, "@channel")
		if !gate.Subscribed(context.Background(), 7) {
			t.Errorf("role %q should pass the gate", role)
		}
		if api.gotChat != "@channel" {
			t.Errorf("asked wrong chat %q", api.gotChat)
		}
		if api.gotUser != "7" {
			t.Errorf("asked wrong user %q", api.gotUser)
		}
	}
}

func TestGateRejectsNonMembers(t *testing.T) {
	for _, role := range []tele.MemberStatus{tele.Left, tele.Kicked, tele.Restricted} {
		gate := NewGate(&fakeMemberAPI{role: role}, "@channel")
		if gate.Subscribed(context.Background(), 7) {
			t.Errorf("role %q should not pass the gate", role)
		}
	}
}

func TestGateFailsClosedOnError(t *testing.T) {
	gate := NewGate(&fakeMemberAPI{err: errors.New("api down")}, "@channel")
	if gate.Subscribed(context.Background(), 7) {
		t.Fatal("API error must not admit the user")
	}
}
