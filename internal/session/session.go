// Package session persists per-customer conversation state between updates.
package session

import (
	"context"

	"github.com/pulsedelivery/orderbot/internal/order"
)

// Session is everything the bot remembers about one customer's conversation:
// the form state and the draft being filled in.
type Session struct {
	State order.State  `json:"state"`
	Draft *order.Draft `json:"draft,omitempty"`
}

// New returns an idle session for the given customer.
func New(customerID int64) *Session {
	return &Session{State: order.StateIdle, Draft: order.NewDraft(customerID)}
}

// Clone returns a deep copy; callers may mutate it without affecting the
// stored session.
func (s *Session) Clone() *Session {
	cp := *s
	if s.Draft != nil {
		d := *s.Draft
		d.Items = append([]string(nil), s.Draft.Items...)
		d.Photos = append([]string(nil), s.Draft.Photos...)
		if s.Draft.Captcha != nil {
			captcha := *s.Draft.Captcha
			d.Captcha = &captcha
		}
		if s.Draft.Location != nil {
			loc := *s.Draft.Location
			d.Location = &loc
		}
		cp.Draft = &d
	}
	return &cp
}

// Manager stores sessions keyed by customer id. Implementations serialize
// Update calls per customer, so a mutation function never races with another
// update for the same user.
type Manager interface {
	// Get returns the stored session, or a fresh idle one if none exists.
	Get(ctx context.Context, customerID int64) (*Session, error)
	// Update loads the session, applies fn and persists the result.
	Update(ctx context.Context, customerID int64, fn func(*Session)) error
	// Clear drops the session entirely.
	Clear(ctx context.Context, customerID int64) error
	// Count reports how many sessions are currently stored.
	Count(ctx context.Context) (int, error)
}
