package order

import (
	"errors"
	"fmt"
	"time"
)

// ErrIncomplete is returned when a draft is submitted without the fields a
// finished order must carry.
var ErrIncomplete = errors.New("order: draft incomplete")

// Order is the immutable record produced from a submitted draft.
type Order struct {
	ID         string
	CustomerID int64
	Name       string
	Phone      string

	Items  []string
	Photos []string

	Mode            DeliveryMode
	PickupAddress   string
	DeliveryAddress string
	Location        *Coordinates

	Time       TimeChoice
	Payment    PaymentMode
	ChangeFrom string
	PromoCode  string

	CreatedAt time.Time
}

// NewOrder freezes a draft into an order. The draft must carry a customer id
// and at least one item; everything else was validated on the way in.
func NewOrder(d *Draft, now time.Time) (*Order, error) {
	if d == nil || d.CustomerID == 0 || !d.HasItems() {
		return nil, ErrIncomplete
	}
	o := &Order{
		ID:              orderID(now),
		CustomerID:      d.CustomerID,
		Name:            d.Name,
		Phone:           d.Phone,
		Items:           append([]string(nil), d.Items...),
		Photos:          append([]string(nil), d.Photos...),
		Mode:            d.Mode,
		PickupAddress:   d.PickupAddress,
		DeliveryAddress: d.DeliveryAddress,
		Time:            d.Time,
		Payment:         d.Payment,
		ChangeFrom:      d.ChangeFrom,
		PromoCode:       d.PromoCode,
		CreatedAt:       now,
	}
	if d.Location != nil {
		loc := *d.Location
		o.Location = &loc
	}
	return o, nil
}

// orderID derives a short human-quotable id from the submit instant: the last
// six digits of the unix timestamp.
func orderID(now time.Time) string {
	return fmt.Sprintf("%06d", now.Unix()%1_000_000)
}
