package order

// DeliveryMode distinguishes who brings the parcel to the courier.
type DeliveryMode string

const (
	// ModeSelfShip means the customer ships the parcel themselves.
	ModeSelfShip DeliveryMode = "self_ship"
	// ModeDelivery means the courier picks up and delivers.
	ModeDelivery DeliveryMode = "delivery"
)

// Label returns the customer-facing name of the mode.
func (m DeliveryMode) Label() string {
	switch m {
	case ModeSelfShip:
		return "Відправник"
	case ModeDelivery:
		return "Одержувач"
	}
	return placeholder
}

// PaymentMode selects how the order is paid.
type PaymentMode string

const (
	// PayCash is paid in cash on delivery; change may be due.
	PayCash PaymentMode = "cash"
	// PayCashless is paid by card transfer.
	PayCashless PaymentMode = "cashless"
)

// Label returns the customer-facing name of the payment mode.
func (p PaymentMode) Label() string {
	switch p {
	case PayCash:
		return "Готівка 💵"
	case PayCashless:
		return "Переказ на карту 💳"
	}
	return placeholder
}

// TimeChoice is either "as soon as possible" or a free-text time.
type TimeChoice struct {
	ASAP   bool   `json:"asap"`
	Custom string `json:"custom,omitempty"`
}

// Chosen reports whether a delivery time has been picked.
func (t TimeChoice) Chosen() bool {
	return t.ASAP || t.Custom != ""
}

// Label returns the customer-facing rendering of the choice.
func (t TimeChoice) Label() string {
	switch {
	case t.ASAP:
		return "Якнайшвидше ⚡"
	case t.Custom != "":
		return "⏰ " + t.Custom
	}
	return placeholder
}

// Coordinates is a shared geolocation point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Draft accumulates order fields as the form advances. Fields for steps not
// yet reached stay at their zero values; validation happens on transition,
// never on read.
type Draft struct {
	CustomerID int64    `json:"customer_id"`
	Captcha    *Captcha `json:"captcha,omitempty"`

	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`

	Items  []string `json:"items,omitempty"`
	Photos []string `json:"photos,omitempty"`

	Mode            DeliveryMode `json:"mode,omitempty"`
	PickupAddress   string       `json:"pickup_address,omitempty"`
	DeliveryAddress string       `json:"delivery_address,omitempty"`
	Location        *Coordinates `json:"location,omitempty"`

	Time       TimeChoice  `json:"time"`
	Payment    PaymentMode `json:"payment,omitempty"`
	ChangeFrom string      `json:"change_from,omitempty"`
	PromoCode  string      `json:"promo_code,omitempty"`
}

// NewDraft starts an empty draft for the given customer.
func NewDraft(customerID int64) *Draft {
	return &Draft{CustomerID: customerID}
}

// HasItems reports whether at least one item line or photo was collected.
func (d *Draft) HasItems() bool {
	return len(d.Items) > 0 || len(d.Photos) > 0
}

// ResetItems discards the item accumulator before a fresh collection round.
func (d *Draft) ResetItems() {
	d.Items = nil
	d.Photos = nil
}

// RemoveItem deletes the line at the given position of the current list.
// It reports false when the index is out of range. Photos are unaffected.
func (d *Draft) RemoveItem(index int) bool {
	if index < 0 || index >= len(d.Items) {
		return false
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	return true
}
