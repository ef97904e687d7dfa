package order

// State identifies a step of the order intake conversation.
type State string

const (
	// StateIdle indicates there is no active order conversation.
	StateIdle State = "idle"

	// StateCaptcha awaits the arithmetic captcha answer.
	StateCaptcha State = "captcha"
	// StateName awaits the customer name.
	StateName State = "name"
	// StatePhone awaits a phone number, typed or shared as a contact.
	StatePhone State = "phone"
	// StateItems accumulates item lines and photo attachments.
	StateItems State = "items"
	// StateDeliveryMode awaits the self-ship/delivery choice.
	StateDeliveryMode State = "delivery_mode"
	// StatePickupAddress awaits the origin address on the self-ship branch.
	StatePickupAddress State = "pickup_address"
	// StateAddressMethod awaits the manual-entry/shared-location choice.
	StateAddressMethod State = "address_method"
	// StateDeliveryAddress awaits the destination address typed manually.
	StateDeliveryAddress State = "delivery_address"
	// StateDeliveryTime awaits the asap/custom time choice.
	StateDeliveryTime State = "delivery_time"
	// StateCustomTime awaits a free-text delivery time.
	StateCustomTime State = "custom_time"
	// StatePayment awaits the cash/cashless choice.
	StatePayment State = "payment"
	// StateChangeAmount awaits the banknote amount change is due from.
	StateChangeAmount State = "change_amount"
	// StateReview shows the assembled order for confirmation.
	StateReview State = "review"
	// StatePromoCode awaits an optional promo code before submission.
	StatePromoCode State = "promo_code"

	// StateSubmitted is terminal; the order has been emitted.
	StateSubmitted State = "submitted"
	// StateCancelled is terminal; accumulated fields are discarded.
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further transitions are possible from s.
func (s State) Terminal() bool {
	return s == StateSubmitted || s == StateCancelled
}

// InProgress reports whether an order form is actively being filled.
func (s State) InProgress() bool {
	return s != StateIdle && !s.Terminal()
}
