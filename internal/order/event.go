package order

// Event is one typed input delivered by the transport. The transport maps
// control phrases and callback buttons to events before calling the machine;
// the machine never sees raw updates.
type Event interface {
	isEvent()
}

// Text is a free-text message.
type Text struct {
	Value string
}

// Contact is a shared phone contact.
type Contact struct {
	Phone string
}

// Photo is an opaque media reference to an attached photo.
type Photo struct {
	Ref string
}

// Location is a shared geolocation.
type Location struct {
	Lat float64
	Lon float64
}

// Choice is a button press identified by its key.
type Choice struct {
	Key string
}

// Done is the "that's all" control phrase closing item collection.
type Done struct{}

// Cancel aborts the order from any non-terminal state.
type Cancel struct{}

// RemoveItem asks to delete the item at a position of the current list.
type RemoveItem struct {
	Index int
}

func (Text) isEvent()       {}
func (Contact) isEvent()    {}
func (Photo) isEvent()      {}
func (Location) isEvent()   {}
func (Choice) isEvent()     {}
func (Done) isEvent()       {}
func (Cancel) isEvent()     {}
func (RemoveItem) isEvent() {}

// Choice keys understood by the machine.
const (
	ChoiceSelfShip   = "self_ship"
	ChoiceDelivery   = "delivery"
	ChoiceManual     = "manual"
	ChoiceASAP       = "asap"
	ChoiceCustomTime = "custom_time"
	ChoiceCash       = "cash"
	ChoiceCashless   = "cashless"
	ChoiceEdit       = "edit"
	ChoiceAddMore    = "add_more"
	ChoiceFinishEdit = "finish_edit"
	ChoicePromo      = "promo"
	ChoiceSubmit     = "submit"
)
