package customer

import "fmt"

// ReferenceItem is a backend-owned lookup row used to fill a picker.
type ReferenceItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ReferenceKind int

const (
	SubscriptionTypes ReferenceKind = iota + 1
	SubscriptionDurations
	PaymentTypes
)

func ReferenceKinds() []ReferenceKind {
	return []ReferenceKind{SubscriptionTypes, SubscriptionDurations, PaymentTypes}
}

// Path is the collection endpoint serving this kind.
func (k ReferenceKind) Path() string {
	switch k {
	case SubscriptionTypes:
		return "/api/subscription-types/"
	case SubscriptionDurations:
		return "/api/subscription-durations/"
	case PaymentTypes:
		return "/api/payment-types/"
	}
	return ""
}

func (k ReferenceKind) String() string {
	switch k {
	case SubscriptionTypes:
		return "subscription_types"
	case SubscriptionDurations:
		return "subscription_durations"
	case PaymentTypes:
		return "payment_types"
	}
	return fmt.Sprintf("ReferenceKind(%d)", int(k))
}

func (k ReferenceKind) Valid() bool {
	return k.Path() != ""
}

// FindReference returns the item with the given id, if present.
func FindReference(items []ReferenceItem, id int64) (ReferenceItem, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return ReferenceItem{}, false
}
