package subscription

// Event types the webhook reacts to.
const (
	EventCheckoutSessionCompleted   = "checkout.session.completed"
	EventCustomerSubscriptionUpdate = "customer.subscription.updated"
	EventCustomerSubscriptionDelete = "customer.subscription.deleted"
)

// Event is a verified billing webhook event. The set of implementations is
// closed: every variant is listed in EventVisitor, so adding one breaks the
// build until each visitor handles it.
type Event interface {
	ID() string
	Type() string
	Accept(v EventVisitor) error
	sealed()
}

// EventVisitor handles each Event variant.
type EventVisitor interface {
	VisitCheckoutCompleted(CheckoutCompleted) error
	VisitSubscriptionUpdated(SubscriptionUpdated) error
	VisitSubscriptionDeleted(SubscriptionDeleted) error
	VisitIgnored(Ignored) error
}

type envelope struct {
	EventID   string
	EventType string
}

func (e envelope) ID() string   { return e.EventID }
func (e envelope) Type() string { return e.EventType }
func (envelope) sealed()        {}

// CheckoutCompleted is a finished checkout that started a subscription.
type CheckoutCompleted struct {
	envelope
	SessionID      string
	SubscriptionID string
	CustomerID     string
}

func (e CheckoutCompleted) Accept(v EventVisitor) error { return v.VisitCheckoutCompleted(e) }

// SubscriptionUpdated reports any change to an existing subscription.
type SubscriptionUpdated struct {
	envelope
	SubscriptionID string
	CustomerID     string
}

func (e SubscriptionUpdated) Accept(v EventVisitor) error { return v.VisitSubscriptionUpdated(e) }

// SubscriptionDeleted reports a subscription that ended.
type SubscriptionDeleted struct {
	envelope
	SubscriptionID string
	CustomerID     string
}

func (e SubscriptionDeleted) Accept(v EventVisitor) error { return v.VisitSubscriptionDeleted(e) }

// Ignored is any verified event outside the relevant set.
type Ignored struct {
	envelope
}

func (e Ignored) Accept(v EventVisitor) error { return v.VisitIgnored(e) }

// NewCheckoutCompleted builds a CheckoutCompleted event.
func NewCheckoutCompleted(id, sessionID, subscriptionID, customerID string) CheckoutCompleted {
	return CheckoutCompleted{
		envelope:       envelope{EventID: id, EventType: EventCheckoutSessionCompleted},
		SessionID:      sessionID,
		SubscriptionID: subscriptionID,
		CustomerID:     customerID,
	}
}

func NewSubscriptionUpdated(id, subscriptionID, customerID string) SubscriptionUpdated {
	return SubscriptionUpdated{
		envelope:       envelope{EventID: id, EventType: EventCustomerSubscriptionUpdate},
		SubscriptionID: subscriptionID,
		CustomerID:     customerID,
	}
}

func NewSubscriptionDeleted(id, subscriptionID, customerID string) SubscriptionDeleted {
	return SubscriptionDeleted{
		envelope:       envelope{EventID: id, EventType: EventCustomerSubscriptionDelete},
		SubscriptionID: subscriptionID,
		CustomerID:     customerID,
	}
}

func NewIgnored(id, eventType string) Ignored {
	return Ignored{envelope: envelope{EventID: id, EventType: eventType}}
}

var (
	_ Event = CheckoutCompleted{}
	_ Event = SubscriptionUpdated{}
	_ Event = SubscriptionDeleted{}
	_ Event = Ignored{}
)
