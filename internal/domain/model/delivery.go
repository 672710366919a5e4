package model

// DeliveryStatus classifies the outcome of pushing one notification.
type DeliveryStatus int

const (
	Delivered DeliveryStatus = iota
	// Blocked means the recipient disabled the conversation; the subscriber must be dropped.
	Blocked
	// Transient failures may succeed on a later cycle (network, flood control, 5xx).
	Transient
	// Fatal failures are caused by the message itself and will repeat for every recipient.
	Fatal
)

func (s DeliveryStatus) String() string {
	switch s {
	case Delivered:
		return "delivered"
	case Blocked:
		return "blocked"
	case Transient:
		return "transient"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

type DeliveryResult struct {
	Status DeliveryStatus
	Err    error
}

func (r DeliveryResult) OK() bool { return r.Status == Delivered }
