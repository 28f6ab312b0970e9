package engine

// =============================================================================
// ORDER STATUS - Manual fulfillment toggle, not a pipeline
// =============================================================================

// Status is the fulfillment state of an order. Any state may move
// directly to any other: the workflow models the owner toggling a label
// by hand, so there is intentionally no transition table and no terminal
// state (a delivered order can be reverted).
type Status string

const (
	StatusNew       Status = "NEW"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
)

// AllStatuses in workflow display order.
var AllStatuses = []Status{StatusNew, StatusPreparing, StatusReady, StatusDelivered}

// ParseStatus normalizes a stored status string. Unknown or missing
// values default to NEW: legacy orders predate the status field.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusNew, StatusPreparing, StatusReady, StatusDelivered:
		return Status(s)
	default:
		return StatusNew
	}
}

// Valid reports whether s is one of the four known states.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusPreparing, StatusReady, StatusDelivered:
		return true
	}
	return false
}

// SetStatus returns a copy of the order in the given state. Financial
// fields are carried over untouched: status changes never trigger a
// recomputation.
func SetStatus(o Order, s Status) Order {
	cp := o.Clone()
	cp.Status = s
	return cp
}
