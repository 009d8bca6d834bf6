package appointment

type Status string

const (
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
	StatusCompleted  Status = "completed"
	StatusUnanswered Status = "unanswered"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted, StatusUnanswered:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted, StatusUnanswered:
		return true
	default:
		return false
	}
}

// IsActive gates chat access and the slot conflict invariant.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

// Decision is one side's answer on a linked appointment.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionNoAnswer Decision = "no_answer"
)

func (d Decision) String() string {
	return string(d)
}

type Role string

const (
	RoleCustomer   Role = "customer"
	RoleStoreOwner Role = "store_owner"
	RoleFreeBarber Role = "free_barber"
)

type BookedByType string

const (
	BookedByCustomer BookedByType = "customer"
	BookedByStore    BookedByType = "store"
)

// EventKind labels rows in the append-only appointment event log.
type EventKind string

const (
	EventCreated    EventKind = "created"
	EventDecided    EventKind = "decided"
	EventApproved   EventKind = "approved"
	EventRejected   EventKind = "rejected"
	EventSuperseded EventKind = "superseded"
	EventUnanswered EventKind = "unanswered"
	EventCompleted  EventKind = "completed"
	EventCancelled  EventKind = "cancelled"
)
