package appointment

import (
	"errors"
	"strings"
	"time"
)

// Statuses
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// ValidStatuses contains all valid appointment statuses.
var ValidStatuses = []string{StatusPending, StatusConfirmed, StatusCancelled}

// Domain errors
var (
	ErrMissingField = errors.New("all booking fields except message are required")
	ErrNotPending   = errors.New("only pending appointments can be confirmed or cancelled")
)

// Appointment is one visit-booking request submitted through the public form.
// Status moves pending→confirmed or pending→cancelled; deletion is allowed
// from any status. Only an admin performs transitions.
type Appointment struct {
	ID            int64     `json:"id"`
	ParentName    string    `json:"parentName"`
	ChildName     string    `json:"childName"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	ChildAge      string    `json:"childAge"`
	PreferredDate string    `json:"preferredDate"`
	PreferredTime string    `json:"preferredTime"`
	Message       string    `json:"message"` // optional
	Status        string    `json:"status"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Validate checks the booking form constraints.
// PRE: Appointment struct is populated from the form
// POST: Returns nil if valid, error otherwise
func (a *Appointment) Validate() error {
	required := []string{a.ParentName, a.ChildName, a.Email, a.Phone, a.ChildAge, a.PreferredDate, a.PreferredTime}
	for _, f := range required {
		if strings.TrimSpace(f) == "" {
			return ErrMissingField
		}
	}
	return nil
}

// Confirm moves a pending appointment to confirmed.
// PRE: Status is pending
// POST: Status is confirmed, no other field changes
func (a *Appointment) Confirm() error {
	if a.Status != StatusPending {
		return ErrNotPending
	}
	a.Status = StatusConfirmed
	return nil
}

// Cancel moves a pending appointment to cancelled.
// PRE: Status is pending
// POST: Status is cancelled, no other field changes
func (a *Appointment) Cancel() error {
	if a.Status != StatusPending {
		return ErrNotPending
	}
	a.Status = StatusCancelled
	return nil
}

// IsPending returns true if the appointment awaits an admin decision.
// INVARIANT: Status field is not mutated
func (a *Appointment) IsPending() bool {
	return a.Status == StatusPending
}
