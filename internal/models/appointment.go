package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Domain errors returned by the lifecycle functions. Handlers translate these
// into HTTP responses.
var (
	// ErrForbidden indicates the actor's role does not permit the operation.
	ErrForbidden = errors.New("actor is not permitted to perform this operation")
	// ErrInvalidTransition indicates the requested status change is not in the
	// allowed-transition table.
	ErrInvalidTransition = errors.New("status transition is not allowed")
)

// ValidationError describes a rejected booking draft field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TimeSlots is the fixed set of bookable times offered by the clinic.
var TimeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
}

// AppointmentTypes is the fixed set of visit categories offered by the clinic.
var AppointmentTypes = []string{
	"General Consultation",
	"Follow-up Visit",
	"Routine Check-up",
	"Specialist Consultation",
	"Emergency Visit",
	"Vaccination",
}

// IsValidSlot reports whether t is one of the clinic's bookable time slots.
func IsValidSlot(t string) bool {
	for _, slot := range TimeSlots {
		if slot == t {
			return true
		}
	}
	return false
}

// IsValidType reports whether t is a recognized appointment category.
func IsValidType(t string) bool {
	for _, at := range AppointmentTypes {
		if at == t {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of the four known statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether s is an absorbing state: no transition leaves it.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// allowedTransitions is the status state machine: pending may be confirmed or
// cancelled, confirmed may be completed or cancelled. Completed and cancelled
// are terminal.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the state machine permits moving from s to
// target, ignoring who is asking.
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// Transition applies the status state machine on behalf of an actor. Only
// admins may change status; any other role gets ErrForbidden regardless of the
// requested pair. An admin request outside the allowed-transition table gets
// ErrInvalidTransition. On success the new status is returned and the caller
// is responsible for persisting it.
func Transition(current, requested AppointmentStatus, role Role) (AppointmentStatus, error) {
	if role != RoleAdmin {
		return current, ErrForbidden
	}
	if !current.Valid() || !requested.Valid() {
		return current, ErrInvalidTransition
	}
	if !current.CanTransitionTo(requested) {
		return current, ErrInvalidTransition
	}
	return requested, nil
}

// Appointment represents one booking request and its current disposition.
// Records are never deleted; they only move through the status lifecycle.
type Appointment struct {
	BaseModel
	OwnerID     string            `gorm:"size:36;index" json:"ownerId"`
	PatientName string            `gorm:"size:255;not null" json:"patientName"`
	Phone       string            `gorm:"size:30;not null" json:"phone"`
	Date        string            `gorm:"size:10;not null" json:"date"` // YYYY-MM-DD
	Time        string            `gorm:"size:5;not null" json:"time"`
	Type        string            `gorm:"size:50;not null" json:"type"`
	Reason      string            `gorm:"type:text" json:"reason"`
	Status      AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// VisibleTo reports whether actor may see this record: admins see everything,
// patients see only their own bookings.
func (a *Appointment) VisibleTo(actor Actor) bool {
	return actor.Role == RoleAdmin || actor.ID == a.OwnerID
}

// FilterVisible returns the subset of appointments the actor may see,
// preserving order. The input is never mutated.
func FilterVisible(appointments []Appointment, actor Actor) []Appointment {
	visible := make([]Appointment, 0, len(appointments))
	for _, apt := range appointments {
		if apt.VisibleTo(actor) {
			visible = append(visible, apt)
		}
	}
	return visible
}

// AppointmentDraft is the user-submitted portion of a booking request.
type AppointmentDraft struct {
	PatientName string
	Phone       string
	Date        string
	Time        string
	Type        string
	Reason      string
}

// NewAppointment validates a draft and constructs a pending appointment owned
// by ownerID. The date must parse as YYYY-MM-DD and must not be before the
// current day; time and type must come from the fixed lists. Reason may be
// empty. The record is not persisted here.
func NewAppointment(draft AppointmentDraft, ownerID string, now time.Time) (*Appointment, error) {
	if strings.TrimSpace(draft.PatientName) == "" {
		return nil, &ValidationError{Field: "patientName", Reason: "must not be empty"}
	}
	if strings.TrimSpace(draft.Phone) == "" {
		return nil, &ValidationError{Field: "phone", Reason: "must not be empty"}
	}
	if draft.Date == "" {
		return nil, &ValidationError{Field: "date", Reason: "must not be empty"}
	}
	// Parse in the server's zone so the day-granularity comparison below is
	// against the same midnight; a booking for today is still valid.
	date, err := time.ParseInLocation("2006-01-02", draft.Date, now.Location())
	if err != nil {
		return nil, &ValidationError{Field: "date", Reason: "must be formatted as YYYY-MM-DD"}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return nil, &ValidationError{Field: "date", Reason: "must not be in the past"}
	}
	if draft.Time == "" {
		return nil, &ValidationError{Field: "time", Reason: "must not be empty"}
	}
	if !IsValidSlot(draft.Time) {
		return nil, &ValidationError{Field: "time", Reason: "is not an offered time slot"}
	}
	if draft.Type == "" {
		return nil, &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	if !IsValidType(draft.Type) {
		return nil, &ValidationError{Field: "type", Reason: "is not a recognized appointment type"}
	}

	apt := &Appointment{
		OwnerID:     ownerID,
		PatientName: strings.TrimSpace(draft.PatientName),
		Phone:       strings.TrimSpace(draft.Phone),
		Date:        draft.Date,
		Time:        draft.Time,
		Type:        draft.Type,
		Reason:      strings.TrimSpace(draft.Reason),
		Status:      StatusPending,
	}
	apt.ID = uuid.New().String()
	apt.CreatedAt = now
	apt.UpdatedAt = now
	return apt, nil
}

// AppointmentSummary holds the dashboard counts derived from a set of records.
// Upcoming is the pending plus confirmed figure the patient dashboard shows.
type AppointmentSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Upcoming  int `json:"upcoming"`
}

// Summarize reduces a collection of appointments to per-status counts in a
// single pass.
func Summarize(appointments []Appointment) AppointmentSummary {
	summary := AppointmentSummary{Total: len(appointments)}
	for _, apt := range appointments {
		switch apt.Status {
		case StatusPending:
			summary.Pending++
		case StatusConfirmed:
			summary.Confirmed++
		case StatusCompleted:
			summary.Completed++
		case StatusCancelled:
			summary.Cancelled++
		}
	}
	summary.Upcoming = summary.Pending + summary.Confirmed
	return summary
}
