package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionAllowedPairs(t *testing.T) {
	tests := []struct {
		name    string
		current AppointmentStatus
		target  AppointmentStatus
		wantErr error
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, nil},
		{"pending to cancelled", StatusPending, StatusCancelled, nil},
		{"confirmed to completed", StatusConfirmed, StatusCompleted, nil},
		{"confirmed to cancelled", StatusConfirmed, StatusCancelled, nil},
		{"pending to completed", StatusPending, StatusCompleted, ErrInvalidTransition},
		{"confirmed back to pending", StatusConfirmed, StatusPending, ErrInvalidTransition},
		{"pending to pending", StatusPending, StatusPending, ErrInvalidTransition},
		{"unknown requested status", StatusPending, AppointmentStatus("archived"), ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.current, tt.target, RoleAdmin)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.current, got, "status must be unchanged on failure")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.target, got)
			}
		})
	}
}

func TestTransitionTerminalStatesAreAbsorbing(t *testing.T) {
	all := []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

	for _, terminal := range []AppointmentStatus{StatusCompleted, StatusCancelled} {
		assert.True(t, terminal.Terminal())
		for _, target := range all {
			_, err := Transition(terminal, target, RoleAdmin)
			assert.ErrorIs(t, err, ErrInvalidTransition,
				"no transition out of %s may succeed (tried %s)", terminal, target)
		}
	}
}

func TestTransitionRequiresAdmin(t *testing.T) {
	_, err := Transition(StatusPending, StatusConfirmed, RolePatient)
	assert.ErrorIs(t, err, ErrForbidden)

	// An unrecognized role is rejected the same way, not treated as admin.
	_, err = Transition(StatusPending, StatusConfirmed, Role("doctor"))
	assert.ErrorIs(t, err, ErrForbidden)

	// Role is checked before the transition table: a patient asking for an
	// allowed pair still gets ErrForbidden.
	_, err = Transition(StatusConfirmed, StatusCancelled, RolePatient)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestVisibleTo(t *testing.T) {
	apt := Appointment{OwnerID: "owner-1"}

	assert.True(t, apt.VisibleTo(Actor{ID: "owner-1", Role: RolePatient}))
	assert.True(t, apt.VisibleTo(Actor{ID: "someone-else", Role: RoleAdmin}))
	assert.False(t, apt.VisibleTo(Actor{ID: "someone-else", Role: RolePatient}))
	assert.False(t, apt.VisibleTo(Actor{ID: "", Role: Role("")}))
}

func TestFilterVisible(t *testing.T) {
	appointments := []Appointment{
		{BaseModel: BaseModel{ID: "a"}, OwnerID: "alice"},
		{BaseModel: BaseModel{ID: "b"}, OwnerID: "bob"},
		{BaseModel: BaseModel{ID: "c"}, OwnerID: "alice"},
	}

	alice := FilterVisible(appointments, Actor{ID: "alice", Role: RolePatient})
	require.Len(t, alice, 2)
	assert.Equal(t, "a", alice[0].ID)
	assert.Equal(t, "c", alice[1].ID)

	admin := FilterVisible(appointments, Actor{ID: "whoever", Role: RoleAdmin})
	assert.Len(t, admin, 3)

	assert.Len(t, appointments, 3, "input must not be mutated")
}

func TestSummarize(t *testing.T) {
	appointments := []Appointment{
		{Status: StatusPending},
		{Status: StatusCompleted},
		{Status: StatusCompleted},
	}

	summary := Summarize(appointments)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 0, summary.Confirmed)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 0, summary.Cancelled)
	assert.Equal(t, 1, summary.Upcoming)

	// Per-status counts always add back up to the total.
	assert.Equal(t, summary.Total,
		summary.Pending+summary.Confirmed+summary.Completed+summary.Cancelled)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, AppointmentSummary{}, Summarize(nil))
}

func validDraft() AppointmentDraft {
	return AppointmentDraft{
		PatientName: "A",
		Phone:       "555",
		Date:        "2099-01-01",
		Time:        "09:00",
		Type:        "General Consultation",
		Reason:      "",
	}
}

func TestNewAppointmentValidDraft(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	apt, err := NewAppointment(validDraft(), "owner-1", now)
	require.NoError(t, err)
	assert.NotEmpty(t, apt.ID)
	assert.Equal(t, StatusPending, apt.Status)
	assert.Equal(t, "owner-1", apt.OwnerID)
	assert.Equal(t, now, apt.CreatedAt)
	assert.Equal(t, "A", apt.PatientName)
	assert.Empty(t, apt.Reason)
}

func TestNewAppointmentGeneratesUniqueIDs(t *testing.T) {
	now := time.Now()
	first, err := NewAppointment(validDraft(), "owner-1", now)
	require.NoError(t, err)
	second, err := NewAppointment(validDraft(), "owner-1", now)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestNewAppointmentRejectsBadDrafts(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*AppointmentDraft)
		field  string
	}{
		{"missing patient name", func(d *AppointmentDraft) { d.PatientName = "  " }, "patientName"},
		{"missing phone", func(d *AppointmentDraft) { d.Phone = "" }, "phone"},
		{"missing date", func(d *AppointmentDraft) { d.Date = "" }, "date"},
		{"malformed date", func(d *AppointmentDraft) { d.Date = "01/02/2099" }, "date"},
		{"past date", func(d *AppointmentDraft) { d.Date = "2026-08-30" }, "date"},
		{"missing time", func(d *AppointmentDraft) { d.Time = "" }, "time"},
		{"unrecognized slot", func(d *AppointmentDraft) { d.Time = "12:00" }, "time"},
		{"missing type", func(d *AppointmentDraft) { d.Type = "" }, "type"},
		{"unrecognized type", func(d *AppointmentDraft) { d.Type = "Surgery" }, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validDraft()
			tt.mutate(&draft)

			apt, err := NewAppointment(draft, "owner-1", now)
			assert.Nil(t, apt)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected a ValidationError, got %v", err)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestNewAppointmentAllowsToday(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 30, 0, 0, time.UTC)
	draft := validDraft()
	draft.Date = "2026-08-31"

	apt, err := NewAppointment(draft, "owner-1", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", apt.Date)
}

func TestNewAppointmentSameDayWestOfUTC(t *testing.T) {
	// The draft date must be interpreted in the server's zone: with a western
	// offset, today's date parsed as UTC midnight would land before local
	// midnight and be wrongly rejected as past.
	loc := time.FixedZone("UTC-5", -5*60*60)
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, loc)
	draft := validDraft()
	draft.Date = "2026-08-31"

	apt, err := NewAppointment(draft, "owner-1", now)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-31", apt.Date)
	assert.Equal(t, StatusPending, apt.Status)
}

func TestBookingOptionRecognizers(t *testing.T) {
	for _, slot := range TimeSlots {
		assert.True(t, IsValidSlot(slot))
	}
	assert.False(t, IsValidSlot("08:00"))
	assert.False(t, IsValidSlot("9:00"))

	for _, at := range AppointmentTypes {
		assert.True(t, IsValidType(at))
	}
	assert.False(t, IsValidType("general consultation"))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
		assert.True(t, s.Valid())
	}
	assert.False(t, AppointmentStatus("rescheduled").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}
