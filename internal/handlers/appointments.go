package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB *gorm.DB
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db}
}

// BookingOptions carries the fixed slot and category lists the booking form
// offers. Served to clients so they never hardcode them.
type BookingOptions struct {
	TimeSlots        []string `json:"timeSlots"`
	AppointmentTypes []string `json:"appointmentTypes"`
}

// GetBookingOptions handles fetching the bookable time slots and visit types.
func (h *AppointmentHandler) GetBookingOptions(c *gin.Context) {
	utils.Success(c, "Booking options fetched successfully", BookingOptions{
		TimeSlots:        models.TimeSlots,
		AppointmentTypes: models.AppointmentTypes,
	})
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	PatientName string `json:"patientName" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Reason      string `json:"reason"`
}

// CreateAppointment handles booking a new appointment. The owner is always the
// authenticated user and the record always starts out pending.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := models.NewAppointment(models.AppointmentDraft{
		PatientName: req.PatientName,
		Phone:       req.Phone,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		Reason:      req.Reason,
	}, actor.ID, time.Now())
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			utils.BadRequest(c, vErr.Error())
		} else {
			utils.InternalServerError(c, "Failed to build appointment: "+err.Error())
		}
		return
	}

	if err := h.DB.Create(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in user.
// Patients get their own bookings, admins get every booking.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointments []models.Appointment
	query := h.DB.Order("date asc, time asc")
	if actor.Role != models.RoleAdmin {
		query = query.Where("owner_id = ?", actor.ID)
	}

	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentSummary handles fetching the dashboard counts over the set of
// appointments the user may see.
func (h *AppointmentHandler) GetAppointmentSummary(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appointments []models.Appointment
	if err := h.DB.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	visible := models.FilterVisible(appointments, actor)
	utils.Success(c, "Appointment summary fetched successfully", models.Summarize(visible))
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the owning patient or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	if !appointment.VisibleTo(actor) {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating an
// appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=pending confirmed completed cancelled"`
}

// UpdateAppointmentStatus handles moving an appointment through its lifecycle.
// Admin only; the allowed transitions are pending to confirmed or cancelled and
// confirmed to completed or cancelled. The updated record is returned so the
// caller can patch its local copy instead of re-fetching the whole list.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID := c.Param("id")

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if !h.applyTransition(c, &appointment, req.Status, actor) {
		return
	}

	if err := h.DB.Save(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// applyTransition runs the lifecycle rule and sets the new status on the
// record. On failure it writes the matching error response (403 when the actor
// lacks the role, 409 when the pair is outside the transition table) and
// returns false; the record is left unchanged.
func (h *AppointmentHandler) applyTransition(c *gin.Context, appointment *models.Appointment, requested models.AppointmentStatus, actor models.Actor) bool {
	newStatus, err := models.Transition(appointment.Status, requested, actor.Role)
	switch {
	case errors.Is(err, models.ErrForbidden):
		utils.Forbidden(c, "Only administrators can change appointment status")
		return false
	case errors.Is(err, models.ErrInvalidTransition):
		utils.Conflict(c, "Cannot move appointment from "+string(appointment.Status)+" to "+string(requested))
		return false
	case err != nil:
		utils.InternalServerError(c, "Failed to apply status transition: "+err.Error())
		return false
	}

	appointment.Status = newStatus
	return true
}
