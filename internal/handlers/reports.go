package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/utils"
)

// ReportHandler generates downloadable PDF reports for administrators.
type ReportHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *gorm.DB, cfg *config.Config) *ReportHandler {
	return &ReportHandler{DB: db, Cfg: cfg}
}

// GetAppointmentReport handles generating a PDF report of all appointments,
// with a title page, the dashboard summary, and one table row per booking.
func (h *ReportHandler) GetAppointmentReport(c *gin.Context) {
	var appointments []models.Appointment
	if err := h.DB.Order("date asc, time asc").Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	pdfBytes, err := h.buildAppointmentReport(appointments, time.Now())
	if err != nil {
		utils.InternalServerError(c, "Failed to generate report: "+err.Error())
		return
	}

	filename := fmt.Sprintf("appointment-report-%s.pdf", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(200, "application/pdf", pdfBytes)
}

func (h *ReportHandler) buildAppointmentReport(appointments []models.Appointment, now time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right

	// Title page
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(usable, 40, h.Cfg.ClinicName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(usable, 12, "Appointment Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(usable, 12, "Generated on: "+now.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	// Summary section
	summary := models.Summarize(appointments)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(usable, 10, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		fmt.Sprintf("Total appointments: %d", summary.Total),
		fmt.Sprintf("Pending: %d", summary.Pending),
		fmt.Sprintf("Confirmed: %d", summary.Confirmed),
		fmt.Sprintf("Completed: %d", summary.Completed),
		fmt.Sprintf("Cancelled: %d", summary.Cancelled),
	} {
		pdf.CellFormat(usable, 7, line, "", 1, "L", false, 0, "")
	}

	// Appointment table
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(usable, 10, "Appointments", "", 1, "L", false, 0, "")

	headers := []string{"Patient", "Phone", "Date", "Time", "Type", "Status"}
	widths := []float64{40, 30, 25, 15, 45, 25}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 240, 240)
	for i, hdr := range headers {
		pdf.CellFormat(widths[i], 8, hdr, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, apt := range appointments {
		cells := []string{apt.PatientName, apt.Phone, apt.Date, apt.Time, apt.Type, string(apt.Status)}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(appointments) == 0 {
		pdf.CellFormat(usable, 7, "No appointments recorded.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
