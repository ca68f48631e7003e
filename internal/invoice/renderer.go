package invoice

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/guhospital/hospital-api/internal/model"
)

// Renderer writes invoice PDFs to disk, one file per billing row.
type Renderer interface {
	Render(summary *model.BillingSummary) (string, error)
	Remove(billingID uuid.UUID) error
	Path(billingID uuid.UUID) string
}

type pdfRenderer struct {
	dir string
}

func NewPDFRenderer(dir string) (Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create invoice directory: %w", err)
	}
	return &pdfRenderer{dir: dir}, nil
}

func (r *pdfRenderer) Path(billingID uuid.UUID) string {
	return filepath.Join(r.dir, fmt.Sprintf("invoice_%s.pdf", billingID))
}

func (r *pdfRenderer) Render(summary *model.BillingSummary) (string, error) {
	if summary == nil || summary.Billing == nil {
		return "", fmt.Errorf("billing summary is empty")
	}
	b := summary.Billing

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Hospital Invoice")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Invoice: %s", b.ID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Invoice date: %s", b.InvoiceDate.Format("2006-01-02")))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Status: %s", b.PaymentStatus))
	pdf.Ln(7)
	if b.PaymentDate != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Paid on: %s (%s)", b.PaymentDate.Format("2006-01-02"), b.PaymentMethod))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Patient")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("%s %s", b.PatientFirstName, b.PatientLastName))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("National ID: %s", b.PatientNationalID))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Phone: %s", b.PatientPhone))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Email: %s", b.PatientEmail))
	pdf.Ln(10)

	if b.AppointmentDate != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Appointment")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		when := b.AppointmentDate.Format("2006-01-02")
		if b.AppointmentTime != nil {
			when += " " + *b.AppointmentTime
		}
		pdf.Cell(0, 7, when)
		pdf.Ln(7)
		if b.DoctorFirstName != nil && b.DoctorLastName != nil {
			pdf.Cell(0, 7, fmt.Sprintf("Dr. %s %s", *b.DoctorFirstName, *b.DoctorLastName))
			pdf.Ln(7)
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range summary.Lines {
		pdf.CellFormat(140, 8, line.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", line.Amount), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", summary.Total), "1", 1, "R", false, 0, "")

	if summary.Coverage != nil {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(140, 8, "Insurance coverage", "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("-%.2f", summary.Coverage.CoveredAmount), "1", 1, "R", false, 0, "")

		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(140, 8, "Amount due", "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", summary.Coverage.RemainingAmount), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", time.Now().Format(time.RFC1123)))

	path := r.Path(b.ID)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write invoice pdf: %w", err)
	}
	return path, nil
}

// Remove deletes the invoice file if it exists. Missing files are fine, the
// invoice may never have been generated.
func (r *pdfRenderer) Remove(billingID uuid.UUID) error {
	err := os.Remove(r.Path(billingID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove invoice pdf: %w", err)
	}
	return nil
}
