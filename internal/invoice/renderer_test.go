package invoice

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guhospital/hospital-api/internal/model"
)

func testSummary() *model.BillingSummary {
	paymentDate := time.Date(2025, 6, 3, 14, 0, 0, 0, time.UTC)
	appointmentDate := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	appointmentTime := "10:00"
	doctorFirst := "Sara"
	doctorLast := "Hassan"

	detail := &model.BillingDetail{
		Billing: model.Billing{
			PatientID:     uuid.New(),
			Amount:        650,
			PaymentStatus: model.PaymentStatusPaid,
			PaymentMethod: model.PaymentMethodCash,
			InvoiceDate:   time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
			PaymentDate:   &paymentDate,
		},
		PatientFirstName:  "Omar",
		PatientLastName:   "Adel",
		PatientNationalID: "29001011234567",
		PatientPhone:      "01012345678",
		PatientEmail:      "omar@example.com",
		AppointmentDate:   &appointmentDate,
		AppointmentTime:   &appointmentTime,
		DoctorFirstName:   &doctorFirst,
		DoctorLastName:    &doctorLast,
	}
	detail.ID = uuid.New()

	return &model.BillingSummary{
		Billing: detail,
		Lines: []model.BillingLine{
			{Description: "Consultation with Dr. Sara Hassan", Amount: 500},
			{Description: "Medication: Ibuprofen", Amount: 150},
		},
		Total: 650,
	}
}

func TestRenderWritesInvoiceFile(t *testing.T) {
	renderer, err := NewPDFRenderer(t.TempDir())
	require.NoError(t, err)

	summary := testSummary()
	path, err := renderer.Render(summary)
	require.NoError(t, err)
	assert.Equal(t, renderer.Path(summary.Billing.ID), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderWithoutAppointment(t *testing.T) {
	renderer, err := NewPDFRenderer(t.TempDir())
	require.NoError(t, err)

	summary := testSummary()
	summary.Billing.PaymentDate = nil
	summary.Billing.AppointmentDate = nil
	summary.Billing.AppointmentTime = nil
	summary.Billing.DoctorFirstName = nil
	summary.Billing.DoctorLastName = nil

	_, err = renderer.Render(summary)
	require.NoError(t, err)
}

func TestRenderRejectsEmptySummary(t *testing.T) {
	renderer, err := NewPDFRenderer(t.TempDir())
	require.NoError(t, err)

	_, err = renderer.Render(nil)
	assert.Error(t, err)
	_, err = renderer.Render(&model.BillingSummary{})
	assert.Error(t, err)
}

func TestRemoveIsIdempotent(t *testing.T) {
	renderer, err := NewPDFRenderer(t.TempDir())
	require.NoError(t, err)

	summary := testSummary()
	_, err = renderer.Render(summary)
	require.NoError(t, err)

	require.NoError(t, renderer.Remove(summary.Billing.ID))
	require.NoError(t, renderer.Remove(summary.Billing.ID))
	_, err = os.Stat(renderer.Path(summary.Billing.ID))
	assert.True(t, os.IsNotExist(err))
}
