package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/guhospital/hospital-api/internal/model"
)

var (
	// ErrNotFound is returned when a query matches no rows.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("record already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByNationalID(ctx context.Context, nationalID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, mustChange bool) error
	UpdateProfilePhoto(ctx context.Context, id uuid.UUID, path string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type TokenRepository interface {
	CreateResetToken(ctx context.Context, token *model.ResetToken) error
	GetResetToken(ctx context.Context, token string) (*model.ResetToken, error)
	DeleteResetToken(ctx context.Context, id uuid.UUID) error
}

type PatientRepository interface {
	CreateWithInsurance(ctx context.Context, user *model.User, patient *model.Patient, insurance *model.Insurance) error
	Get(ctx context.Context, userID uuid.UUID) (*model.PatientRecord, error)
	GetByNationalID(ctx context.Context, nationalID string) (*model.PatientRecord, error)
	List(ctx context.Context) ([]*model.PatientRecord, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, status model.PatientStatus) error
	UpdateDiagnosis(ctx context.Context, userID uuid.UUID, diagnosis string) error
	ReplaceAllergies(ctx context.Context, userID uuid.UUID, allergies []model.Allergy) error
	ListAllergies(ctx context.Context, userID uuid.UUID) ([]*model.Allergy, error)
	GetInsurance(ctx context.Context, userID uuid.UUID) (*model.Insurance, error)
	UpdateInsurance(ctx context.Context, insurance *model.Insurance) error
}

// BookingRepository is the transactional core: a billing row and the row that
// references it are created or destroyed together.
type BookingRepository interface {
	CreateWithBilling(ctx context.Context, appointment *model.Appointment, billing *model.Billing) error
	CancelWithBilling(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
}

type AppointmentRepository interface {
	BookingRepository
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, date time.Time, slot string) error
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error)
	ListUpcomingForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
	ListPastForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
	BookedSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
}

type BillingRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.BillingDetail, error)
	List(ctx context.Context, filters *model.BillingFilters) ([]*model.BillingDetail, error)
	ListPending(ctx context.Context) ([]*model.Billing, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, status model.PaymentStatus) ([]*model.Billing, error)
	MarkPaid(ctx context.Context, id uuid.UUID, method model.PaymentMethod) error
	GetInsurance(ctx context.Context, insuranceID uuid.UUID) (*model.Insurance, error)
	ListLines(ctx context.Context, billingID uuid.UUID) ([]model.BillingLine, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.DoctorRecord, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.DoctorProfile, error)
	ListSpecialties(ctx context.Context) ([]string, error)
	ListAvailability(ctx context.Context, specialty string) ([]model.Availability, error)
	ListBySpecialtySlot(ctx context.Context, specialty, day, hour string) ([]*model.DoctorRecord, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID) ([]*model.DoctorRecord, error)
}

type PrescriptionRepository interface {
	Create(ctx context.Context, prescription *model.Prescription) error
	Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
	List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePrescriptionRequest) error
	Confirm(ctx context.Context, id uuid.UUID) error
	ListRefillGroups(ctx context.Context) ([]*model.RefillGroup, error)
	CreateRefillBilling(ctx context.Context, items []model.RefillItem) (*model.RefillBatchResult, error)
	DecrementDueRefills(ctx context.Context, now time.Time) (int64, error)
}

type PharmacyRepository interface {
	ListMedications(ctx context.Context, namePrefix string) ([]*model.Medication, error)
	GetByName(ctx context.Context, name string) (*model.Medication, error)
	StockLevels(ctx context.Context) ([]*model.StockLevel, error)
	LowStock(ctx context.Context) ([]*model.LowStockItem, error)
	ExpiringWithin(ctx context.Context, days int) ([]*model.ExpirationAlert, error)
	Suggest(ctx context.Context, prefix string) ([]*model.MedicationSuggestion, error)
}

type OrderRepository interface {
	GetCatalogItem(ctx context.Context, id uuid.UUID) (*model.CatalogItem, error)
	SuggestCatalog(ctx context.Context, kind model.OrderKind, prefix string) ([]*model.CatalogSuggestion, error)
	CreateWithBilling(ctx context.Context, order *model.Order, billing *model.Billing) error
	Get(ctx context.Context, id uuid.UUID) (*model.OrderDetail, error)
	ListByStatus(ctx context.Context, kind model.OrderKind, status model.OrderStatus) ([]*model.OrderDetail, error)
	Complete(ctx context.Context, id uuid.UUID, results string) error
}

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *model.Announcement) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.AnnouncementDetail, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type RoomRepository interface {
	ListAvailable(ctx context.Context) ([]*model.Room, error)
	ListDepartments(ctx context.Context) ([]*model.Department, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
