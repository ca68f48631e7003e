package postgres

import (
	"github.com/guhospital/hospital-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

type tokenRepository struct {
	BaseRepository
}

type patientRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

type billingRepository struct {
	BaseRepository
}

type doctorRepository struct {
	BaseRepository
}

type prescriptionRepository struct {
	BaseRepository
}

type pharmacyRepository struct {
	BaseRepository
}

type orderRepository struct {
	BaseRepository
}

type announcementRepository struct {
	BaseRepository
}

type roomRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func NewBillingRepository(base BaseRepository) repository.BillingRepository {
	return &billingRepository{base}
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func NewPharmacyRepository(base BaseRepository) repository.PharmacyRepository {
	return &pharmacyRepository{base}
}

func NewOrderRepository(base BaseRepository) repository.OrderRepository {
	return &orderRepository{base}
}

func NewAnnouncementRepository(base BaseRepository) repository.AnnouncementRepository {
	return &announcementRepository{base}
}

func NewRoomRepository(base BaseRepository) repository.RoomRepository {
	return &roomRepository{base}
}
