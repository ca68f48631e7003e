package room

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guhospital/hospital-api/internal/model"
)

// fakeRoomRepo mirrors the availability rule: a room is free only when no
// scheduled appointment, no catalog assignment, and no doctor's office
// claims it.
type fakeRoomRepo struct {
	rooms            []*model.Room
	appointmentRooms map[uuid.UUID]model.AppointmentStatus
	catalogRooms     map[uuid.UUID]bool
	officeRooms      map[uuid.UUID]bool
	departments      []*model.Department
}

func (f *fakeRoomRepo) ListAvailable(context.Context) ([]*model.Room, error) {
	var free []*model.Room
	for _, room := range f.rooms {
		if status, ok := f.appointmentRooms[room.ID]; ok && status == model.AppointmentStatusScheduled {
			continue
		}
		if f.catalogRooms[room.ID] || f.officeRooms[room.ID] {
			continue
		}
		free = append(free, room)
	}
	return free, nil
}

func (f *fakeRoomRepo) ListDepartments(context.Context) ([]*model.Department, error) {
	return f.departments, nil
}

func newRoom() *model.Room {
	room := &model.Room{FloorNumber: 1}
	room.ID = uuid.New()
	return room
}

func TestListAvailableExcludesClaimedRooms(t *testing.T) {
	freeRoom := newRoom()
	appointmentRoom := newRoom()
	cancelledRoom := newRoom()
	labRoom := newRoom()
	officeRoom := newRoom()

	repo := &fakeRoomRepo{
		rooms: []*model.Room{freeRoom, appointmentRoom, cancelledRoom, labRoom, officeRoom},
		appointmentRooms: map[uuid.UUID]model.AppointmentStatus{
			appointmentRoom.ID: model.AppointmentStatusScheduled,
			cancelledRoom.ID:   model.AppointmentStatusCancelled,
		},
		catalogRooms: map[uuid.UUID]bool{labRoom.ID: true},
		officeRooms:  map[uuid.UUID]bool{officeRoom.ID: true},
	}
	svc := NewService(repo)

	rooms, err := svc.ListAvailable(context.Background())
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}

	assert.Contains(t, ids, freeRoom.ID)
	// A cancelled appointment releases its room.
	assert.Contains(t, ids, cancelledRoom.ID)
	assert.NotContains(t, ids, appointmentRoom.ID)
	assert.NotContains(t, ids, labRoom.ID)
	assert.NotContains(t, ids, officeRoom.ID)
}
