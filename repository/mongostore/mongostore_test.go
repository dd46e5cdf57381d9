package mongostore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"HospitalHub/database"
	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

/*
* Runs against a real server named by MONGO_URI
* Each test gets its own database, dropped on cleanup
 */
func newTestStore(t *testing.T) repository.Set {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx := context.Background()
	name := fmt.Sprintf("hospitalhub_test_%d", time.Now().UnixNano())
	client, db, err := database.Connect(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, database.EnsureIndexes(ctx, db))
	return New(db)
}

var storeDay = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

func newAppointment(doctor primitive.ObjectID, id, clock string, status models.AppointmentStatus) *models.Appointment {
	a := &models.Appointment{
		AppointmentID:  id,
		Doctor:         doctor,
		DoctorName:     "Dr. Rao",
		Patient:        primitive.NewObjectID(),
		Department:     primitive.NewObjectID(),
		DepartmentName: "Cardiology",
		Date:           storeDay,
		Time:           clock,
		Status:         status,
		CreatedAt:      storeDay,
	}
	if status == models.StatusPending || status == models.StatusConfirmed {
		key := models.SlotKey(doctor, storeDay, clock)
		a.SlotKey = &key
	}
	return a
}

func TestSlotKeyIndexIsPartial(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()
	doctor := primitive.NewObjectID()

	require.NoError(t, repos.Appointments.Insert(ctx, newAppointment(doctor, "APT1", "10:00", models.StatusPending)))
	err := repos.Appointments.Insert(ctx, newAppointment(doctor, "APT2", "10:00", models.StatusPending))
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	taken, err := repos.Appointments.SlotTaken(ctx, models.SlotKey(doctor, storeDay, "10:00"))
	require.NoError(t, err)
	assert.True(t, taken)

	_, err = repos.Appointments.UpdateStatus(ctx, "APT1", models.StatusPending, repository.StatusChange{
		To: models.StatusCancelled, Reason: "Travelling out of town", ActorRole: role.Patient, At: storeDay,
	})
	require.NoError(t, err)
	assert.NoError(t, repos.Appointments.Insert(ctx, newAppointment(doctor, "APT3", "10:00", models.StatusPending)))

	// cancelled rows carry no key so any number of them coexist
	assert.NoError(t, repos.Appointments.Insert(ctx, newAppointment(doctor, "APT4", "10:00", models.StatusCancelled)))
}

func TestUpdateStatusCompareAndSet(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, repos.Appointments.Insert(ctx, newAppointment(primitive.NewObjectID(), "APT1", "09:00", models.StatusPending)))

	updated, err := repos.Appointments.UpdateStatus(ctx, "APT1", models.StatusPending, repository.StatusChange{
		To: models.StatusConfirmed, Notes: "Bring previous ECG reports", At: storeDay,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)
	assert.Equal(t, "Bring previous ECG reports", updated.Notes)
	assert.NotNil(t, updated.SlotKey)

	_, err = repos.Appointments.UpdateStatus(ctx, "APT1", models.StatusPending, repository.StatusChange{To: models.StatusCancelled, At: storeDay})
	assert.ErrorIs(t, err, repository.ErrStale)

	_, err = repos.Appointments.UpdateStatus(ctx, "missing", models.StatusPending, repository.StatusChange{To: models.StatusConfirmed, At: storeDay})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	cancelled, err := repos.Appointments.UpdateStatus(ctx, "APT1", models.StatusConfirmed, repository.StatusChange{
		To: models.StatusCancelled, Reason: "Doctor unavailable", ActorRole: role.Doctor, At: storeDay,
	})
	require.NoError(t, err)
	assert.Nil(t, cancelled.SlotKey)
	assert.Equal(t, "doctor", cancelled.CancelledBy)
	assert.Equal(t, "Bring previous ECG reports", cancelled.Notes)
}

func TestActivityLogCappedAtLimit(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()
	admin := &models.Admin{ID: primitive.NewObjectID(), AdminID: "ADM0001", Name: "Root"}
	require.NoError(t, repos.Admins.Insert(ctx, admin))

	entries, err := repos.Activity.Recent(ctx, role.Admin, admin.ID, 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	for i := 1; i <= models.ActivityLogLimit+5; i++ {
		require.NoError(t, repos.Activity.Push(ctx, role.Admin, admin.ID, models.ActivityEntry{
			Action:      "test",
			Description: fmt.Sprintf("entry %d", i),
			Timestamp:   storeDay.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err = repos.Activity.Recent(ctx, role.Admin, admin.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, models.ActivityLogLimit)
	assert.Equal(t, "entry 105", entries[0].Description)
	assert.Equal(t, "entry 6", entries[len(entries)-1].Description)

	entries, err = repos.Activity.Recent(ctx, role.Admin, admin.ID, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	err = repos.Activity.Push(ctx, role.Admin, primitive.NewObjectID(), models.ActivityEntry{Action: "test"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDoctorApprovalOnce(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()
	d := &models.Doctor{ID: primitive.NewObjectID(), Name: "Dr. New", ApprovalStatus: models.ApprovalPending, IsActive: true}
	require.NoError(t, repos.Doctors.Insert(ctx, d))

	got, err := repos.Doctors.SetApproval(ctx, d.ID, models.ApprovalApproved, storeDay)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, got.ApprovalStatus)

	_, err = repos.Doctors.SetApproval(ctx, d.ID, models.ApprovalRejected, storeDay)
	assert.ErrorIs(t, err, repository.ErrStale)
	_, err = repos.Doctors.SetApproval(ctx, primitive.NewObjectID(), models.ApprovalApproved, storeDay)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	withHours, err := repos.Doctors.SetAvailability(ctx, d.ID, map[string][]models.TimeWindow{
		"wednesday": {{StartTime: "09:00", EndTime: "12:00"}},
	}, storeDay)
	require.NoError(t, err)
	assert.Equal(t, "12:00", withHours.Availability["wednesday"][0].EndTime)

	bookable, err := repos.Doctors.FindBookable(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, bookable.Availability["wednesday"], 1)
}

func TestStatsFacets(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()
	doctor := primitive.NewObjectID()
	require.NoError(t, repos.Appointments.Insert(ctx, newAppointment(doctor, "APT1", "09:00", models.StatusPending)))
	require.NoError(t, repos.Appointments.Insert(ctx, newAppointment(doctor, "APT2", "10:00", models.StatusConfirmed)))
	require.NoError(t, repos.Appointments.Insert(ctx, newAppointment(doctor, "APT3", "11:00", models.StatusCancelled)))

	stats, err := repos.Appointments.Stats(ctx, storeDay.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.ByStatus["pending"])
	assert.EqualValues(t, 1, stats.ByStatus["confirmed"])
	assert.EqualValues(t, 1, stats.ByStatus["cancelled"])
	require.Len(t, stats.ByDoctor, 1)
	assert.EqualValues(t, 3, stats.ByDoctor[0].Count)
	require.Len(t, stats.ByDay, 1)

	empty, err := repos.Appointments.Stats(ctx, storeDay.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
}

func TestEmptyListsAndCounters(t *testing.T) {
	repos := newTestStore(t)
	ctx := context.Background()

	leaves, total, err := repos.Leaves.List(ctx, repository.LeaveQuery{Page: repository.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.NotNil(t, leaves)
	assert.Zero(t, total)

	n, err := repos.Counters.Next(ctx, "ADMIN")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = repos.Counters.Next(ctx, "ADMIN")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
