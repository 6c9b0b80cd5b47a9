package services_test

import (
	"testing"
	"time"

	"relocation/internal/core/domain/model/driver"
	"relocation/internal/core/domain/model/job"
	"relocation/internal/core/domain/model/kernel"
	"relocation/internal/core/domain/model/offer"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func newJob(t *testing.T, status job.Status, distanceKm float64) *job.Job {
	t.Helper()

	schedule, _ := kernel.NewSchedule("2024-01-15", "10:00")
	origin, _ := kernel.NewPlace("Depot", nil)
	point, _ := kernel.NewGeoPoint(0, 0)
	destination, _ := kernel.NewPlace("Null Island", &point)
	vehicle, _ := job.NewVehicle("Skoda", "Octavia", "")

	snapshot := job.Snapshot{
		ID:       kernel.NewUUID(),
		ClientID: kernel.NewUUID(),
		Status:   status,
		Details: job.Details{
			Schedule: schedule, Origin: origin, Destination: destination,
			Vehicle: vehicle, Price: 300, DistanceKm: distanceKm,
		},
		CreatedAt: now.Add(-time.Hour),
	}
	if status.RequiresDriver() {
		d := kernel.NewUUID()
		snapshot.DriverID = &d
	}
	if status.RequiresStartedAt() {
		s := now.Add(-2 * time.Hour)
		snapshot.StartedAt = &s
	}

	j, err := job.RestoreJob(snapshot)
	require.NoError(t, err)
	return j
}

func newDriver(t *testing.T, employment driver.EmploymentType) *driver.Driver {
	t.Helper()

	d, err := driver.NewDriver(kernel.NewUUID(), "Driver "+kernel.NewUUID().String()[:4], employment)
	require.NoError(t, err)
	return d
}

func newOffer(t *testing.T, j *job.Job, d *driver.Driver) *offer.Offer {
	t.Helper()

	o, err := offer.NewOffer(j.ID(), d.ID(), now.Add(-10*time.Minute))
	require.NoError(t, err)
	return o
}

func newActor(t *testing.T, role kernel.Role) kernel.Actor {
	t.Helper()

	a, err := kernel.NewActor(kernel.NewUUID(), role)
	require.NoError(t, err)
	return a
}
