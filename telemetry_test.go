package telemetry_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	telemetry "github.com/polarishealth/telemetry"
	"github.com/polarishealth/telemetry/db"
	"github.com/polarishealth/telemetry/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

// TestTelemetryRegistriesEndToEnd performs a full end-to-end test of the
// telemetry registries. A temporary SQLite database is created, the
// `telemetry.New` constructor is exercised, and installation and meter
// pairing records are written, read, and updated.
func TestTelemetryRegistriesEndToEnd(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	// ------------------------------------------------------------------
	// 1. Create a temporary SQLite database
	// ------------------------------------------------------------------
	ctx := context.Background()

	testDB := fmt.Sprintf("/tmp/telemetry_ut_%s.db", ulid.Make().String())
	dbClient, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	// Create tables
	assert.Nil(dbClient.RunSQLInTransaction(ctx, db.DefineTables))

	// ------------------------------------------------------------------
	// 2. Create the registries
	// ------------------------------------------------------------------
	registries, err := telemetry.New(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	patient := uuid.NewString()
	clinician := uuid.NewString()

	// ------------------------------------------------------------------
	// 3. Record a mobile installation for the patient
	// ------------------------------------------------------------------
	mobileSpec := models.MobileInstallationSpec{
		UniqueDeviceCode:  uuid.NewString(),
		DateFirstLaunched: time.Date(2024, 2, 2, 14, 30, 0, 0, time.FixedZone("", -7*3600)),
		AppProduct:        "GDM",
		AppVersion:        "1.0",
		PhoneOS:           "Android",
		PhoneOSVersion:    "14",
		Manufacturer:      "Samsung",
		Model:             "Galaxy S24",
		DisplayName:       "Sam's phone",
	}
	mobile, err := registries.Installations.RecordMobileInstallation(
		ctx, patient, mobileSpec, patient, nil,
	)
	assert.Nil(err)
	assert.NotEmpty(mobile.ID)

	// ------------------------------------------------------------------
	// 4. Fetch it back and verify the submitted offset survived
	// ------------------------------------------------------------------
	fetched, err := registries.Installations.GetMobileInstallation(ctx, patient, mobile.ID, nil)
	assert.Nil(err)
	assert.Equal(
		mobileSpec.DateFirstLaunched.Format(models.ISO8601Millis),
		fetched.DateFirstLaunched().Format(models.ISO8601Millis),
	)

	// ------------------------------------------------------------------
	// 5. Latest resolution returns the one installation
	// ------------------------------------------------------------------
	latest, err := registries.Installations.LatestMobileInstallation(ctx, patient, nil)
	assert.Nil(err)
	assert.NotNil(latest)
	assert.Equal(mobile.ID, latest.ID)

	// ------------------------------------------------------------------
	// 6. Update the installation version string
	// ------------------------------------------------------------------
	newVersion := "1.2"
	updatedMobile, err := registries.Installations.UpdateMobileInstallation(
		ctx, patient, mobile.ID, models.MobilePatch{AppVersion: &newVersion}, patient, nil,
	)
	assert.Nil(err)
	assert.Equal(newVersion, updatedMobile.AppVersion)
	assert.Equal(mobileSpec.UniqueDeviceCode, updatedMobile.UniqueDeviceCode)

	// ------------------------------------------------------------------
	// 7. Record a desktop installation for the clinician
	// ------------------------------------------------------------------
	desktopSpec := models.DesktopInstallationSpec{
		UniqueDeviceCode: uuid.NewString(),
		DateFirstUsed:    time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC),
		AppProduct:       "GDM",
		AppVersion:       "1.0",
		DesktopOS:        "macOS",
		DesktopOSVersion: "14.4",
		IPAddress:        "192.168.1.20",
	}
	desktop, err := registries.Installations.RecordDesktopInstallation(
		ctx, clinician, desktopSpec, clinician, nil,
	)
	assert.Nil(err)
	assert.NotEmpty(desktop.ID)

	latestDesktop, err := registries.Installations.LatestDesktopInstallation(ctx, clinician, nil)
	assert.Nil(err)
	assert.NotNil(latestDesktop)
	assert.Equal(desktop.ID, latestDesktop.ID)

	// ------------------------------------------------------------------
	// 8. Pair a meter against the mobile installation
	// ------------------------------------------------------------------
	meter, err := registries.Meters.RecordMeterPairing(ctx, patient, models.BloodGlucoseMeterSpec{
		MobileID:     mobile.ID,
		SerialNumber: "SN-42",
		AppProduct:   "GDM",
		AppVersion:   "1.0",
	}, patient, nil)
	assert.Nil(err)
	assert.NotEmpty(meter.ID)

	// ------------------------------------------------------------------
	// 9. Update the pairing verification outcome
	// ------------------------------------------------------------------
	verified := time.Now().UTC()
	correct := true
	updatedMeter, err := registries.Meters.UpdateMeterPairing(
		ctx, patient, meter.ID,
		models.BloodGlucoseMeterPatch{DateVerified: &verified, IsBGValueCorrect: &correct},
		patient, nil,
	)
	assert.Nil(err)
	assert.NotNil(updatedMeter.IsBGValueCorrect)
	assert.True(*updatedMeter.IsBGValueCorrect)

	// ------------------------------------------------------------------
	// 10. Cross-owner access fails closed
	// ------------------------------------------------------------------
	_, err = registries.Installations.GetMobileInstallation(ctx, clinician, mobile.ID, nil)
	assert.ErrorIs(err, db.ErrNotFound)
	_, err = registries.Meters.GetMeterPairing(ctx, clinician, meter.ID, nil)
	assert.ErrorIs(err, db.ErrNotFound)

	// ------------------------------------------------------------------
	// 11. Clearing the installation tables leaves the meter pairing
	// ------------------------------------------------------------------
	assert.Nil(registries.Installations.ClearInstallations(ctx, nil))

	latest, err = registries.Installations.LatestMobileInstallation(ctx, patient, nil)
	assert.Nil(err)
	assert.Nil(latest)

	survivor, err := registries.Meters.GetMeterPairing(ctx, patient, meter.ID, nil)
	assert.Nil(err)
	assert.Equal("SN-42", survivor.SerialNumber)
}
