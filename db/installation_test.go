package db_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/polarishealth/telemetry/db"
	"github.com/polarishealth/telemetry/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func testMobileSpec() models.MobileInstallationSpec {
	return models.MobileInstallationSpec{
		UniqueDeviceCode:  uuid.NewString(),
		DateFirstLaunched: time.Date(2024, 3, 14, 9, 26, 53, 0, time.FixedZone("", 5*3600+1800)),
		AppProduct:        "GDM",
		AppVersion:        "1.0",
		PhoneOS:           "iOS",
		PhoneOSVersion:    "17.4",
		Manufacturer:      "Apple",
		Model:             "iPhone 15",
		DisplayName:       "Kat's iPhone",
	}
}

func testDesktopSpec() models.DesktopInstallationSpec {
	return models.DesktopInstallationSpec{
		UniqueDeviceCode: uuid.NewString(),
		DateFirstUsed:    time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC),
		AppProduct:       "GDM",
		AppVersion:       "1.0",
		DesktopOS:        "Windows",
		DesktopOSVersion: "11",
		IPAddress:        "10.20.30.40",
	}
}

// TestDBMobileInstallations verifies the behavior of
// `Database.RecordMobileInstallation`, `Database.GetMobileInstallation`, and
// `Database.UpdateMobileInstallation`.
func TestDBMobileInstallations(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	// Create a unique temporary DB file for this test
	testDB := fmt.Sprintf("/tmp/telemetry_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	// Create a new DB connection
	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	// Create database tables
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	patient1 := uuid.NewString()
	patient2 := uuid.NewString()
	actor := uuid.NewString()

	// -------------------------------------------------------------------------
	// 1 – Record a new installation for patient 1
	var install1 models.Mobile
	spec1 := testMobileSpec()
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.RecordMobileInstallation(ctx, patient1, spec1, actor)
		if err != nil {
			return err
		}
		install1 = r
		return nil
	})
	assert.Nil(err)
	assert.NotEmpty(install1.ID)
	assert.Equal(patient1, install1.PatientID)
	assert.Equal(actor, install1.CreatedBy)
	assert.Equal(actor, install1.UpdatedBy)
	assert.True(spec1.DateFirstLaunched.Equal(install1.DateFirstLaunched()))

	// 2 – Get back the installation and verify its content
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.GetMobileInstallation(ctx, patient1, install1.ID)
		if err != nil {
			return err
		}
		assert.Equal(spec1.UniqueDeviceCode, r.UniqueDeviceCode)
		assert.Equal(spec1.AppVersion, r.AppVersion)
		assert.Equal(spec1.Model, r.Model)
		// The stored instant keeps the submitted offset
		assert.Equal(
			spec1.DateFirstLaunched.Format(models.ISO8601Millis),
			r.DateFirstLaunched().Format(models.ISO8601Millis),
		)
		return nil
	})
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 3 – Fetch the installation under the wrong patient (should fail)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetMobileInstallation(ctx, patient2, install1.ID)
		return err
	})
	assert.ErrorIs(err, db.ErrNotFound)

	// 4 – Fetch an unknown installation ID (should fail)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetMobileInstallation(ctx, patient1, uuid.NewString())
		return err
	})
	assert.ErrorIs(err, db.ErrNotFound)

	// -------------------------------------------------------------------------
	// 5 – Apply a partial update
	newVersion := "1.1"
	newModel := "iPhone 15 Pro"
	var updated models.Mobile
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.UpdateMobileInstallation(
			ctx,
			patient1,
			install1.ID,
			models.MobilePatch{AppVersion: &newVersion, Model: &newModel},
			actor,
		)
		if err != nil {
			return err
		}
		updated = r
		return nil
	})
	assert.Nil(err)
	assert.Equal(newVersion, updated.AppVersion)
	assert.Equal(newModel, updated.Model)
	// Untouched fields survive the update
	assert.Equal(spec1.UniqueDeviceCode, updated.UniqueDeviceCode)
	assert.Equal(spec1.PhoneOSVersion, updated.PhoneOSVersion)
	assert.True(spec1.DateFirstLaunched.Equal(updated.DateFirstLaunched()))

	// 6 – Update scoped to the wrong patient (should fail)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.UpdateMobileInstallation(
			ctx, patient2, install1.ID, models.MobilePatch{AppVersion: &newVersion}, actor,
		)
		return err
	})
	assert.ErrorIs(err, db.ErrNotFound)

	// -------------------------------------------------------------------------
	// 7 – List the audit events generated so far
	var events []models.TelemetryEventAudit
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		events, err = dbClient.ListTelemetryEvents(ctx, db.TelemetryEventQueryFilter{})
		return err
	})
	assert.Nil(err)
	assert.Len(events, 2)

	validate := validator.New()
	assert.Nil(models.RegisterWithValidator(validate))

	createEvents := 0
	updateEvents := 0
	for _, e := range events {
		meta, err := e.ParseMetadata(validate)
		assert.Nil(err)
		parsed, ok := meta.(models.TelemetryEventInstallationRelated)
		assert.True(ok)
		assert.Equal(install1.ID, parsed.InstallationID)
		assert.Equal(patient1, parsed.OwnerID)

		switch e.EventType {
		case models.TelemetryEventTypeMobileInstallationCreated:
			createEvents++
		case models.TelemetryEventTypeMobileInstallationUpdated:
			updateEvents++
		}
	}
	assert.Equal(1, createEvents)
	assert.Equal(1, updateEvents)
}

// TestDBLatestMobileInstallation verifies latest-installation resolution
// against the first-launch instant.
func TestDBLatestMobileInstallation(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	// Create a unique temporary DB file for this test
	testDB := fmt.Sprintf("/tmp/telemetry_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	// Create a new DB connection
	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	// Create database tables
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	patient1 := uuid.NewString()
	actor := uuid.NewString()

	// -------------------------------------------------------------------------
	// 1 – No installations yet; latest resolves to nothing
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.LatestMobileInstallation(ctx, patient1)
		if err != nil {
			return err
		}
		assert.Nil(r)
		return nil
	})
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 2 – Record installations out of first-launch order
	older := testMobileSpec()
	older.DateFirstLaunched = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	newer := testMobileSpec()
	newer.DateFirstLaunched = time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC)

	var newerInstall models.Mobile
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.RecordMobileInstallation(ctx, patient1, newer, actor)
		if err != nil {
			return err
		}
		newerInstall = r
		return nil
	})
	assert.Nil(err)

	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.RecordMobileInstallation(ctx, patient1, older, actor)
		return err
	})
	assert.Nil(err)

	// 3 – Latest picks the most recently first-launched, not most recently submitted
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.LatestMobileInstallation(ctx, patient1)
		if err != nil {
			return err
		}
		assert.NotNil(r)
		assert.Equal(newerInstall.ID, r.ID)
		return nil
	})
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 4 – A different patient's installations do not bleed in
	patient2 := uuid.NewString()
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.LatestMobileInstallation(ctx, patient2)
		if err != nil {
			return err
		}
		assert.Nil(r)
		return nil
	})
	assert.Nil(err)
}

// TestDBDesktopInstallations verifies the desktop installation operations,
// including the app-version tie-break on latest resolution.
func TestDBDesktopInstallations(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	// Create a unique temporary DB file for this test
	testDB := fmt.Sprintf("/tmp/telemetry_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	// Create a new DB connection
	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	// Create database tables
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	clinician1 := uuid.NewString()
	actor := uuid.NewString()

	// -------------------------------------------------------------------------
	// 1 – Record a new installation for clinician 1
	var install1 models.Desktop
	spec1 := testDesktopSpec()
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.RecordDesktopInstallation(ctx, clinician1, spec1, actor)
		if err != nil {
			return err
		}
		install1 = r
		return nil
	})
	assert.Nil(err)
	assert.NotEmpty(install1.ID)
	assert.Equal(clinician1, install1.ClinicianID)

	// 2 – Get back the installation and verify its content
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.GetDesktopInstallation(ctx, clinician1, install1.ID)
		if err != nil {
			return err
		}
		assert.Equal(spec1.UniqueDeviceCode, r.UniqueDeviceCode)
		assert.Equal(spec1.IPAddress, r.IPAddress)
		assert.True(spec1.DateFirstUsed.Equal(r.DateFirstUsed()))
		return nil
	})
	assert.Nil(err)

	// -------------------------------------------------------------------------
	// 3 – Fetch scoped to the wrong clinician (should fail)
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetDesktopInstallation(ctx, uuid.NewString(), install1.ID)
		return err
	})
	assert.ErrorIs(err, db.ErrNotFound)

	// -------------------------------------------------------------------------
	// 4 – Apply a partial update
	newOSVersion := "11 23H2"
	var updated models.Desktop
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.UpdateDesktopInstallation(
			ctx,
			clinician1,
			install1.ID,
			models.DesktopPatch{DesktopOSVersion: &newOSVersion},
			actor,
		)
		if err != nil {
			return err
		}
		updated = r
		return nil
	})
	assert.Nil(err)
	assert.Equal(newOSVersion, updated.DesktopOSVersion)
	assert.Equal(spec1.UniqueDeviceCode, updated.UniqueDeviceCode)
	assert.Equal(spec1.AppVersion, updated.AppVersion)

	// -------------------------------------------------------------------------
	// 5 – Record a second installation tied on the first-use instant but with a
	// higher version string
	spec2 := testDesktopSpec()
	spec2.DateFirstUsed = spec1.DateFirstUsed
	spec2.AppVersion = "2.0"
	var install2 models.Desktop
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.RecordDesktopInstallation(ctx, clinician1, spec2, actor)
		if err != nil {
			return err
		}
		install2 = r
		return nil
	})
	assert.Nil(err)

	// 6 – Latest breaks the tie on the version string
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.LatestDesktopInstallation(ctx, clinician1)
		if err != nil {
			return err
		}
		assert.NotNil(r)
		assert.Equal(install2.ID, r.ID)
		return nil
	})
	assert.Nil(err)

	// 7 – A later first-use instant dominates regardless of version
	spec3 := testDesktopSpec()
	spec3.DateFirstUsed = spec1.DateFirstUsed.Add(24 * time.Hour)
	spec3.AppVersion = "0.9"
	var install3 models.Desktop
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.RecordDesktopInstallation(ctx, clinician1, spec3, actor)
		if err != nil {
			return err
		}
		install3 = r
		return nil
	})
	assert.Nil(err)

	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		r, err := dbClient.LatestDesktopInstallation(ctx, clinician1)
		if err != nil {
			return err
		}
		assert.NotNil(r)
		assert.Equal(install3.ID, r.ID)
		return nil
	})
	assert.Nil(err)
}

// TestDBResetTelemetryTables verifies that the reset helper clears the
// installation tables but leaves meter pairings alone.
func TestDBResetTelemetryTables(t *testing.T) {
	assert := assert.New(t)
	log.SetLevel(log.DebugLevel)

	utCtx := context.Background()

	// Create a unique temporary DB file for this test
	testDB := fmt.Sprintf("/tmp/telemetry_ut_%s.db", ulid.Make().String())
	log.WithField("db", testDB).Debug("Test database")

	// Create a new DB connection
	uut, err := db.NewConnection(db.GetSqliteDialector(testDB), logger.Error)
	assert.Nil(err)

	// Create database tables
	assert.Nil(uut.RunSQLInTransaction(utCtx, db.DefineTables))

	patient1 := uuid.NewString()
	clinician1 := uuid.NewString()
	actor := uuid.NewString()

	// 1 – Seed one entry of each kind
	var mobile models.Mobile
	var desktop models.Desktop
	var meter models.BloodGlucoseMeter
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		m, err := dbClient.RecordMobileInstallation(ctx, patient1, testMobileSpec(), actor)
		if err != nil {
			return err
		}
		mobile = m
		d, err := dbClient.RecordDesktopInstallation(ctx, clinician1, testDesktopSpec(), actor)
		if err != nil {
			return err
		}
		desktop = d
		bg, err := dbClient.RecordMeterPairing(ctx, patient1, models.BloodGlucoseMeterSpec{
			MobileID: m.ID, SerialNumber: "SN-123",
		}, actor)
		if err != nil {
			return err
		}
		meter = bg
		return nil
	})
	assert.Nil(err)

	// 2 – Reset
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		return dbClient.ResetTelemetryTables(ctx)
	})
	assert.Nil(err)

	// 3 – Installations are gone; the meter pairing survives
	err = uut.UseDatabaseInTransaction(utCtx, func(ctx context.Context, dbClient db.Database) error {
		_, err := dbClient.GetMobileInstallation(ctx, patient1, mobile.ID)
		assert.ErrorIs(err, db.ErrNotFound)
		_, err = dbClient.GetDesktopInstallation(ctx, clinician1, desktop.ID)
		assert.ErrorIs(err, db.ErrNotFound)
		r, err := dbClient.GetMeterPairing(ctx, patient1, meter.ID)
		if err != nil {
			return err
		}
		assert.Equal("SN-123", r.SerialNumber)
		return nil
	})
	assert.Nil(err)
}
