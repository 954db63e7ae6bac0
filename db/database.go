package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/polarishealth/telemetry/models"
	"gorm.io/gorm"
)

// ErrNotFound owner-scoped lookup matched no row. A correct ID under the wrong
// owner is indistinguishable from a nonexistent ID.
var ErrNotFound = errors.New("entity not found")

// CommonListEntryQueryFilter common query filter when listing data entries
type CommonListEntryQueryFilter struct {
	Limit  *int
	Offset *int
}

// TelemetryEventQueryFilter audit event query filter conditions
type TelemetryEventQueryFilter struct {
	CommonListEntryQueryFilter
	// EventTypes the specific event types to query for
	EventTypes []models.TelemetryEventTypeENUMType
	// EventsAfter filter for events after this timestamp
	EventsAfter *time.Time
	// EventsBefore filter for events before this timestamp
	EventsBefore *time.Time
}

// Database the database handle to interacting with the data base
type Database interface {
	// ------------------------------------------------------------------------------------
	// Telemetry audit events

	/*
		ListTelemetryEvents list captured telemetry audit events

			@param ctx context.Context - execution context
			@param filters TelemetryEventQueryFilter - entry listing filter
			@return list of telemetry events
	*/
	ListTelemetryEvents(
		ctx context.Context, filters TelemetryEventQueryFilter,
	) ([]models.TelemetryEventAudit, error)

	// ------------------------------------------------------------------------------------
	// Mobile installations

	/*
		RecordMobileInstallation record a new mobile installation for a patient

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param spec models.MobileInstallationSpec - installation details
			@param actor string - identity of the caller
			@returns installation entry
	*/
	RecordMobileInstallation(
		ctx context.Context, patientID string, spec models.MobileInstallationSpec, actor string,
	) (models.Mobile, error)

	/*
		GetMobileInstallation fetch a mobile installation scoped by owner

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param installationID string - installation entry ID
			@returns installation entry
	*/
	GetMobileInstallation(
		ctx context.Context, patientID string, installationID string,
	) (models.Mobile, error)

	/*
		LatestMobileInstallation resolve the patient's latest installation

		Latest means most recently first-launched, not most recently submitted.

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@returns installation entry, or nil when the patient has none
	*/
	LatestMobileInstallation(ctx context.Context, patientID string) (*models.Mobile, error)

	/*
		UpdateMobileInstallation apply a partial update to a mobile installation

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param installationID string - installation entry ID
			@param patch models.MobilePatch - fields to replace
			@param actor string - identity of the caller
			@returns updated installation entry
	*/
	UpdateMobileInstallation(
		ctx context.Context,
		patientID string,
		installationID string,
		patch models.MobilePatch,
		actor string,
	) (models.Mobile, error)

	// ------------------------------------------------------------------------------------
	// Desktop installations

	/*
		RecordDesktopInstallation record a new desktop installation for a clinician

			@param ctx context.Context - execution context
			@param clinicianID string - the owning clinician
			@param spec models.DesktopInstallationSpec - installation details
			@param actor string - identity of the caller
			@returns installation entry
	*/
	RecordDesktopInstallation(
		ctx context.Context, clinicianID string, spec models.DesktopInstallationSpec, actor string,
	) (models.Desktop, error)

	/*
		GetDesktopInstallation fetch a desktop installation scoped by owner

			@param ctx context.Context - execution context
			@param clinicianID string - the owning clinician
			@param installationID string - installation entry ID
			@returns installation entry
	*/
	GetDesktopInstallation(
		ctx context.Context, clinicianID string, installationID string,
	) (models.Desktop, error)

	/*
		LatestDesktopInstallation resolve the clinician's latest installation

		Ties on the first-used instant break on the raw app version string.

			@param ctx context.Context - execution context
			@param clinicianID string - the owning clinician
			@returns installation entry, or nil when the clinician has none
	*/
	LatestDesktopInstallation(ctx context.Context, clinicianID string) (*models.Desktop, error)

	/*
		UpdateDesktopInstallation apply a partial update to a desktop installation

			@param ctx context.Context - execution context
			@param clinicianID string - the owning clinician
			@param installationID string - installation entry ID
			@param patch models.DesktopPatch - fields to replace
			@param actor string - identity of the caller
			@returns updated installation entry
	*/
	UpdateDesktopInstallation(
		ctx context.Context,
		clinicianID string,
		installationID string,
		patch models.DesktopPatch,
		actor string,
	) (models.Desktop, error)

	// ------------------------------------------------------------------------------------
	// Blood glucose meter pairings

	/*
		RecordMeterPairing record a new blood-glucose-meter pairing for a patient

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param spec models.BloodGlucoseMeterSpec - pairing details
			@param actor string - identity of the caller
			@returns pairing entry
	*/
	RecordMeterPairing(
		ctx context.Context, patientID string, spec models.BloodGlucoseMeterSpec, actor string,
	) (models.BloodGlucoseMeter, error)

	/*
		GetMeterPairing fetch a meter pairing scoped by owner

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param meterID string - pairing entry ID
			@returns pairing entry
	*/
	GetMeterPairing(
		ctx context.Context, patientID string, meterID string,
	) (models.BloodGlucoseMeter, error)

	/*
		UpdateMeterPairing apply a partial update to a meter pairing

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param meterID string - pairing entry ID
			@param patch models.BloodGlucoseMeterPatch - fields to replace
			@param actor string - identity of the caller
			@returns updated pairing entry
	*/
	UpdateMeterPairing(
		ctx context.Context,
		patientID string,
		meterID string,
		patch models.BloodGlucoseMeterPatch,
		actor string,
	) (models.BloodGlucoseMeter, error)

	// ------------------------------------------------------------------------------------
	// Non-production helpers

	/*
		ResetTelemetryTables clear the installation tables

		Meant for test environments only.

			@param ctx context.Context - execution context
	*/
	ResetTelemetryTables(ctx context.Context) error
}

// databaseImpl implements Database
type databaseImpl struct {
	goutils.Component
	db        *gorm.DB
	validator *validator.Validate
}

// newDatabase define a new database client
func newDatabase(_ context.Context, sqlClient *gorm.DB) (Database, error) {
	logTags := log.Fields{"package": "telemetry", "module": "db", "component": "db-client"}

	instance := &databaseImpl{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		db:        sqlClient,
		validator: validator.New(),
	}

	if err := models.RegisterWithValidator(instance.validator); err != nil {
		return nil, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	return instance, nil
}
