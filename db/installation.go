package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/polarishealth/telemetry/models"
	"gorm.io/gorm"
)

// ======================================================================================
// Installation kind descriptors
//
// Mobile and Desktop share the same registry logic. The descriptor pins down
// the per-kind differences: the owner column and the descending resolution
// keys for "latest". The set of kinds is closed; there is no runtime dispatch
// beyond these two values.

// installationKindTraits per-kind query parameters
type installationKindTraits struct {
	// ownerColumn column holding the owner ID
	ownerColumn string
	// latestOrderColumns descending multi-key ordering used to resolve "latest".
	// The primary key is the naive first-used/first-launched timestamp; any
	// secondary key compares as a raw string.
	latestOrderColumns []string
}

var mobileKind = installationKindTraits{
	ownerColumn:        "patient_id",
	latestOrderColumns: []string{"date_first_launched"},
}

var desktopKind = installationKindTraits{
	ownerColumn:        "clinician_id",
	latestOrderColumns: []string{"date_first_used", "app_version"},
}

// getInstallationEntry owner-scoped fetch of one installation row. Missing row
// and wrong owner are both ErrNotFound.
func getInstallationEntry[E any](
	d *databaseImpl, kind installationKindTraits, ownerID string, installationID string,
) (E, error) {
	var entry E
	err := d.db.
		Where(fmt.Sprintf("%s = ?", kind.ownerColumn), ownerID).
		Where("uuid = ?", installationID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entry, fmt.Errorf(
				"installation %s for owner %s: %w", installationID, ownerID, ErrNotFound,
			)
		}
		return entry, fmt.Errorf("failed to fetch installation %s [%w]", installationID, err)
	}
	return entry, nil
}

// latestInstallationEntry the owner's installation sorting last under the
// kind's descending multi-key ordering. Zero rows is not an error; the result
// is nil.
func latestInstallationEntry[E any](
	d *databaseImpl, kind installationKindTraits, ownerID string,
) (*E, error) {
	query := d.db.Where(fmt.Sprintf("%s = ?", kind.ownerColumn), ownerID)
	for _, column := range kind.latestOrderColumns {
		query = query.Order(fmt.Sprintf("%s desc", column))
	}

	var entries []E
	if tmp := query.Limit(1).Find(&entries); tmp.Error != nil {
		return nil, fmt.Errorf(
			"failed to resolve latest installation of owner %s [%w]", ownerID, tmp.Error,
		)
	}

	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// ======================================================================================
// Mobile installations

/*
RecordMobileInstallation record a new mobile installation for a patient

	@param ctx context.Context - execution context
	@param patientID string - the owning patient
	@param spec models.MobileInstallationSpec - installation details
	@param actor string - identity of the caller
	@returns installation entry
*/
func (d *databaseImpl) RecordMobileInstallation(
	_ context.Context, patientID string, spec models.MobileInstallationSpec, actor string,
) (models.Mobile, error) {
	if err := d.validator.Struct(&spec); err != nil {
		return models.Mobile{}, fmt.Errorf(
			"new mobile installation for patient %s is not valid [%w]", patientID, err,
		)
	}

	newEntry := MobileDBEntry{
		Mobile: models.Mobile{
			Identifier: models.Identifier{
				ID:        uuid.NewString(),
				CreatedBy: actor,
				UpdatedBy: actor,
			},
			PatientID:        patientID,
			UniqueDeviceCode: spec.UniqueDeviceCode,
			AppProduct:       spec.AppProduct,
			AppVersion:       spec.AppVersion,
			PhoneOS:          spec.PhoneOS,
			PhoneOSVersion:   spec.PhoneOSVersion,
			Manufacturer:     spec.Manufacturer,
			Model:            spec.Model,
			DisplayName:      spec.DisplayName,
		},
	}
	newEntry.SetDateFirstLaunched(spec.DateFirstLaunched)

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.Mobile{}, fmt.Errorf(
			"new mobile installation for patient %s is not valid [%w]", patientID, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.Mobile{}, fmt.Errorf(
			"new mobile installation for patient %s failed insert [%w]", patientID, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.defineNewTelemetryEvent(
		models.TelemetryEventTypeMobileInstallationCreated,
		models.TelemetryEventInstallationRelated{InstallationID: newEntry.ID, OwnerID: patientID},
	); err != nil {
		return models.Mobile{}, fmt.Errorf(
			"failed to log new mobile installation audit event [%w]", err,
		)
	}

	return newEntry.Mobile, nil
}

/*
GetMobileInstallation fetch a mobile installation scoped by owner

	@param ctx context.Context - execution context
	@param patientID string - the owning patient
	@param installationID string - installation entry ID
	@returns installation entry
*/
func (d *databaseImpl) GetMobileInstallation(
	_ context.Context, patientID string, installationID string,
) (models.Mobile, error) {
	entry, err := getInstallationEntry[MobileDBEntry](d, mobileKind, patientID, installationID)
	if err != nil {
		return models.Mobile{}, err
	}
	return entry.Mobile, nil
}

/*
LatestMobileInstallation resolve the patient's latest installation

	@param ctx context.Context - execution context
	@param patientID string - the owning patient
	@returns installation entry, or nil when the patient has none
*/
func (d *databaseImpl) LatestMobileInstallation(
	_ context.Context, patientID string,
) (*models.Mobile, error) {
	entry, err := latestInstallationEntry[MobileDBEntry](d, mobileKind, patientID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return &entry.Mobile, nil
}

/*
UpdateMobileInstallation apply a partial update to a mobile installation

	@param ctx context.Context - execution context
	@param patientID string - the owning patient
	@param installationID string - installation entry ID
	@param patch models.MobilePatch - fields to replace
	@param actor string - identity of the caller
	@returns updated installation entry
*/
func (d *databaseImpl) UpdateMobileInstallation(
	_ context.Context,
	patientID string,
	installationID string,
	patch models.MobilePatch,
	actor string,
) (models.Mobile, error) {
	entry, err := getInstallationEntry[MobileDBEntry](d, mobileKind, patientID, installationID)
	if err != nil {
		return models.Mobile{}, err
	}

	entry.ApplyPatch(patch)
	entry.UpdatedBy = actor

	if err := d.validator.Struct(&entry); err != nil {
		return models.Mobile{}, fmt.Errorf(
			"updated mobile installation %s is not valid [%w]", installationID, err,
		)
	}

	if tmp := d.db.Save(&entry); tmp.Error != nil {
		return models.Mobile{}, fmt.Errorf(
			"failed to update mobile installation %s [%w]", installationID, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.defineNewTelemetryEvent(
		models.TelemetryEventTypeMobileInstallationUpdated,
		models.TelemetryEventInstallationRelated{InstallationID: entry.ID, OwnerID: patientID},
	); err != nil {
		return models.Mobile{}, fmt.Errorf(
			"failed to log mobile installation update audit event [%w]", err,
		)
	}

	return entry.Mobile, nil
}

// ======================================================================================
// Desktop installations

/*
RecordDesktopInstallation record a new desktop installation for a clinician

	@param ctx context.Context - execution context
	@param clinicianID string - the owning clinician
	@param spec models.DesktopInstallationSpec - installation details
	@param actor string - identity of the caller
	@returns installation entry
*/
func (d *databaseImpl) RecordDesktopInstallation(
	_ context.Context, clinicianID string, spec models.DesktopInstallationSpec, actor string,
) (models.Desktop, error) {
	if err := d.validator.Struct(&spec); err != nil {
		return models.Desktop{}, fmt.Errorf(
			"new desktop installation for clinician %s is not valid [%w]", clinicianID, err,
		)
	}

	newEntry := DesktopDBEntry{
		Desktop: models.Desktop{
			Identifier: models.Identifier{
				ID:        uuid.NewString(),
				CreatedBy: actor,
				UpdatedBy: actor,
			},
			ClinicianID:      clinicianID,
			UniqueDeviceCode: spec.UniqueDeviceCode,
			AppProduct:       spec.AppProduct,
			AppVersion:       spec.AppVersion,
			DesktopOS:        spec.DesktopOS,
			DesktopOSVersion: spec.DesktopOSVersion,
			IPAddress:        spec.IPAddress,
		},
	}
	newEntry.SetDateFirstUsed(spec.DateFirstUsed)

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.Desktop{}, fmt.Errorf(
			"new desktop installation for clinician %s is not valid [%w]", clinicianID, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.Desktop{}, fmt.Errorf(
			"new desktop installation for clinician %s failed insert [%w]", clinicianID, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.defineNewTelemetryEvent(
		models.TelemetryEventTypeDesktopInstallationCreated,
		models.TelemetryEventInstallationRelated{InstallationID: newEntry.ID, OwnerID: clinicianID},
	); err != nil {
		return models.Desktop{}, fmt.Errorf(
			"failed to log new desktop installation audit event [%w]", err,
		)
	}

	return newEntry.Desktop, nil
}

/*
GetDesktopInstallation fetch a desktop installation scoped by owner

	@param ctx context.Context - execution context
	@param clinicianID string - the owning clinician
	@param installationID string - installation entry ID
	@returns installation entry
*/
func (d *databaseImpl) GetDesktopInstallation(
	_ context.Context, clinicianID string, installationID string,
) (models.Desktop, error) {
	entry, err := getInstallationEntry[DesktopDBEntry](d, desktopKind, clinicianID, installationID)
	if err != nil {
		return models.Desktop{}, err
	}
	return entry.Desktop, nil
}

/*
LatestDesktopInstallation resolve the clinician's latest installation

	@param ctx context.Context - execution context
	@param clinicianID string - the owning clinician
	@returns installation entry, or nil when the clinician has none
*/
func (d *databaseImpl) LatestDesktopInstallation(
	_ context.Context, clinicianID string,
) (*models.Desktop, error) {
	entry, err := latestInstallationEntry[DesktopDBEntry](d, desktopKind, clinicianID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	return &entry.Desktop, nil
}

/*
UpdateDesktopInstallation apply a partial update to a desktop installation

	@param ctx context.Context - execution context
	@param clinicianID string - the owning clinician
	@param installationID string - installation entry ID
	@param patch models.DesktopPatch - fields to replace
	@param actor string - identity of the caller
	@returns updated installation entry
*/
func (d *databaseImpl) UpdateDesktopInstallation(
	_ context.Context,
	clinicianID string,
	installationID string,
	patch models.DesktopPatch,
	actor string,
) (models.Desktop, error) {
	entry, err := getInstallationEntry[DesktopDBEntry](d, desktopKind, clinicianID, installationID)
	if err != nil {
		return models.Desktop{}, err
	}

	entry.ApplyPatch(patch)
	entry.UpdatedBy = actor

	if err := d.validator.Struct(&entry); err != nil {
		return models.Desktop{}, fmt.Errorf(
			"updated desktop installation %s is not valid [%w]", installationID, err,
		)
	}

	if tmp := d.db.Save(&entry); tmp.Error != nil {
		return models.Desktop{}, fmt.Errorf(
			"failed to update desktop installation %s [%w]", installationID, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.defineNewTelemetryEvent(
		models.TelemetryEventTypeDesktopInstallationUpdated,
		models.TelemetryEventInstallationRelated{InstallationID: entry.ID, OwnerID: clinicianID},
	); err != nil {
		return models.Desktop{}, fmt.Errorf(
			"failed to log desktop installation update audit event [%w]", err,
		)
	}

	return entry.Desktop, nil
}
