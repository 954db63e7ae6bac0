package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/polarishealth/telemetry/models"
	"gorm.io/gorm"
)

/*
RecordMeterPairing record a new blood-glucose-meter pairing for a patient

	@param ctx context.Context - execution context
	@param patientID string - the owning patient
	@param spec models.BloodGlucoseMeterSpec - pairing details
	@param actor string - identity of the caller
	@returns pairing entry
*/
func (d *databaseImpl) RecordMeterPairing(
	_ context.Context, patientID string, spec models.BloodGlucoseMeterSpec, actor string,
) (models.BloodGlucoseMeter, error) {
	if err := d.validator.Struct(&spec); err != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"new meter pairing for patient %s is not valid [%w]", patientID, err,
		)
	}

	newEntry := BloodGlucoseMeterDBEntry{
		BloodGlucoseMeter: models.BloodGlucoseMeter{
			Identifier: models.Identifier{
				ID:        uuid.NewString(),
				CreatedBy: actor,
				UpdatedBy: actor,
			},
			PatientID:         patientID,
			MobileID:          spec.MobileID,
			SerialNumber:      spec.SerialNumber,
			DateVerified:      spec.DateVerified,
			IsBGValueCorrect:  spec.IsBGValueCorrect,
			AppProduct:        spec.AppProduct,
			AppVersion:        spec.AppVersion,
			BloodGlucoseValue: spec.BloodGlucoseValue,
		},
	}

	if err := d.validator.Struct(&newEntry); err != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"new meter pairing for patient %s is not valid [%w]", patientID, err,
		)
	}

	if tmp := d.db.Create(&newEntry); tmp.Error != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"new meter pairing for patient %s failed insert [%w]", patientID, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.defineNewTelemetryEvent(
		models.TelemetryEventTypeMeterPaired,
		models.TelemetryEventMeterRelated{
			MeterID: newEntry.ID, PatientID: patientID, SerialNumber: newEntry.SerialNumber,
		},
	); err != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"failed to log new meter pairing audit event [%w]", err,
		)
	}

	return newEntry.BloodGlucoseMeter, nil
}

/*
GetMeterPairing fetch a meter pairing scoped by owner

	@param ctx context.Context - execution context
	@param patientID string - the owning patient
	@param meterID string - pairing entry ID
	@returns pairing entry
*/
func (d *databaseImpl) GetMeterPairing(
	_ context.Context, patientID string, meterID string,
) (models.BloodGlucoseMeter, error) {
	entry, err := d.getMeterEntry(patientID, meterID)
	if err != nil {
		return models.BloodGlucoseMeter{}, err
	}
	return entry.BloodGlucoseMeter, nil
}

/*
UpdateMeterPairing apply a partial update to a meter pairing

	@param ctx context.Context - execution context
	@param patientID string - the owning patient
	@param meterID string - pairing entry ID
	@param patch models.BloodGlucoseMeterPatch - fields to replace
	@param actor string - identity of the caller
	@returns updated pairing entry
*/
func (d *databaseImpl) UpdateMeterPairing(
	_ context.Context,
	patientID string,
	meterID string,
	patch models.BloodGlucoseMeterPatch,
	actor string,
) (models.BloodGlucoseMeter, error) {
	entry, err := d.getMeterEntry(patientID, meterID)
	if err != nil {
		return models.BloodGlucoseMeter{}, err
	}

	entry.ApplyPatch(patch)
	entry.UpdatedBy = actor

	if err := d.validator.Struct(&entry); err != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"updated meter pairing %s is not valid [%w]", meterID, err,
		)
	}

	if tmp := d.db.Save(&entry); tmp.Error != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"failed to update meter pairing %s [%w]", meterID, tmp.Error,
		)
	}

	// Record this event
	if _, err := d.defineNewTelemetryEvent(
		models.TelemetryEventTypeMeterUpdated,
		models.TelemetryEventMeterRelated{
			MeterID: entry.ID, PatientID: patientID, SerialNumber: entry.SerialNumber,
		},
	); err != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"failed to log meter pairing update audit event [%w]", err,
		)
	}

	return entry.BloodGlucoseMeter, nil
}

// getMeterEntry patient-scoped fetch of one pairing row
func (d *databaseImpl) getMeterEntry(
	patientID string, meterID string,
) (BloodGlucoseMeterDBEntry, error) {
	var entry BloodGlucoseMeterDBEntry
	err := d.db.
		Where("patient_id = ?", patientID).
		Where("uuid = ?", meterID).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entry, fmt.Errorf(
				"meter pairing %s for patient %s: %w", meterID, patientID, ErrNotFound,
			)
		}
		return entry, fmt.Errorf("failed to fetch meter pairing %s [%w]", meterID, err)
	}
	return entry, nil
}
