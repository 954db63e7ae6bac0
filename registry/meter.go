package registry

import (
	"context"
	"fmt"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/polarishealth/telemetry/db"
	"github.com/polarishealth/telemetry/models"
)

// MeterRegistry registry of blood-glucose-meter pairings
type MeterRegistry interface {
	/*
		RecordMeterPairing record a new blood-glucose-meter pairing for a patient

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param spec models.BloodGlucoseMeterSpec - pairing details
			@param actor string - identity of the caller
			@param activeDBClient Database - existing database transaction
			@returns pairing entry
	*/
	RecordMeterPairing(
		ctx context.Context,
		patientID string,
		spec models.BloodGlucoseMeterSpec,
		actor string,
		activeDBClient db.Database,
	) (models.BloodGlucoseMeter, error)

	/*
		GetMeterPairing fetch a patient's meter pairing

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param meterID string - pairing entry ID
			@param activeDBClient Database - existing database transaction
			@returns pairing entry
	*/
	GetMeterPairing(
		ctx context.Context, patientID string, meterID string, activeDBClient db.Database,
	) (models.BloodGlucoseMeter, error)

	/*
		UpdateMeterPairing apply a partial update to a meter pairing

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param meterID string - pairing entry ID
			@param patch models.BloodGlucoseMeterPatch - fields to replace
			@param actor string - identity of the caller
			@param activeDBClient Database - existing database transaction
			@returns updated pairing entry
	*/
	UpdateMeterPairing(
		ctx context.Context,
		patientID string,
		meterID string,
		patch models.BloodGlucoseMeterPatch,
		actor string,
		activeDBClient db.Database,
	) (models.BloodGlucoseMeter, error)
}

// meterRegistry implements MeterRegistry
type meterRegistry struct {
	goutils.Component

	persistence db.Client
}

/*
NewMeterRegistry define new meter pairing registry

	@param persistence db.Client - persistence layer client
	@returns registry instance
*/
func NewMeterRegistry(persistence db.Client) (MeterRegistry, error) {
	logTags := log.Fields{
		"package": "telemetry", "module": "registry", "component": "meter-registry",
	}

	return &meterRegistry{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		persistence: persistence,
	}, nil
}

func (r *meterRegistry) RecordMeterPairing(
	ctx context.Context,
	patientID string,
	spec models.BloodGlucoseMeterSpec,
	actor string,
	activeDBClient db.Database,
) (models.BloodGlucoseMeter, error) {
	var entry models.BloodGlucoseMeter

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.RecordMeterPairing(dbCtx, patientID, spec, actor)
			return err
		},
	); dbErr != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"failed to record meter pairing for patient %s [%w]", patientID, dbErr,
		)
	}

	return entry, nil
}

func (r *meterRegistry) GetMeterPairing(
	ctx context.Context, patientID string, meterID string, activeDBClient db.Database,
) (models.BloodGlucoseMeter, error) {
	var entry models.BloodGlucoseMeter

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.GetMeterPairing(dbCtx, patientID, meterID)
			return err
		},
	); dbErr != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"failed to fetch meter pairing %s [%w]", meterID, dbErr,
		)
	}

	return entry, nil
}

func (r *meterRegistry) UpdateMeterPairing(
	ctx context.Context,
	patientID string,
	meterID string,
	patch models.BloodGlucoseMeterPatch,
	actor string,
	activeDBClient db.Database,
) (models.BloodGlucoseMeter, error) {
	var entry models.BloodGlucoseMeter

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.UpdateMeterPairing(dbCtx, patientID, meterID, patch, actor)
			return err
		},
	); dbErr != nil {
		return models.BloodGlucoseMeter{}, fmt.Errorf(
			"failed to update meter pairing %s [%w]", meterID, dbErr,
		)
	}

	return entry, nil
}
