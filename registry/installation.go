// Package registry - telemetry registry controllers
package registry

import (
	"context"
	"fmt"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/polarishealth/telemetry/db"
	"github.com/polarishealth/telemetry/models"
)

// InstallationRegistry registry of application installations
type InstallationRegistry interface {
	/*
		RecordMobileInstallation record a new mobile installation for a patient

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param spec models.MobileInstallationSpec - installation details
			@param actor string - identity of the caller
			@param activeDBClient Database - existing database transaction
			@returns installation entry
	*/
	RecordMobileInstallation(
		ctx context.Context,
		patientID string,
		spec models.MobileInstallationSpec,
		actor string,
		activeDBClient db.Database,
	) (models.Mobile, error)

	/*
		GetMobileInstallation fetch a patient's mobile installation

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param installationID string - installation entry ID
			@param activeDBClient Database - existing database transaction
			@returns installation entry
	*/
	GetMobileInstallation(
		ctx context.Context, patientID string, installationID string, activeDBClient db.Database,
	) (models.Mobile, error)

	/*
		LatestMobileInstallation resolve the patient's latest mobile installation

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param activeDBClient Database - existing database transaction
			@returns installation entry, or nil when the patient has none
	*/
	LatestMobileInstallation(
		ctx context.Context, patientID string, activeDBClient db.Database,
	) (*models.Mobile, error)

	/*
		UpdateMobileInstallation apply a partial update to a mobile installation

			@param ctx context.Context - execution context
			@param patientID string - the owning patient
			@param installationID string - installation entry ID
			@param patch models.MobilePatch - fields to replace
			@param actor string - identity of the caller
			@param activeDBClient Database - existing database transaction
			@returns updated installation entry
	*/
	UpdateMobileInstallation(
		ctx context.Context,
		patientID string,
		installationID string,
		patch models.MobilePatch,
		actor string,
		activeDBClient db.Database,
	) (models.Mobile, error)

	/*
		RecordDesktopInstallation record a new desktop installation for a clinician

			@param ctx context.Context - execution context
			@param clinicianID string - the owning clinician
			@param spec models.DesktopInstallationSpec - installation details
			@param actor string - identity of the caller
			@param activeDBClient Database - existing database transaction
			@returns installation entry
	*/
	RecordDesktopInstallation(
		ctx context.Context,
		clinicianID string,
		spec models.DesktopInstallationSpec,
		actor string,
		activeDBClient db.Database,
	) (models.Desktop, error)

	/*
		GetDesktopInstallation fetch a clinician's desktop installation

			@param ctx context.Context - execution context
			@param clinicianID string - the owning clinician
			@param installationID string - installation entry ID
			@param activeDBClient Database - existing database transaction
			@returns installation entry
	*/
	GetDesktopInstallation(
		ctx context.Context, clinicianID string, installationID string, activeDBClient db.Database,
	) (models.Desktop, error)

	/*
		LatestDesktopInstallation resolve the clinician's latest desktop installation

			@param ctx context.Context - execution context
			@param clinicianID string - the owning clinician
			@param activeDBClient Database - existing database transaction
			@returns installation entry, or nil when the clinician has none
	*/
	LatestDesktopInstallation(
		ctx context.Context, clinicianID string, activeDBClient db.Database,
	) (*models.Desktop, error)

	/*
		UpdateDesktopInstallation apply a partial update to a desktop installation

			@param ctx context.Context - execution context
			@param clinicianID string - the owning clinician
			@param installationID string - installation entry ID
			@param patch models.DesktopPatch - fields to replace
			@param actor string - identity of the caller
			@param activeDBClient Database - existing database transaction
			@returns updated installation entry
	*/
	UpdateDesktopInstallation(
		ctx context.Context,
		clinicianID string,
		installationID string,
		patch models.DesktopPatch,
		actor string,
		activeDBClient db.Database,
	) (models.Desktop, error)

	/*
		ClearInstallations clear the installation tables

		Meant for test environments only.

			@param ctx context.Context - execution context
			@param activeDBClient Database - existing database transaction
	*/
	ClearInstallations(ctx context.Context, activeDBClient db.Database) error
}

// installationRegistry implements InstallationRegistry
type installationRegistry struct {
	goutils.Component

	persistence db.Client
}

/*
NewInstallationRegistry define new installation registry

	@param persistence db.Client - persistence layer client
	@returns registry instance
*/
func NewInstallationRegistry(persistence db.Client) (InstallationRegistry, error) {
	logTags := log.Fields{
		"package": "telemetry", "module": "registry", "component": "installation-registry",
	}

	return &installationRegistry{
		Component: goutils.Component{
			LogTags: logTags,
			LogTagModifiers: []goutils.LogMetadataModifier{
				goutils.ModifyLogMetadataByRestRequestParam,
			},
		},
		persistence: persistence,
	}, nil
}

func (r *installationRegistry) RecordMobileInstallation(
	ctx context.Context,
	patientID string,
	spec models.MobileInstallationSpec,
	actor string,
	activeDBClient db.Database,
) (models.Mobile, error) {
	var entry models.Mobile

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.RecordMobileInstallation(dbCtx, patientID, spec, actor)
			return err
		},
	); dbErr != nil {
		return models.Mobile{}, fmt.Errorf(
			"failed to record mobile installation for patient %s [%w]", patientID, dbErr,
		)
	}

	return entry, nil
}

func (r *installationRegistry) GetMobileInstallation(
	ctx context.Context, patientID string, installationID string, activeDBClient db.Database,
) (models.Mobile, error) {
	var entry models.Mobile

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.GetMobileInstallation(dbCtx, patientID, installationID)
			return err
		},
	); dbErr != nil {
		return models.Mobile{}, fmt.Errorf(
			"failed to fetch mobile installation %s [%w]", installationID, dbErr,
		)
	}

	return entry, nil
}

func (r *installationRegistry) LatestMobileInstallation(
	ctx context.Context, patientID string, activeDBClient db.Database,
) (*models.Mobile, error) {
	var entry *models.Mobile

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.LatestMobileInstallation(dbCtx, patientID)
			return err
		},
	); dbErr != nil {
		return nil, fmt.Errorf(
			"failed to resolve latest mobile installation of patient %s [%w]", patientID, dbErr,
		)
	}

	return entry, nil
}

func (r *installationRegistry) UpdateMobileInstallation(
	ctx context.Context,
	patientID string,
	installationID string,
	patch models.MobilePatch,
	actor string,
	activeDBClient db.Database,
) (models.Mobile, error) {
	var entry models.Mobile

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.UpdateMobileInstallation(dbCtx, patientID, installationID, patch, actor)
			return err
		},
	); dbErr != nil {
		return models.Mobile{}, fmt.Errorf(
			"failed to update mobile installation %s [%w]", installationID, dbErr,
		)
	}

	return entry, nil
}

func (r *installationRegistry) RecordDesktopInstallation(
	ctx context.Context,
	clinicianID string,
	spec models.DesktopInstallationSpec,
	actor string,
	activeDBClient db.Database,
) (models.Desktop, error) {
	var entry models.Desktop

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.RecordDesktopInstallation(dbCtx, clinicianID, spec, actor)
			return err
		},
	); dbErr != nil {
		return models.Desktop{}, fmt.Errorf(
			"failed to record desktop installation for clinician %s [%w]", clinicianID, dbErr,
		)
	}

	return entry, nil
}

func (r *installationRegistry) GetDesktopInstallation(
	ctx context.Context, clinicianID string, installationID string, activeDBClient db.Database,
) (models.Desktop, error) {
	var entry models.Desktop

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.GetDesktopInstallation(dbCtx, clinicianID, installationID)
			return err
		},
	); dbErr != nil {
		return models.Desktop{}, fmt.Errorf(
			"failed to fetch desktop installation %s [%w]", installationID, dbErr,
		)
	}

	return entry, nil
}

func (r *installationRegistry) LatestDesktopInstallation(
	ctx context.Context, clinicianID string, activeDBClient db.Database,
) (*models.Desktop, error) {
	var entry *models.Desktop

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.LatestDesktopInstallation(dbCtx, clinicianID)
			return err
		},
	); dbErr != nil {
		return nil, fmt.Errorf(
			"failed to resolve latest desktop installation of clinician %s [%w]", clinicianID, dbErr,
		)
	}

	return entry, nil
}

func (r *installationRegistry) UpdateDesktopInstallation(
	ctx context.Context,
	clinicianID string,
	installationID string,
	patch models.DesktopPatch,
	actor string,
	activeDBClient db.Database,
) (models.Desktop, error) {
	var entry models.Desktop

	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			var err error
			entry, err = dbClient.UpdateDesktopInstallation(
				dbCtx, clinicianID, installationID, patch, actor,
			)
			return err
		},
	); dbErr != nil {
		return models.Desktop{}, fmt.Errorf(
			"failed to update desktop installation %s [%w]", installationID, dbErr,
		)
	}

	return entry, nil
}

func (r *installationRegistry) ClearInstallations(
	ctx context.Context, activeDBClient db.Database,
) error {
	if dbErr := db.ActiveSessionWrapper(
		ctx, activeDBClient, r.persistence, func(dbCtx context.Context, dbClient db.Database) error {
			return dbClient.ResetTelemetryTables(dbCtx)
		},
	); dbErr != nil {
		return fmt.Errorf("failed to clear installation tables [%w]", dbErr)
	}
	return nil
}
