package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	telemetry "github.com/polarishealth/telemetry"
)

// ServerParams parameters for defining the REST server
type ServerParams struct {
	// Registries the registry controllers
	Registries telemetry.Registries
	// JWTSecret HMAC secret verifying bearer tokens
	JWTSecret string
	// EnableDevRoutes expose the destructive non-production routes
	EnableDevRoutes bool
}

/*
BuildAPIRouter assemble the REST API router

	@param params ServerParams - server parameters
	@returns the router
*/
func BuildAPIRouter(params ServerParams) (*mux.Router, error) {
	installationHandler, err := NewInstallationAPIHandler(params.Registries.Installations)
	if err != nil {
		return nil, fmt.Errorf("failed to define installation REST handler [%w]", err)
	}

	meterHandler, err := NewMeterAPIHandler(params.Registries.Meters)
	if err != nil {
		return nil, fmt.Errorf("failed to define meter REST handler [%w]", err)
	}

	writeAsPatient := AllOf(RequireScope(ScopeTelemetryWrite), OwnerPathMatch("patient_id"))
	readAsPatient := AnyOf(
		RequireScope(ScopeTelemetryReadAll),
		AllOf(RequireScope(ScopeTelemetryRead), OwnerPathMatch("patient_id")),
	)
	writeAsClinician := AllOf(RequireScope(ScopeTelemetryWrite), OwnerPathMatch("clinician_id"))
	readAsClinician := AnyOf(
		RequireScope(ScopeTelemetryReadAll),
		AllOf(RequireScope(ScopeTelemetryRead), OwnerPathMatch("clinician_id")),
	)
	// Meter reads have no read-all bypass
	readMeterAsPatient := AllOf(RequireScope(ScopeTelemetryRead), OwnerPathMatch("patient_id"))

	router := mux.NewRouter()
	v1 := router.PathPrefix("/dhos/v1").Subrouter()

	// Mobile installations
	v1.HandleFunc(
		"/patient/{patient_id}/installation",
		protected(params.JWTSecret, writeAsPatient, installationHandler.RecordMobileInstallationHandler()),
	).Methods(http.MethodPost)
	v1.HandleFunc(
		"/patient/{patient_id}/installation/{installation_id}",
		protected(params.JWTSecret, readAsPatient, installationHandler.GetMobileInstallationHandler()),
	).Methods(http.MethodGet)
	v1.HandleFunc(
		"/patient/{patient_id}/installation/{installation_id}",
		protected(params.JWTSecret, writeAsPatient, installationHandler.UpdateMobileInstallationHandler()),
	).Methods(http.MethodPatch)
	v1.HandleFunc(
		"/patient/{patient_id}/latest_installation",
		protected(params.JWTSecret, readAsPatient, installationHandler.LatestMobileInstallationHandler()),
	).Methods(http.MethodGet)

	// Desktop installations
	v1.HandleFunc(
		"/clinician/{clinician_id}/installation",
		protected(params.JWTSecret, writeAsClinician, installationHandler.RecordDesktopInstallationHandler()),
	).Methods(http.MethodPost)
	v1.HandleFunc(
		"/clinician/{clinician_id}/installation/{installation_id}",
		protected(params.JWTSecret, readAsClinician, installationHandler.GetDesktopInstallationHandler()),
	).Methods(http.MethodGet)
	v1.HandleFunc(
		"/clinician/{clinician_id}/installation/{installation_id}",
		protected(params.JWTSecret, writeAsClinician, installationHandler.UpdateDesktopInstallationHandler()),
	).Methods(http.MethodPatch)
	v1.HandleFunc(
		"/clinician/{clinician_id}/latest_installation",
		protected(params.JWTSecret, readAsClinician, installationHandler.LatestDesktopInstallationHandler()),
	).Methods(http.MethodGet)

	// Blood glucose meter pairings
	v1.HandleFunc(
		"/patient/{patient_id}/blood_glucose_meter",
		protected(params.JWTSecret, writeAsPatient, meterHandler.RecordMeterPairingHandler()),
	).Methods(http.MethodPost)
	v1.HandleFunc(
		"/patient/{patient_id}/blood_glucose_meter/{meter_id}",
		protected(params.JWTSecret, readMeterAsPatient, meterHandler.GetMeterPairingHandler()),
	).Methods(http.MethodGet)
	v1.HandleFunc(
		"/patient/{patient_id}/blood_glucose_meter/{meter_id}",
		protected(params.JWTSecret, writeAsPatient, meterHandler.UpdateMeterPairingHandler()),
	).Methods(http.MethodPatch)

	// Destructive helpers stay off production deployments
	if params.EnableDevRoutes {
		router.HandleFunc("/drop_data", installationHandler.DropDataHandler()).
			Methods(http.MethodPost)
	}

	return router, nil
}
