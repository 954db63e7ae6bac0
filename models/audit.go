package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

// TelemetryEventTypeENUMType telemetry audit event type ENUM value type
type TelemetryEventTypeENUMType string

const (
	// TelemetryEventTypeMobileInstallationCreated new mobile installation recorded
	TelemetryEventTypeMobileInstallationCreated TelemetryEventTypeENUMType = "MOBILE_INSTALLATION_CREATED"

	// TelemetryEventTypeMobileInstallationUpdated mobile installation modified
	TelemetryEventTypeMobileInstallationUpdated TelemetryEventTypeENUMType = "MOBILE_INSTALLATION_UPDATED"

	// TelemetryEventTypeDesktopInstallationCreated new desktop installation recorded
	TelemetryEventTypeDesktopInstallationCreated TelemetryEventTypeENUMType = "DESKTOP_INSTALLATION_CREATED"

	// TelemetryEventTypeDesktopInstallationUpdated desktop installation modified
	TelemetryEventTypeDesktopInstallationUpdated TelemetryEventTypeENUMType = "DESKTOP_INSTALLATION_UPDATED"

	// TelemetryEventTypeMeterPaired new blood-glucose-meter pairing recorded
	TelemetryEventTypeMeterPaired TelemetryEventTypeENUMType = "METER_PAIRED"

	// TelemetryEventTypeMeterUpdated blood-glucose-meter pairing modified
	TelemetryEventTypeMeterUpdated TelemetryEventTypeENUMType = "METER_UPDATED"
)

// TelemetryEventAudit recording of registry mutations
type TelemetryEventAudit struct {
	// ID audit entry ID
	ID string `json:"id" gorm:"column:id;primaryKey;unique" validate:"required"`
	// EventType telemetry event type
	EventType TelemetryEventTypeENUMType `json:"type" gorm:"column:type;not null" validate:"required,telemetry_event_type"`
	// Metadata a metadata relating to the event
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"column:metadata;default:null"`
	// CreatedAt entry creation timestamp
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt entry update timestamp
	UpdatedAt time.Time `json:"updated_at"`
}

// ParseMetadata parse the metadata based on the event type
func (a TelemetryEventAudit) ParseMetadata(validator *validator.Validate) (interface{}, error) {
	switch a.EventType {
	// Installation related telemetry audit events
	case TelemetryEventTypeMobileInstallationCreated:
		fallthrough
	case TelemetryEventTypeMobileInstallationUpdated:
		fallthrough
	case TelemetryEventTypeDesktopInstallationCreated:
		fallthrough
	case TelemetryEventTypeDesktopInstallationUpdated:
		var parsed TelemetryEventInstallationRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("telemetry event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)

	// Meter pairing related telemetry audit events
	case TelemetryEventTypeMeterPaired:
		fallthrough
	case TelemetryEventTypeMeterUpdated:
		var parsed TelemetryEventMeterRelated
		if err := json.Unmarshal(a.Metadata, &parsed); err != nil {
			return nil, fmt.Errorf("telemetry event '%s' metadata parse failed [%w]", a.EventType, err)
		}
		return parsed, validator.Struct(&parsed)
	}
	return nil, nil
}

// TelemetryEventInstallationRelated telemetry event metadata related to installations
type TelemetryEventInstallationRelated struct {
	// InstallationID the installation record ID
	InstallationID string `json:"installation_id" validate:"required,uuid_rfc4122"`
	// OwnerID the patient or clinician owning the installation
	OwnerID string `json:"owner_id" validate:"required"`
}

// TelemetryEventMeterRelated telemetry event metadata related to meter pairings
type TelemetryEventMeterRelated struct {
	// MeterID the pairing record ID
	MeterID string `json:"meter_id" validate:"required,uuid_rfc4122"`
	// PatientID the patient owning the pairing
	PatientID string `json:"patient_id" validate:"required"`
	// SerialNumber serial number of the physical meter
	SerialNumber string `json:"serial_number" validate:"required"`
}
