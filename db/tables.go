package db

import "github.com/polarishealth/telemetry/models"

// --------------------------------------------------------------------------------------
// Telemetry audit events

// TelemetryEventAuditDBEntry telemetry audit event DB entry
type TelemetryEventAuditDBEntry struct {
	models.TelemetryEventAudit
}

// TableName hard code table name
func (TelemetryEventAuditDBEntry) TableName() string {
	return "telemetry_audit_events"
}

// --------------------------------------------------------------------------------------
// Mobile installations

// MobileDBEntry mobile installation DB entry
type MobileDBEntry struct {
	models.Mobile
}

// TableName hard code table name
func (MobileDBEntry) TableName() string {
	return "mobile"
}

// --------------------------------------------------------------------------------------
// Desktop installations

// DesktopDBEntry desktop installation DB entry
type DesktopDBEntry struct {
	models.Desktop
}

// TableName hard code table name
func (DesktopDBEntry) TableName() string {
	return "desktop"
}

// --------------------------------------------------------------------------------------
// Blood glucose meter pairings

// BloodGlucoseMeterDBEntry meter pairing DB entry
type BloodGlucoseMeterDBEntry struct {
	models.BloodGlucoseMeter
}

// TableName hard code table name
func (BloodGlucoseMeterDBEntry) TableName() string {
	return "blood_glucose_meter"
}
