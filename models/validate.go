package models

import (
	"reflect"

	"github.com/go-playground/validator/v10"
)

// Bounds of real-world UTC offsets (UTC-12:00 through UTC+14:00)
const (
	minUTCOffsetMinutes = -720
	maxUTCOffsetMinutes = 840
)

/*
RegisterWithValidator register with the validator this custom validation support

	@param v *validator.Validate - the validator to register against
	@return whether successful
*/
func RegisterWithValidator(v *validator.Validate) error {
	if err := v.RegisterValidation(
		"telemetry_event_type", validateTelemetryEventType,
	); err != nil {
		return err
	}

	if err := v.RegisterValidation(
		"utc_offset_minutes", validateUTCOffsetMinutes,
	); err != nil {
		return err
	}

	return nil
}

func validateTelemetryEventType(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	switch TelemetryEventTypeENUMType(fl.Field().String()) {
	case TelemetryEventTypeMobileInstallationCreated:
		fallthrough
	case TelemetryEventTypeMobileInstallationUpdated:
		fallthrough
	case TelemetryEventTypeDesktopInstallationCreated:
		fallthrough
	case TelemetryEventTypeDesktopInstallationUpdated:
		fallthrough
	case TelemetryEventTypeMeterPaired:
		fallthrough
	case TelemetryEventTypeMeterUpdated:
		return true
	}
	return false
}

func validateUTCOffsetMinutes(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Int {
		return false
	}
	offset := fl.Field().Int()
	return offset >= minUTCOffsetMinutes && offset <= maxUTCOffsetMinutes
}
