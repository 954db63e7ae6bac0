package models

import "time"

// BloodGlucoseMeter a pairing between a physical blood-glucose meter and a
// patient's mobile installation.
//
// There is deliberately no uniqueness constraint on (patient_id,
// serial_number); a patient may re-verify the same meter and each verification
// is its own pairing row.
type BloodGlucoseMeter struct {
	Identifier

	// PatientID the patient owning this pairing
	PatientID string `json:"patient_id" gorm:"column:patient_id;size:36;not null;index" validate:"required"`

	// MobileID the mobile installation that paired the meter. Informational; not
	// enforced as a foreign key.
	MobileID string `json:"mobile_id" gorm:"column:mobile_id;size:36;not null" validate:"required"`
	// SerialNumber serial number of the physical meter
	SerialNumber string `json:"serial_number" gorm:"column:serial_number;not null" validate:"required"`

	// DateVerified when the pairing was verified
	DateVerified *time.Time `json:"date_verified" gorm:"column:date_verified"`
	// IsBGValueCorrect whether the reading shown on the meter matched the app
	IsBGValueCorrect *bool `json:"is_bg_value_correct" gorm:"column:is_bg_value_correct"`
	// AppProduct product the pairing was made from
	AppProduct string `json:"app_product" gorm:"column:app_product"`
	// AppVersion application version string
	AppVersion string `json:"app_version" gorm:"column:app_version"`
	// BloodGlucoseValue reading used during verification
	BloodGlucoseValue *float64 `json:"blood_glucose_value" gorm:"column:blood_glucose_value"`
}

// BloodGlucoseMeterSpec fields accepted when pairing a new meter
type BloodGlucoseMeterSpec struct {
	// MobileID the mobile installation that paired the meter
	MobileID string `json:"mobile_id" validate:"required"`
	// SerialNumber serial number of the physical meter
	SerialNumber string `json:"serial_number" validate:"required"`
	// DateVerified when the pairing was verified
	DateVerified *time.Time `json:"date_verified,omitempty"`
	// IsBGValueCorrect whether the reading shown on the meter matched the app
	IsBGValueCorrect *bool `json:"is_bg_value_correct,omitempty"`
	// AppProduct product the pairing was made from
	AppProduct string `json:"app_product,omitempty"`
	// AppVersion application version string
	AppVersion string `json:"app_version,omitempty"`
	// BloodGlucoseValue reading used during verification
	BloodGlucoseValue *float64 `json:"blood_glucose_value,omitempty"`
}

// BloodGlucoseMeterPatch partial update of a meter pairing. Only set fields
// are applied; each is a whole-value replacement. The product field is not
// part of the updatable set.
type BloodGlucoseMeterPatch struct {
	// MobileID replace the pairing installation
	MobileID *string `json:"mobile_id,omitempty"`
	// SerialNumber replace the meter serial number
	SerialNumber *string `json:"serial_number,omitempty"`
	// DateVerified replace the verification instant
	DateVerified *time.Time `json:"date_verified,omitempty"`
	// IsBGValueCorrect replace the verification outcome
	IsBGValueCorrect *bool `json:"is_bg_value_correct,omitempty"`
	// AppVersion replace the version string
	AppVersion *string `json:"app_version,omitempty"`
	// BloodGlucoseValue replace the verification reading
	BloodGlucoseValue *float64 `json:"blood_glucose_value,omitempty"`
}

// ApplyPatch apply the set fields onto the pairing
func (m *BloodGlucoseMeter) ApplyPatch(patch BloodGlucoseMeterPatch) {
	if patch.MobileID != nil {
		m.MobileID = *patch.MobileID
	}
	if patch.SerialNumber != nil {
		m.SerialNumber = *patch.SerialNumber
	}
	if patch.DateVerified != nil {
		m.DateVerified = patch.DateVerified
	}
	if patch.IsBGValueCorrect != nil {
		m.IsBGValueCorrect = patch.IsBGValueCorrect
	}
	if patch.AppVersion != nil {
		m.AppVersion = *patch.AppVersion
	}
	if patch.BloodGlucoseValue != nil {
		m.BloodGlucoseValue = patch.BloodGlucoseValue
	}
}
