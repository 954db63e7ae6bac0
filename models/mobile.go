// Package models - telemetry registry entities
package models

import (
	"encoding/json"
	"time"
)

// Mobile one installation of the mobile application by a patient
type Mobile struct {
	Identifier

	// PatientID the patient owning this installation
	PatientID string `json:"patient_id" gorm:"column:patient_id;size:36;not null;index" validate:"required"`

	// UniqueDeviceCode device identity code reported by the app. Not unique across
	// the table; reinstalls on the same device share a code.
	UniqueDeviceCode string `json:"unique_device_code" gorm:"column:unique_device_code;not null" validate:"required"`

	// DateFirstLaunchedLocal naive wall-clock half of the split first-launch instant
	DateFirstLaunchedLocal time.Time `json:"-" gorm:"column:date_first_launched;not null"`
	// DateFirstLaunchedOffset UTC-offset-in-minutes half of the split first-launch instant
	DateFirstLaunchedOffset int `json:"-" gorm:"column:date_first_launched_time_zone;not null" validate:"utc_offset_minutes"`

	// AppProduct product the installation belongs to
	AppProduct string `json:"app_product" gorm:"column:app_product;not null" validate:"required"`
	// AppVersion application version string as reported
	AppVersion string `json:"app_version" gorm:"column:app_version;not null" validate:"required"`
	// PhoneOS phone operating system
	PhoneOS string `json:"phone_os" gorm:"column:phone_os;not null" validate:"required"`
	// PhoneOSVersion phone operating system version
	PhoneOSVersion string `json:"phone_os_version" gorm:"column:phone_os_version;not null" validate:"required"`
	// Manufacturer device manufacturer
	Manufacturer string `json:"manufacturer" gorm:"column:manufacturer;not null" validate:"required"`
	// Model device model
	Model string `json:"model" gorm:"column:model;not null" validate:"required"`
	// DisplayName device display name
	DisplayName string `json:"display_name" gorm:"column:display_name;not null" validate:"required"`
}

// DateFirstLaunched recombine the split first-launch instant
func (m Mobile) DateFirstLaunched() time.Time {
	return JoinTimestamp(m.DateFirstLaunchedLocal, m.DateFirstLaunchedOffset)
}

// SetDateFirstLaunched split-encode the first-launch instant
func (m *Mobile) SetDateFirstLaunched(t time.Time) {
	m.DateFirstLaunchedLocal, m.DateFirstLaunchedOffset = SplitTimestamp(t)
}

// MarshalJSON emit the recombined instant instead of the storage pair
func (m Mobile) MarshalJSON() ([]byte, error) {
	type plain Mobile
	return json.Marshal(struct {
		plain
		DateFirstLaunched string `json:"date_first_launched"`
	}{
		plain:             plain(m),
		DateFirstLaunched: m.DateFirstLaunched().Format(ISO8601Millis),
	})
}

// MobileInstallationSpec fields required to register a new mobile installation
type MobileInstallationSpec struct {
	// UniqueDeviceCode device identity code
	UniqueDeviceCode string `json:"unique_device_code" validate:"required"`
	// DateFirstLaunched when the app first launched on the device
	DateFirstLaunched time.Time `json:"date_first_launched" validate:"required"`
	// AppProduct product the installation belongs to
	AppProduct string `json:"app_product" validate:"required"`
	// AppVersion application version string
	AppVersion string `json:"app_version" validate:"required"`
	// PhoneOS phone operating system
	PhoneOS string `json:"phone_os" validate:"required"`
	// PhoneOSVersion phone operating system version
	PhoneOSVersion string `json:"phone_os_version" validate:"required"`
	// Manufacturer device manufacturer
	Manufacturer string `json:"manufacturer" validate:"required"`
	// Model device model
	Model string `json:"model" validate:"required"`
	// DisplayName device display name
	DisplayName string `json:"display_name" validate:"required"`
}

// MobilePatch partial update of a mobile installation. Only set fields are
// applied; each is a whole-value replacement. The device code is not part of
// the updatable set.
type MobilePatch struct {
	// DateFirstLaunched replace the first-launch instant
	DateFirstLaunched *time.Time `json:"date_first_launched,omitempty"`
	// AppProduct replace the product
	AppProduct *string `json:"app_product,omitempty"`
	// AppVersion replace the version string
	AppVersion *string `json:"app_version,omitempty"`
	// PhoneOS replace the phone OS
	PhoneOS *string `json:"phone_os,omitempty"`
	// PhoneOSVersion replace the phone OS version
	PhoneOSVersion *string `json:"phone_os_version,omitempty"`
	// Manufacturer replace the manufacturer
	Manufacturer *string `json:"manufacturer,omitempty"`
	// Model replace the model
	Model *string `json:"model,omitempty"`
	// DisplayName replace the display name
	DisplayName *string `json:"display_name,omitempty"`
}

// ApplyPatch apply the set fields onto the installation
func (m *Mobile) ApplyPatch(patch MobilePatch) {
	if patch.DateFirstLaunched != nil {
		m.SetDateFirstLaunched(*patch.DateFirstLaunched)
	}
	if patch.AppProduct != nil {
		m.AppProduct = *patch.AppProduct
	}
	if patch.AppVersion != nil {
		m.AppVersion = *patch.AppVersion
	}
	if patch.PhoneOS != nil {
		m.PhoneOS = *patch.PhoneOS
	}
	if patch.PhoneOSVersion != nil {
		m.PhoneOSVersion = *patch.PhoneOSVersion
	}
	if patch.Manufacturer != nil {
		m.Manufacturer = *patch.Manufacturer
	}
	if patch.Model != nil {
		m.Model = *patch.Model
	}
	if patch.DisplayName != nil {
		m.DisplayName = *patch.DisplayName
	}
}
