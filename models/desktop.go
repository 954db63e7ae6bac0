package models

import (
	"encoding/json"
	"time"
)

// Desktop one installation of the desktop application by a clinician
type Desktop struct {
	Identifier

	// ClinicianID the clinician owning this installation
	ClinicianID string `json:"clinician_id" gorm:"column:clinician_id;size:36;not null;index" validate:"required"`

	// UniqueDeviceCode device identity code reported by the app
	UniqueDeviceCode string `json:"unique_device_code" gorm:"column:unique_device_code;not null" validate:"required"`

	// DateFirstUsedLocal naive wall-clock half of the split first-use instant
	DateFirstUsedLocal time.Time `json:"-" gorm:"column:date_first_used;not null"`
	// DateFirstUsedOffset UTC-offset-in-minutes half of the split first-use instant
	DateFirstUsedOffset int `json:"-" gorm:"column:date_first_used_time_zone;not null" validate:"utc_offset_minutes"`

	// AppProduct product the installation belongs to
	AppProduct string `json:"app_product" gorm:"column:app_product;not null" validate:"required"`
	// AppVersion application version string as reported
	AppVersion string `json:"app_version" gorm:"column:app_version;not null" validate:"required"`
	// DesktopOS desktop operating system
	DesktopOS string `json:"desktop_os" gorm:"column:desktop_os;not null" validate:"required"`
	// DesktopOSVersion desktop operating system version
	DesktopOSVersion string `json:"desktop_os_version" gorm:"column:desktop_os_version;not null" validate:"required"`
	// IPAddress address the installation reported from
	IPAddress string `json:"ip_address" gorm:"column:ip_address;not null" validate:"required"`
}

// DateFirstUsed recombine the split first-use instant
func (d Desktop) DateFirstUsed() time.Time {
	return JoinTimestamp(d.DateFirstUsedLocal, d.DateFirstUsedOffset)
}

// SetDateFirstUsed split-encode the first-use instant
func (d *Desktop) SetDateFirstUsed(t time.Time) {
	d.DateFirstUsedLocal, d.DateFirstUsedOffset = SplitTimestamp(t)
}

// MarshalJSON emit the recombined instant instead of the storage pair
func (d Desktop) MarshalJSON() ([]byte, error) {
	type plain Desktop
	return json.Marshal(struct {
		plain
		DateFirstUsed string `json:"date_first_used"`
	}{
		plain:         plain(d),
		DateFirstUsed: d.DateFirstUsed().Format(ISO8601Millis),
	})
}

// DesktopInstallationSpec fields required to register a new desktop installation
type DesktopInstallationSpec struct {
	// UniqueDeviceCode device identity code
	UniqueDeviceCode string `json:"unique_device_code" validate:"required"`
	// DateFirstUsed when the app was first used on the device
	DateFirstUsed time.Time `json:"date_first_used" validate:"required"`
	// AppProduct product the installation belongs to
	AppProduct string `json:"app_product" validate:"required"`
	// AppVersion application version string
	AppVersion string `json:"app_version" validate:"required"`
	// DesktopOS desktop operating system
	DesktopOS string `json:"desktop_os" validate:"required"`
	// DesktopOSVersion desktop operating system version
	DesktopOSVersion string `json:"desktop_os_version" validate:"required"`
	// IPAddress address the installation reported from
	IPAddress string `json:"ip_address" validate:"required"`
}

// DesktopPatch partial update of a desktop installation. Only set fields are
// applied; each is a whole-value replacement. The device code is not part of
// the updatable set.
type DesktopPatch struct {
	// DateFirstUsed replace the first-use instant
	DateFirstUsed *time.Time `json:"date_first_used,omitempty"`
	// AppProduct replace the product
	AppProduct *string `json:"app_product,omitempty"`
	// AppVersion replace the version string
	AppVersion *string `json:"app_version,omitempty"`
	// DesktopOS replace the desktop OS
	DesktopOS *string `json:"desktop_os,omitempty"`
	// DesktopOSVersion replace the desktop OS version
	DesktopOSVersion *string `json:"desktop_os_version,omitempty"`
	// IPAddress replace the reported address
	IPAddress *string `json:"ip_address,omitempty"`
}

// ApplyPatch apply the set fields onto the installation
func (d *Desktop) ApplyPatch(patch DesktopPatch) {
	if patch.DateFirstUsed != nil {
		d.SetDateFirstUsed(*patch.DateFirstUsed)
	}
	if patch.AppProduct != nil {
		d.AppProduct = *patch.AppProduct
	}
	if patch.AppVersion != nil {
		d.AppVersion = *patch.AppVersion
	}
	if patch.DesktopOS != nil {
		d.DesktopOS = *patch.DesktopOS
	}
	if patch.DesktopOSVersion != nil {
		d.DesktopOSVersion = *patch.DesktopOSVersion
	}
	if patch.IPAddress != nil {
		d.IPAddress = *patch.IPAddress
	}
}
