package api

import (
	"fmt"
	"time"

	"github.com/polarishealth/telemetry/models"
)

// parseClientTimestamp parse an ISO-8601 instant as submitted by a client,
// keeping its UTC offset
func parseClientTimestamp(raw string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp '%s' is not ISO-8601 [%w]", raw, err)
	}
	return parsed, nil
}

// mobileInstallationRequest request body when registering a mobile installation
type mobileInstallationRequest struct {
	UniqueDeviceCode  string `json:"unique_device_code" validate:"required"`
	DateFirstLaunched string `json:"date_first_launched" validate:"required"`
	AppProduct        string `json:"app_product" validate:"required"`
	AppVersion        string `json:"app_version" validate:"required"`
	PhoneOS           string `json:"phone_os" validate:"required"`
	PhoneOSVersion    string `json:"phone_os_version" validate:"required"`
	Manufacturer      string `json:"manufacturer" validate:"required"`
	Model             string `json:"model" validate:"required"`
	DisplayName       string `json:"display_name" validate:"required"`
}

func (req mobileInstallationRequest) toSpec() (models.MobileInstallationSpec, error) {
	firstLaunched, err := parseClientTimestamp(req.DateFirstLaunched)
	if err != nil {
		return models.MobileInstallationSpec{}, err
	}
	return models.MobileInstallationSpec{
		UniqueDeviceCode:  req.UniqueDeviceCode,
		DateFirstLaunched: firstLaunched,
		AppProduct:        req.AppProduct,
		AppVersion:        req.AppVersion,
		PhoneOS:           req.PhoneOS,
		PhoneOSVersion:    req.PhoneOSVersion,
		Manufacturer:      req.Manufacturer,
		Model:             req.Model,
		DisplayName:       req.DisplayName,
	}, nil
}

// mobileInstallationPatchRequest request body when updating a mobile installation
type mobileInstallationPatchRequest struct {
	DateFirstLaunched *string `json:"date_first_launched,omitempty"`
	AppProduct        *string `json:"app_product,omitempty"`
	AppVersion        *string `json:"app_version,omitempty"`
	PhoneOS           *string `json:"phone_os,omitempty"`
	PhoneOSVersion    *string `json:"phone_os_version,omitempty"`
	Manufacturer      *string `json:"manufacturer,omitempty"`
	Model             *string `json:"model,omitempty"`
	DisplayName       *string `json:"display_name,omitempty"`
}

func (req mobileInstallationPatchRequest) toPatch() (models.MobilePatch, error) {
	patch := models.MobilePatch{
		AppProduct:     req.AppProduct,
		AppVersion:     req.AppVersion,
		PhoneOS:        req.PhoneOS,
		PhoneOSVersion: req.PhoneOSVersion,
		Manufacturer:   req.Manufacturer,
		Model:          req.Model,
		DisplayName:    req.DisplayName,
	}
	if req.DateFirstLaunched != nil {
		firstLaunched, err := parseClientTimestamp(*req.DateFirstLaunched)
		if err != nil {
			return models.MobilePatch{}, err
		}
		patch.DateFirstLaunched = &firstLaunched
	}
	return patch, nil
}

// desktopInstallationRequest request body when registering a desktop installation
type desktopInstallationRequest struct {
	UniqueDeviceCode string `json:"unique_device_code" validate:"required"`
	DateFirstUsed    string `json:"date_first_used" validate:"required"`
	AppProduct       string `json:"app_product" validate:"required"`
	AppVersion       string `json:"app_version" validate:"required"`
	DesktopOS        string `json:"desktop_os" validate:"required"`
	DesktopOSVersion string `json:"desktop_os_version" validate:"required"`
	IPAddress        string `json:"ip_address" validate:"required"`
}

func (req desktopInstallationRequest) toSpec() (models.DesktopInstallationSpec, error) {
	firstUsed, err := parseClientTimestamp(req.DateFirstUsed)
	if err != nil {
		return models.DesktopInstallationSpec{}, err
	}
	return models.DesktopInstallationSpec{
		UniqueDeviceCode: req.UniqueDeviceCode,
		DateFirstUsed:    firstUsed,
		AppProduct:       req.AppProduct,
		AppVersion:       req.AppVersion,
		DesktopOS:        req.DesktopOS,
		DesktopOSVersion: req.DesktopOSVersion,
		IPAddress:        req.IPAddress,
	}, nil
}

// desktopInstallationPatchRequest request body when updating a desktop installation
type desktopInstallationPatchRequest struct {
	DateFirstUsed    *string `json:"date_first_used,omitempty"`
	AppProduct       *string `json:"app_product,omitempty"`
	AppVersion       *string `json:"app_version,omitempty"`
	DesktopOS        *string `json:"desktop_os,omitempty"`
	DesktopOSVersion *string `json:"desktop_os_version,omitempty"`
	IPAddress        *string `json:"ip_address,omitempty"`
}

func (req desktopInstallationPatchRequest) toPatch() (models.DesktopPatch, error) {
	patch := models.DesktopPatch{
		AppProduct:       req.AppProduct,
		AppVersion:       req.AppVersion,
		DesktopOS:        req.DesktopOS,
		DesktopOSVersion: req.DesktopOSVersion,
		IPAddress:        req.IPAddress,
	}
	if req.DateFirstUsed != nil {
		firstUsed, err := parseClientTimestamp(*req.DateFirstUsed)
		if err != nil {
			return models.DesktopPatch{}, err
		}
		patch.DateFirstUsed = &firstUsed
	}
	return patch, nil
}

// meterPairingRequest request body when pairing a meter
type meterPairingRequest struct {
	MobileID          string   `json:"mobile_id" validate:"required"`
	SerialNumber      string   `json:"serial_number" validate:"required"`
	DateVerified      *string  `json:"date_verified,omitempty"`
	IsBGValueCorrect  *bool    `json:"is_bg_value_correct,omitempty"`
	AppProduct        string   `json:"app_product,omitempty"`
	AppVersion        string   `json:"app_version,omitempty"`
	BloodGlucoseValue *float64 `json:"blood_glucose_value,omitempty"`
}

func (req meterPairingRequest) toSpec() (models.BloodGlucoseMeterSpec, error) {
	spec := models.BloodGlucoseMeterSpec{
		MobileID:          req.MobileID,
		SerialNumber:      req.SerialNumber,
		IsBGValueCorrect:  req.IsBGValueCorrect,
		AppProduct:        req.AppProduct,
		AppVersion:        req.AppVersion,
		BloodGlucoseValue: req.BloodGlucoseValue,
	}
	if req.DateVerified != nil {
		verified, err := parseClientTimestamp(*req.DateVerified)
		if err != nil {
			return models.BloodGlucoseMeterSpec{}, err
		}
		spec.DateVerified = &verified
	}
	return spec, nil
}

// meterPairingPatchRequest request body when updating a meter pairing
type meterPairingPatchRequest struct {
	MobileID          *string  `json:"mobile_id,omitempty"`
	SerialNumber      *string  `json:"serial_number,omitempty"`
	DateVerified      *string  `json:"date_verified,omitempty"`
	IsBGValueCorrect  *bool    `json:"is_bg_value_correct,omitempty"`
	AppVersion        *string  `json:"app_version,omitempty"`
	BloodGlucoseValue *float64 `json:"blood_glucose_value,omitempty"`
}

func (req meterPairingPatchRequest) toPatch() (models.BloodGlucoseMeterPatch, error) {
	patch := models.BloodGlucoseMeterPatch{
		MobileID:          req.MobileID,
		SerialNumber:      req.SerialNumber,
		IsBGValueCorrect:  req.IsBGValueCorrect,
		AppVersion:        req.AppVersion,
		BloodGlucoseValue: req.BloodGlucoseValue,
	}
	if req.DateVerified != nil {
		verified, err := parseClientTimestamp(*req.DateVerified)
		if err != nil {
			return models.BloodGlucoseMeterPatch{}, err
		}
		patch.DateVerified = &verified
	}
	return patch, nil
}
