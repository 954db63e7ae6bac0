package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/polarishealth/telemetry/registry"
)

// InstallationAPIHandler REST handler for application installations
type InstallationAPIHandler struct {
	apiHandler
	installations registry.InstallationRegistry
}

/*
NewInstallationAPIHandler define a new installation REST handler

	@param installations registry.InstallationRegistry - installation registry
	@returns new handler instance
*/
func NewInstallationAPIHandler(
	installations registry.InstallationRegistry,
) (InstallationAPIHandler, error) {
	base, err := newAPIHandler("installation-api")
	if err != nil {
		return InstallationAPIHandler{}, err
	}
	return InstallationAPIHandler{apiHandler: base, installations: installations}, nil
}

// ======================================================================================
// Mobile installations

func (h InstallationAPIHandler) recordMobileInstallation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID := vars["patient_id"]

	var request mobileInstallationRequest
	if err := h.parseRequestBody(r, &request); err != nil {
		h.replyError(w, r, err)
		return
	}

	spec, err := request.toSpec()
	if err != nil {
		h.replyError(w, r, fmt.Errorf("%w: %s", errBadRequest, err.Error()))
		return
	}

	token, _ := requestAccessToken(r.Context())
	entry, err := h.installations.RecordMobileInstallation(
		r.Context(), patientID, spec, token.Subject(), nil,
	)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusOK, entry)
}

// RecordMobileInstallationHandler returns the handler with middleware attached
func (h InstallationAPIHandler) RecordMobileInstallationHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.recordMobileInstallation)
}

func (h InstallationAPIHandler) getMobileInstallation(w http.ResponseWriter, r *http.Request) {
	if h.rejectBodiedGet(w, r) {
		return
	}

	vars := mux.Vars(r)
	entry, err := h.installations.GetMobileInstallation(
		r.Context(), vars["patient_id"], vars["installation_id"], nil,
	)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusOK, entry)
}

// GetMobileInstallationHandler returns the handler with middleware attached
func (h InstallationAPIHandler) GetMobileInstallationHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.getMobileInstallation)
}

func (h InstallationAPIHandler) latestMobileInstallation(w http.ResponseWriter, r *http.Request) {
	if h.rejectBodiedGet(w, r) {
		return
	}

	vars := mux.Vars(r)
	entry, err := h.installations.LatestMobileInstallation(r.Context(), vars["patient_id"], nil)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	// No installations yet renders as an empty object
	if entry == nil {
		h.replySuccess(w, r, http.StatusOK, struct{}{})
		return
	}
	h.replySuccess(w, r, http.StatusOK, entry)
}

// LatestMobileInstallationHandler returns the handler with middleware attached
func (h InstallationAPIHandler) LatestMobileInstallationHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.latestMobileInstallation)
}

func (h InstallationAPIHandler) updateMobileInstallation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var request mobileInstallationPatchRequest
	if err := h.parseRequestBody(r, &request); err != nil {
		h.replyError(w, r, err)
		return
	}

	patch, err := request.toPatch()
	if err != nil {
		h.replyError(w, r, fmt.Errorf("%w: %s", errBadRequest, err.Error()))
		return
	}

	token, _ := requestAccessToken(r.Context())
	entry, err := h.installations.UpdateMobileInstallation(
		r.Context(), vars["patient_id"], vars["installation_id"], patch, token.Subject(), nil,
	)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusOK, entry)
}

// UpdateMobileInstallationHandler returns the handler with middleware attached
func (h InstallationAPIHandler) UpdateMobileInstallationHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.updateMobileInstallation)
}

// ======================================================================================
// Desktop installations

func (h InstallationAPIHandler) recordDesktopInstallation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clinicianID := vars["clinician_id"]

	var request desktopInstallationRequest
	if err := h.parseRequestBody(r, &request); err != nil {
		h.replyError(w, r, err)
		return
	}

	spec, err := request.toSpec()
	if err != nil {
		h.replyError(w, r, fmt.Errorf("%w: %s", errBadRequest, err.Error()))
		return
	}

	token, _ := requestAccessToken(r.Context())
	entry, err := h.installations.RecordDesktopInstallation(
		r.Context(), clinicianID, spec, token.Subject(), nil,
	)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusOK, entry)
}

// RecordDesktopInstallationHandler returns the handler with middleware attached
func (h InstallationAPIHandler) RecordDesktopInstallationHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.recordDesktopInstallation)
}

func (h InstallationAPIHandler) getDesktopInstallation(w http.ResponseWriter, r *http.Request) {
	if h.rejectBodiedGet(w, r) {
		return
	}

	vars := mux.Vars(r)
	entry, err := h.installations.GetDesktopInstallation(
		r.Context(), vars["clinician_id"], vars["installation_id"], nil,
	)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusOK, entry)
}

// GetDesktopInstallationHandler returns the handler with middleware attached
func (h InstallationAPIHandler) GetDesktopInstallationHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.getDesktopInstallation)
}

func (h InstallationAPIHandler) latestDesktopInstallation(w http.ResponseWriter, r *http.Request) {
	if h.rejectBodiedGet(w, r) {
		return
	}

	vars := mux.Vars(r)
	entry, err := h.installations.LatestDesktopInstallation(r.Context(), vars["clinician_id"], nil)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	// No installations yet renders as an empty object
	if entry == nil {
		h.replySuccess(w, r, http.StatusOK, struct{}{})
		return
	}
	h.replySuccess(w, r, http.StatusOK, entry)
}

// LatestDesktopInstallationHandler returns the handler with middleware attached
func (h InstallationAPIHandler) LatestDesktopInstallationHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.latestDesktopInstallation)
}

func (h InstallationAPIHandler) updateDesktopInstallation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var request desktopInstallationPatchRequest
	if err := h.parseRequestBody(r, &request); err != nil {
		h.replyError(w, r, err)
		return
	}

	patch, err := request.toPatch()
	if err != nil {
		h.replyError(w, r, fmt.Errorf("%w: %s", errBadRequest, err.Error()))
		return
	}

	token, _ := requestAccessToken(r.Context())
	entry, err := h.installations.UpdateDesktopInstallation(
		r.Context(), vars["clinician_id"], vars["installation_id"], patch, token.Subject(), nil,
	)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusOK, entry)
}

// UpdateDesktopInstallationHandler returns the handler with middleware attached
func (h InstallationAPIHandler) UpdateDesktopInstallationHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.updateDesktopInstallation)
}

// ======================================================================================
// Non-production helpers

func (h InstallationAPIHandler) dropData(w http.ResponseWriter, r *http.Request) {
	if err := h.installations.ClearInstallations(r.Context(), nil); err != nil {
		h.replyError(w, r, err)
		return
	}
	h.replySuccess(w, r, http.StatusOK, h.GetStdRESTSuccessMsg(r.Context()))
}

// DropDataHandler returns the handler with middleware attached
func (h InstallationAPIHandler) DropDataHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.dropData)
}
