package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/polarishealth/telemetry/registry"
)

// MeterAPIHandler REST handler for blood-glucose-meter pairings
type MeterAPIHandler struct {
	apiHandler
	meters registry.MeterRegistry
}

/*
NewMeterAPIHandler define a new meter pairing REST handler

	@param meters registry.MeterRegistry - meter pairing registry
	@returns new handler instance
*/
func NewMeterAPIHandler(meters registry.MeterRegistry) (MeterAPIHandler, error) {
	base, err := newAPIHandler("meter-api")
	if err != nil {
		return MeterAPIHandler{}, err
	}
	return MeterAPIHandler{apiHandler: base, meters: meters}, nil
}

func (h MeterAPIHandler) recordMeterPairing(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patientID := vars["patient_id"]

	var request meterPairingRequest
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
	entry, err := h.meters.RecordMeterPairing(r.Context(), patientID, spec, token.Subject(), nil)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusCreated, entry)
}

// RecordMeterPairingHandler returns the handler with middleware attached
func (h MeterAPIHandler) RecordMeterPairingHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.recordMeterPairing)
}

func (h MeterAPIHandler) getMeterPairing(w http.ResponseWriter, r *http.Request) {
	if h.rejectBodiedGet(w, r) {
		return
	}

	vars := mux.Vars(r)
	entry, err := h.meters.GetMeterPairing(r.Context(), vars["patient_id"], vars["meter_id"], nil)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusOK, entry)
}

// GetMeterPairingHandler returns the handler with middleware attached
func (h MeterAPIHandler) GetMeterPairingHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.getMeterPairing)
}

func (h MeterAPIHandler) updateMeterPairing(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var request meterPairingPatchRequest
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
	entry, err := h.meters.UpdateMeterPairing(
		r.Context(), vars["patient_id"], vars["meter_id"], patch, token.Subject(), nil,
	)
	if err != nil {
		h.replyError(w, r, err)
		return
	}

	h.replySuccess(w, r, http.StatusOK, entry)
}

// UpdateMeterPairingHandler returns the handler with middleware attached
func (h MeterAPIHandler) UpdateMeterPairingHandler() http.HandlerFunc {
	return h.LoggingMiddleware(h.updateMeterPairing)
}
