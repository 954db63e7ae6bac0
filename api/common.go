package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/alwitt/goutils"
	"github.com/apex/log"
	"github.com/go-playground/validator/v10"
	"github.com/polarishealth/telemetry/db"
	"github.com/polarishealth/telemetry/models"
)

// errBadRequest the request body could not be used
var errBadRequest = errors.New("bad request")

// apiHandler base for the REST handlers
type apiHandler struct {
	goutils.RestAPIHandler
	validate *validator.Validate
}

// newAPIHandler define a new base REST handler
func newAPIHandler(component string) (apiHandler, error) {
	logTags := log.Fields{"package": "telemetry", "module": "api", "component": component}

	requestIDHeader := "X-Request-ID"
	instance := apiHandler{
		RestAPIHandler: goutils.RestAPIHandler{
			Component: goutils.Component{
				LogTags: logTags,
				LogTagModifiers: []goutils.LogMetadataModifier{
					goutils.ModifyLogMetadataByRestRequestParam,
				},
			},
			CallRequestIDHeaderField: &requestIDHeader,
			DoNotLogHeaders: map[string]bool{"Authorization": true},
		},
		validate: validator.New(),
	}

	if err := models.RegisterWithValidator(instance.validate); err != nil {
		return apiHandler{}, fmt.Errorf("failed to install custom validation macros [%w]", err)
	}

	return instance, nil
}

// parseRequestBody decode and validate a JSON request body
func (h apiHandler) parseRequestBody(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: unparsable request body [%s]", errBadRequest, err.Error())
	}
	if err := h.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: invalid request body [%s]", errBadRequest, err.Error())
	}
	return nil
}

// rejectBodiedGet GET requests carrying a JSON body are refused
func (h apiHandler) rejectBodiedGet(w http.ResponseWriter, r *http.Request) bool {
	if r.ContentLength != 0 {
		h.replyError(w, r, fmt.Errorf("%w: GET request must not carry a body", errBadRequest))
		return true
	}
	return false
}

// replySuccess write a success payload
func (h apiHandler) replySuccess(
	w http.ResponseWriter, r *http.Request, code int, payload interface{},
) {
	if err := h.WriteRESTResponse(w, code, payload, nil); err != nil {
		log.WithError(err).WithFields(h.LogTags).Error("Failed to write REST response")
	}
}

// replyError map an error onto the matching REST failure response
func (h apiHandler) replyError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError

	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, db.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errBadRequest):
		code = http.StatusBadRequest
	case errors.As(err, &validationErrors):
		code = http.StatusBadRequest
	}

	resp := h.GetStdRESTErrorMsg(r.Context(), code, http.StatusText(code), err.Error())
	if writeErr := h.WriteRESTResponse(w, code, resp, nil); writeErr != nil {
		log.WithError(writeErr).WithFields(h.LogTags).Error("Failed to write REST response")
	}
}
