package cmd

import (
	"errors"

	"github.com/sentinel-sim/sentinel/internal/output"
	"github.com/sentinel-sim/sentinel/internal/remote"
	"github.com/sentinel-sim/sentinel/pkg/dashboard"
)

// errorCode maps an error onto the structured JSON error codes
func errorCode(err error) string {
	var ve *dashboard.ValidationError
	var se *remote.ServerError
	switch {
	case errors.As(err, &ve):
		return output.ErrCodeInvalidInput
	case errors.Is(err, remote.ErrNotFound):
		return output.ErrCodeNotFound
	case remote.IsTransient(err):
		return output.ErrCodeNetworkError
	case errors.As(err, &se):
		return output.ErrCodeServerError
	}
	return output.ErrCodeInvalidInput
}

// reportError prints err in the requested format and returns it so RunE can
// pass it straight through
func reportError(jsonOut bool, err error) error {
	if jsonOut {
		var se *remote.ServerError
		if errors.As(err, &se) {
			output.JSONErrorWithDetails(errorCode(err), err.Error(), map[string]interface{}{
				"status": se.StatusCode,
				"op":     se.Op,
			})
		} else {
			output.JSONError(errorCode(err), err.Error())
		}
		return err
	}
	output.Error("%v", err)
	return err
}
