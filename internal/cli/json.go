package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/rileyhilliard/ssv/internal/errors"
)

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// ErrCodeUnknown marks errors that carry no structured code, such as cobra
// usage errors.
const ErrCodeUnknown = "UNKNOWN"

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: true, Data: data})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{Success: false, Error: ErrorToJSON(err)})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError. Structured errors keep
// their code; an external tool failure also reports the program and status.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var ssvErr *errors.Error
	if !stderrors.As(err, &ssvErr) {
		return &JSONError{Code: ErrCodeUnknown, Message: err.Error()}
	}

	out := &JSONError{
		Code:       ssvErr.Code,
		Message:    ssvErr.Message,
		Suggestion: ssvErr.Suggestion,
	}

	var cmdErr *errors.CommandError
	if stderrors.As(err, &cmdErr) {
		out.Details = map[string]interface{}{
			"program":   cmdErr.Program,
			"exit_code": cmdErr.ExitCode,
			"output":    cmdErr.Output,
		}
	}

	return out
}
