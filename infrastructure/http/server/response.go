package server

import (
	"dm-lab/errors"
	"encoding/json"
	"fmt"
	"net/http"
)

const maxBodyBytes = 64 * 1024

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	payload["success"] = true
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errors.MapToHTTPStatus(err))
	_ = json.NewEncoder(w).Encode(envelope{"success": false, "message": errors.PublicMessage(err)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json body", errors.ErrValidation)
	}
	return nil
}
