package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxDocumentBytes = 1 << 20

func readDocument(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errBadRequestBody
	}
	return body, nil
}

// parseDateParam reads an optional date query parameter. Plain dates are
// interpreted as midnight in loc.
func parseDateParam(r *http.Request, name string, loc *time.Location) (*time.Time, error) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	return nil, errInvalidDate
}
