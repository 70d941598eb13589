// Package http contains shared helpers for the JSON API handlers.
package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse sends an error response as JSON
func ErrorResponse(w http.ResponseWriter, log zerolog.Logger, message string, statusCode int) {
	log.Error().Int("status", statusCode).Msg(message)
	WriteJSON(w, statusCode, map[string]string{"error": message})
}

// ParseCountries extracts the country filter selection from the query
// string. Repeated "country" parameters form the set; absence means no
// filter. Blank values are ignored.
func ParseCountries(r *http.Request) []string {
	var countries []string
	for _, c := range r.URL.Query()["country"] {
		if c != "" {
			countries = append(countries, c)
		}
	}
	return countries
}
