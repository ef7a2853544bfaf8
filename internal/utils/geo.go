package utils

import (
	"net/url"
	"strconv"
	"strings"
)

const DefaultMapURL = "https://www.google.com/maps"

// MapLink builds a map-provider URL that drops a pin on lat,lng.
func MapLink(baseURL string, lat, lng float64) string {
	if baseURL == "" {
		baseURL = DefaultMapURL
	}
	q := url.Values{}
	q.Set("q", FormatCoordinates(lat, lng))

	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	// Keep the comma readable in SMS bodies.
	return baseURL + sep + strings.ReplaceAll(q.Encode(), "%2C", ",")
}

// FormatCoordinates renders lat,lng in plain decimal, never exponent form.
func FormatCoordinates(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}
