package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"parking/internal/models"
)

type latLngObject struct {
	Latitude  json.RawMessage `json:"latitude"`
	Longitude json.RawMessage `json:"longitude"`
}

// ParseLatLng resolves a raw latlng value. The parking database stores it as
// {"latitude": "37.7", "longitude": "-122.4"}; numeric members and a plain
// "lat,lng" string are accepted too.
func ParseLatLng(raw json.RawMessage) (models.Coordinates, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return models.Coordinates{}, fmt.Errorf("latlng is null")
	}

	var c models.Coordinates
	switch raw[0] {
	case '{':
		var obj latLngObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return c, fmt.Errorf("invalid latlng object: %w", err)
		}
		lat, err := parseNumber(obj.Latitude)
		if err != nil {
			return c, fmt.Errorf("invalid latitude: %w", err)
		}
		lon, err := parseNumber(obj.Longitude)
		if err != nil {
			return c, fmt.Errorf("invalid longitude: %w", err)
		}
		c = models.Coordinates{Lat: lat, Lon: lon}
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return c, fmt.Errorf("invalid latlng string: %w", err)
		}
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return c, fmt.Errorf("latlng %q is not in lat,lng form", s)
		}
		lat, err := parseDecimal(parts[0])
		if err != nil {
			return c, fmt.Errorf("invalid latitude: %w", err)
		}
		lon, err := parseDecimal(parts[1])
		if err != nil {
			return c, fmt.Errorf("invalid longitude: %w", err)
		}
		c = models.Coordinates{Lat: lat, Lon: lon}
	default:
		return c, fmt.Errorf("unsupported latlng value %s", raw)
	}

	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return c, fmt.Errorf("coordinates %f,%f out of range", c.Lat, c.Lon)
	}
	return c, nil
}

// parseNumber accepts a JSON number or a string holding one.
func parseNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("missing value")
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
	}
	return parseDecimal(s)
}

var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseDecimal accepts plain decimal numbers only. NaN, Inf and hex floats,
// which strconv.ParseFloat would take, are rejected.
func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !decimalRe.MatchString(s) {
		return 0, fmt.Errorf("%q is not a decimal number", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return f, nil
}

var priceRe = regexp.MustCompile(`\$?(\d+(\.\d{2})?)`)

// FirstPrice extracts the first price in a rate range such as
// "$2.00 - $3.00".
func FirstPrice(rateRange string) (float64, bool) {
	m := priceRe.FindStringSubmatch(rateRange)
	if len(m) < 2 {
		return 0, false
	}
	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return p, true
}
