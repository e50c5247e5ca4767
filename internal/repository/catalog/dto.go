package catalog

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/kailas-cloud/propdex/internal/domain/geo"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
)

// propertyDoc is the JSON document persisted per property.
type propertyDoc struct {
	ID           string      `json:"id"`
	PropertyType string      `json:"property_type"`
	Bedrooms     int         `json:"bedrooms"`
	Bathrooms    float64     `json:"bathrooms"`
	Sqft         float64     `json:"sqft"`
	YearBuilt    *int        `json:"year_built,omitempty"`
	LotSize      *float64    `json:"lot_size,omitempty"`
	Location     locationDoc `json:"location"`
	UpdatedAt    int64       `json:"updated_at"` // unix millis
}

type locationDoc struct {
	Latitude   float64             `json:"latitude"`
	Longitude  float64             `json:"longitude"`
	Address    string              `json:"address,omitempty"`
	City       string              `json:"city,omitempty"`
	State      string              `json:"state,omitempty"`
	Attributes location.Attributes `json:"attributes"`
}

// buildDoc converts a domain Record into its JSON document.
func buildDoc(rec property.Record, updatedAt int64) propertyDoc {
	doc := propertyDoc{
		ID:           rec.ID(),
		PropertyType: string(rec.PropertyType()),
		Bedrooms:     rec.Beds(),
		Bathrooms:    rec.Baths(),
		Sqft:         rec.Sqft(),
		UpdatedAt:    updatedAt,
	}
	if yb, ok := rec.YearBuilt(); ok {
		doc.YearBuilt = &yb
	}
	if ls, ok := rec.LotSize(); ok {
		doc.LotSize = &ls
	}
	loc := rec.Location()
	doc.Location = locationDoc{
		Latitude:   loc.Latitude(),
		Longitude:  loc.Longitude(),
		Address:    loc.Address(),
		City:       loc.City(),
		State:      loc.State(),
		Attributes: loc.Attrs(),
	}
	return doc
}

// toRecord converts a JSON document back into a domain Record.
func (d propertyDoc) toRecord() property.Record {
	loc := location.Reconstruct(
		d.Location.Latitude, d.Location.Longitude,
		d.Location.Address, d.Location.City, d.Location.State,
		d.Location.Attributes,
	)
	return property.Reconstruct(
		d.ID, property.Type(d.PropertyType),
		d.Bedrooms, d.Bathrooms, d.Sqft,
		d.YearBuilt, d.LotSize, loc,
	)
}

// buildIndexFields builds the flat hash projection both FT indexes read:
// the feature vector and geolocation blobs plus the filterable scalars.
func buildIndexFields(rec property.Record, features []float64) map[string]string {
	loc := rec.Location()
	m := map[string]string{
		fieldVector:       vectorToBytes(toFloat32(features)),
		fieldGeo:          vectorToBytes(geo.ToVector(loc.Latitude(), loc.Longitude())),
		fieldPropertyType: string(rec.PropertyType()),
		fieldBeds:         strconv.Itoa(rec.Beds()),
		fieldBaths:        formatFloat(rec.Baths()),
		fieldSqft:         formatFloat(rec.Sqft()),
	}
	if yb, ok := rec.YearBuilt(); ok {
		m[fieldYearBuilt] = strconv.Itoa(yb)
	}
	if city := loc.City(); city != "" {
		m[fieldCity] = city
	}
	if state := loc.State(); state != "" {
		m[fieldState] = state
	}
	if price := loc.Attrs().PricePerSqft; price != nil {
		m[fieldAreaPrice] = formatFloat(*price)
	}
	return m
}

// parseCandidateFields rebuilds a minimal Record from returned index fields.
// Only the characteristics the ranking stage needs survive the round trip.
func parseCandidateFields(id string, fields map[string]string) property.Record {
	beds, _ := strconv.Atoi(fields[fieldBeds])
	baths, _ := strconv.ParseFloat(fields[fieldBaths], 64)
	sqft, _ := strconv.ParseFloat(fields[fieldSqft], 64)

	var yearBuilt *int
	if s, ok := fields[fieldYearBuilt]; ok && s != "" {
		if yb, err := strconv.Atoi(s); err == nil {
			yearBuilt = &yb
		}
	}

	loc := location.Reconstruct(0, 0, "", fields[fieldCity], fields[fieldState], location.Attributes{})
	return property.Reconstruct(
		id, property.Type(fields[fieldPropertyType]),
		beds, baths, sqft, yearBuilt, nil, loc,
	)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
