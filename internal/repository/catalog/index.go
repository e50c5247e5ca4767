package catalog

import (
	"github.com/kailas-cloud/propdex/internal/db"
	"github.com/kailas-cloud/propdex/internal/domain"
	"github.com/kailas-cloud/propdex/internal/domain/feature"
	"github.com/kailas-cloud/propdex/internal/domain/geo"
)

// Hash field names of the index projection.
const (
	fieldVector       = "__vector"
	fieldGeo          = "__geo"
	fieldPropertyType = "property_type"
	fieldBeds         = "beds"
	fieldBaths        = "baths"
	fieldSqft         = "sqft"
	fieldYearBuilt    = "year_built"
	fieldCity         = "city"
	fieldState        = "state"
	fieldAreaPrice    = "price_per_sqft"
)

// HNSW build parameters for the feature index. The space is tiny (11
// dimensions), so modest settings recall well.
const (
	hnswM           = 16
	hnswEFConstruct = 200
)

// featureIndex defines the HNSW/COSINE index over stored feature vectors.
// Each index keeps its own vector under the reserved "vector" alias, so the
// feature and geolocation concerns get separate indexes over the same hashes.
func featureIndex() *db.IndexDefinition {
	return db.NewIndex(featureIndexName()).
		Prefix(indexKeyPrefix()).
		VectorHNSW(fieldVector, "vector", feature.Dim, db.DistanceCosine, hnswM, hnswEFConstruct).
		Tag(fieldPropertyType, "").
		Tag(fieldCity, "").
		Tag(fieldState, "").
		Numeric(fieldBeds, "").
		Numeric(fieldBaths, "").
		Numeric(fieldSqft, "").
		Numeric(fieldYearBuilt, "").
		Numeric(fieldAreaPrice, "").
		MustBuild()
}

// geoIndex defines the FLAT/L2 index over unit-sphere location vectors.
func geoIndex() *db.IndexDefinition {
	return db.NewIndex(geoIndexName()).
		Prefix(indexKeyPrefix()).
		VectorFlat(fieldGeo, "vector", geo.GeoVectorDim, db.DistanceL2, 0).
		Tag(fieldPropertyType, "").
		Numeric(fieldBeds, "").
		Numeric(fieldBaths, "").
		Numeric(fieldSqft, "").
		Numeric(fieldYearBuilt, "").
		MustBuild()
}

func docKey(id string) string {
	return domain.KeyPrefix + "property:" + id
}

func indexKey(id string) string {
	return domain.KeyPrefix + "propidx:" + id
}

func indexKeyPrefix() string {
	return domain.KeyPrefix + "propidx:"
}

func featureIndexName() string {
	return domain.KeyPrefix + "property:idx"
}

func geoIndexName() string {
	return domain.KeyPrefix + "property:geoidx"
}
