// Package propdex embeds the property analysis engine in a Go application:
// automated valuation with uncertainty bands, beneficiary scoring, hybrid
// recommendations and feature-attribution explanations over a property
// catalog stored in Valkey or Redis.
//
// # Connecting
//
//	client, err := propdex.New(ctx,
//	    propdex.WithValkey("localhost:6379", ""),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
// Valuations use the deterministic heuristic pricer by default. Pass
// WithForestModel to train a calibrated regression forest on a synthetic
// population at startup.
//
// # Catalog
//
//	created, err := client.Properties().Upsert(ctx, propdex.Property{
//	    ID:    "prop-1",
//	    Type:  propdex.TypeResidential,
//	    Beds:  3,
//	    Baths: 2,
//	    Sqft:  1500,
//	    Location: propdex.Location{Latitude: 41.8781, Longitude: -87.6298},
//	})
//
// Bulk ingestion goes through UpsertBatch, which pipelines the writes and
// reports a per-item result.
//
// # Analysis
//
//	analysis, err := client.Analysis().Run(ctx, prop,
//	    propdex.WithRiskTolerance(propdex.RiskLow),
//	    propdex.WithMaxRecommendations(5),
//	)
//
// Run prices the property, scores it for the configured beneficiary
// weights, derives the verdict and finds similar catalogued properties.
// The individual engines are also available on their own facades:
// Valuation, Scoring, Recommendations and Interactions.
package propdex
