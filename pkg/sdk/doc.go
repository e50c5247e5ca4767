// Package sdk provides an HTTP client for a propdex property analysis
// server.
//
// The client mirrors the /v1 JSON API: a property catalog, automated
// valuation, beneficiary scoring, recommendations, attribution
// explanations and the combined analysis pipeline.
//
//	client, _ := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//
//	val, err := client.Valuation().Value(ctx, property)
//	res, err := client.Analysis().Run(ctx, sdk.AnalysisRequest{
//	    Property:             property,
//	    RiskTolerance:        sdk.RiskLow,
//	    IncludeMarketInsight: sdk.Bool(true),
//	})
//
// Server-side failures come back as *APIError carrying the HTTP status
// and the stable error code from the response envelope. The codes are
// also mapped onto package sentinels:
//
//	_, err := client.Properties().Get(ctx, "prop-1")
//	if errors.Is(err, sdk.ErrNotFound) {
//	    // property is not catalogued
//	}
package sdk
