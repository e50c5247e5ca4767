package analysis

// Stage names a step of the analysis pipeline.
type Stage string

const (
	StageReceived        Stage = "received"
	StageFeaturesBuilt   Stage = "features_built"
	StageValuation       Stage = "valuation"
	StageScoring         Stage = "scoring"
	StageRecommendations Stage = "recommendations"
	StageExplanations    Stage = "explanations"
	StageMarketInsight   Stage = "market_insight"
	StageAssembled       Stage = "assembled"
)

// StageStatus records how a stage finished.
type StageStatus string

const (
	// StatusDone means the stage completed normally.
	StatusDone StageStatus = "done"
	// StatusSkipped means the stage was disabled by the request.
	StatusSkipped StageStatus = "skipped"
	// StatusDegraded means the stage produced a partial or fallback result.
	StatusDegraded StageStatus = "degraded"
)

// StageEvent is one entry of the pipeline trace.
type StageEvent struct {
	Stage  Stage       `json:"stage"`
	Status StageStatus `json:"status"`
	Note   string      `json:"note,omitempty"`
}

// Trace is the ordered pipeline trace of one analysis.
type Trace []StageEvent

// Append records a stage outcome and returns the extended trace.
func (t Trace) Append(stage Stage, status StageStatus, note string) Trace {
	return append(t, StageEvent{Stage: stage, Status: status, Note: note})
}

// Degraded reports whether any stage finished degraded.
func (t Trace) Degraded() bool {
	for _, e := range t {
		if e.Status == StatusDegraded {
			return true
		}
	}
	return false
}
