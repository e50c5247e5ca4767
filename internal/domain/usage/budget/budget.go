package budget

// Budget tracks the market-insight generation call budget state.
type Budget struct {
	callsLimit     int
	callsRemaining int
	isExhausted    bool
	resetsAt       int64 // unix millis, converted to ISO 8601 at transport layer
}

// New creates a Budget snapshot.
func New(limit, remaining int, isExhausted bool, resetsAt int64) Budget {
	return Budget{
		callsLimit:     limit,
		callsRemaining: remaining,
		isExhausted:    isExhausted,
		resetsAt:       resetsAt,
	}
}

// CallsLimit returns the insight call cap.
func (b Budget) CallsLimit() int { return b.callsLimit }

// CallsRemaining returns calls left.
func (b Budget) CallsRemaining() int { return b.callsRemaining }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// ResetsAt returns the reset timestamp (unix millis).
func (b Budget) ResetsAt() int64 { return b.resetsAt }
