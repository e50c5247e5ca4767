package metrics

// Metrics holds market-insight generation usage for a time period.
type Metrics struct {
	insightRequests  int
	tokens           int
	costMillidollars int
}

// New creates a Metrics snapshot.
func New(requests, tokens, costMillidollars int) Metrics {
	return Metrics{insightRequests: requests, tokens: tokens, costMillidollars: costMillidollars}
}

// InsightRequests returns the number of insight generation calls.
func (m Metrics) InsightRequests() int { return m.insightRequests }

// Tokens returns the total tokens consumed.
func (m Metrics) Tokens() int { return m.tokens }

// CostMillidollars returns cost in millidollars (1 USD = 1000).
func (m Metrics) CostMillidollars() int { return m.costMillidollars }
