// Package interaction models user-property interaction events and the
// accumulated per-property profiles that feed the collaborative
// recommendation signal.
package interaction

import (
	"time"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// Kind is the interaction type. Stronger intent carries more weight.
type Kind string

const (
	KindView     Kind = "view"
	KindShare    Kind = "share"
	KindSave     Kind = "save"
	KindAnalysis Kind = "comprehensive_analysis"
	KindContact  Kind = "contact"
)

var kindWeights = map[Kind]float64{
	KindView:     1,
	KindShare:    2,
	KindSave:     3,
	KindAnalysis: 4,
	KindContact:  5,
}

// IsValid checks if the kind is supported.
func (k Kind) IsValid() bool {
	_, ok := kindWeights[k]
	return ok
}

// Weight returns the engagement weight of the kind, 0 for unknown kinds.
func (k Kind) Weight() float64 { return kindWeights[k] }

const maxUserIDLen = 128

// Event is one validated user-property interaction.
type Event struct {
	userID     string
	propertyID string
	kind       Kind
	occurredAt time.Time
}

// NewEvent validates and creates an Event.
func NewEvent(userID, propertyID string, kind Kind, occurredAt time.Time) (Event, error) {
	if userID == "" {
		return Event{}, domain.NewValidation("user_id", "must not be empty")
	}
	if len(userID) > maxUserIDLen {
		return Event{}, domain.NewValidation("user_id", "too long")
	}
	if propertyID == "" {
		return Event{}, domain.NewValidation("property_id", "must not be empty")
	}
	if !kind.IsValid() {
		return Event{}, domain.NewValidation("interaction_type", "unknown type "+string(kind))
	}
	return Event{userID: userID, propertyID: propertyID, kind: kind, occurredAt: occurredAt}, nil
}

// UserID returns the interacting user.
func (e Event) UserID() string { return e.userID }

// PropertyID returns the property interacted with.
func (e Event) PropertyID() string { return e.propertyID }

// Kind returns the interaction type.
func (e Event) Kind() Kind { return e.kind }

// OccurredAt returns when the interaction happened.
func (e Event) OccurredAt() time.Time { return e.occurredAt }

// Weight returns the engagement weight of the event.
func (e Event) Weight() float64 { return e.kind.Weight() }

// Profile is a property's accumulated engagement: user id to total weight.
type Profile map[string]float64

// Total returns the summed engagement weight of the profile.
func (p Profile) Total() float64 {
	var total float64
	for _, w := range p {
		total += w
	}
	return total
}

// Affinity is the weighted Jaccard overlap of two profiles in [0, 1]:
// sum of per-user minimum weights over sum of per-user maximum weights.
// Empty profiles have zero affinity with everything.
func (p Profile) Affinity(other Profile) float64 {
	if len(p) == 0 || len(other) == 0 {
		return 0
	}
	var minSum, maxSum float64
	for user, w := range p {
		ow := other[user]
		if w < ow {
			minSum += w
			maxSum += ow
		} else {
			minSum += ow
			maxSum += w
		}
	}
	for user, ow := range other {
		if _, seen := p[user]; !seen {
			maxSum += ow
		}
	}
	if maxSum == 0 {
		return 0
	}
	return minSum / maxSum
}
