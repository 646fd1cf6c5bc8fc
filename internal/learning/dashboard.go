package learning

import "github.com/abhisek/adaptlearn/internal/api"

// Effect is a fetch the learning dashboard should start.
type Effect int

const (
	EffectNone Effect = iota
	EffectFetchProgress
	EffectFetchNextInsight
)

func (e Effect) String() string {
	switch e {
	case EffectFetchProgress:
		return "fetch-progress"
	case EffectFetchNextInsight:
		return "fetch-next-insight"
	default:
		return "none"
	}
}

// Dashboard decides which fetches the learning view starts on its own. It
// requests the next insight at most once per distinct progress snapshot: an
// empty answer refreshes progress, and an unchanged refresh must not start
// another fetch.
type Dashboard struct {
	fetched    bool
	fetchedFor api.TopicProgress
}

// Next returns the effect to run for s, if any. Nothing auto-fetches while a
// request is in flight or an error is on screen.
func (d *Dashboard) Next(s State) Effect {
	if s.SelectedDomain == nil || s.LearningPath == nil || s.IsLoading || s.Error != "" {
		return EffectNone
	}

	p := s.TopicProgress
	if p == nil {
		return EffectFetchProgress
	}

	if s.CurrentInsight != nil || s.ReviewData != nil || p.ReviewAvailable {
		return EffectNone
	}
	if p.CompletedInsightsCount >= p.TotalInsightsInLevel || (d.fetched && d.fetchedFor == *p) {
		return EffectNone
	}
	d.fetched, d.fetchedFor = true, *p
	return EffectFetchNextInsight
}
