package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DrawsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giveaway_draws_total",
		Help: "Draw attempts by outcome",
	}, []string{"outcome"})

	DrawDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "giveaway_draw_duration_seconds",
		Help:    "Time to run a draw including eligibility evaluation",
		Buckets: prometheus.DefBuckets,
	})

	DrawUnfilledSlots = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giveaway_draw_unfilled_slots_total",
		Help: "Prize slots left empty because the eligible pool ran out",
	})

	WinnersAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giveaway_winners_allocated_total",
		Help: "Winner records created by source",
	}, []string{"source"})

	WinnersRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giveaway_winners_removed_total",
		Help: "Winner records removed by administrators",
	})

	EligibilityDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "giveaway_eligibility_evaluation_seconds",
		Help:    "Time to evaluate eligibility criteria",
		Buckets: prometheus.DefBuckets,
	})

	EligibleParticipants = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "giveaway_eligible_participants",
		Help:    "Size of the eligible set per evaluation",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giveaway_lifecycle_transitions_total",
		Help: "Giveaway status transitions by target status and trigger",
	}, []string{"to", "trigger"})

	LifecycleSweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giveaway_lifecycle_sweep_errors_total",
		Help: "Lifecycle sweeps that failed",
	})

	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giveaway_event_publish_errors_total",
		Help: "Giveaway events that could not be persisted or published",
	})
)

func IncDraw(outcome string) {
	DrawsTotal.WithLabelValues(label(outcome)).Inc()
}

func ObserveDrawDuration(duration time.Duration) {
	DrawDuration.Observe(duration.Seconds())
}

func AddUnfilledSlots(n int) {
	if n > 0 {
		DrawUnfilledSlots.Add(float64(n))
	}
}

func IncWinnerAllocated(source string) {
	WinnersAllocated.WithLabelValues(label(source)).Inc()
}

func IncWinnerRemoved() {
	WinnersRemoved.Inc()
}

func ObserveEligibility(duration time.Duration, eligible int) {
	EligibilityDuration.Observe(duration.Seconds())
	if eligible < 0 {
		eligible = 0
	}
	EligibleParticipants.Observe(float64(eligible))
}

func IncLifecycleTransition(to, trigger string) {
	LifecycleTransitions.WithLabelValues(label(to), label(trigger)).Inc()
}

func IncLifecycleSweepError() {
	LifecycleSweepErrors.Inc()
}

func IncEventPublishError() {
	EventPublishErrors.Inc()
}

func label(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
