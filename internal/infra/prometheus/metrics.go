package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinkMutations counts link collection mutations by operation.
	LinkMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lnky_link_mutations_total",
		Help: "Number of link mutations applied, labelled by operation.",
	}, []string{"op"})

	// ReordersRejected counts reorder requests rejected for a set mismatch.
	ReordersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lnky_reorders_rejected_total",
		Help: "Number of reorder requests rejected because the id set did not match.",
	})

	// ProfileViews counts view events accepted for publishing.
	ProfileViews = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lnky_profile_views_total",
		Help: "Number of public profile views tracked.",
	})
)
