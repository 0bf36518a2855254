package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GateRejectionsTotal counts admission rejections by reason.
	GateRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_rejections_total",
			Help: "Total number of candidates rejected at admission, by reason",
		},
		[]string{"feeder", "reason"},
	)

	// QuotaUnitsConsumed tracks platform API quota spent per operation.
	QuotaUnitsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_units_consumed_total",
			Help: "Platform API quota units consumed, by operation",
		},
		[]string{"operation"},
	)

	// QuotaExhaustedTotal counts how often a run stopped early on quota exhaustion.
	QuotaExhaustedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quota_exhausted_total",
			Help: "Total number of times a run halted because the daily quota was exhausted",
		},
		[]string{"stage"},
	)

	// SnapshotLeasesTotal counts rows leased for sampling, by outcome.
	SnapshotLeasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_leases_total",
			Help: "Total number of snapshot leases taken, by outcome",
		},
		[]string{"outcome"}, // sampled, released, expired
	)

	// ClustersFound tracks the cluster count produced by the most recent
	// clustering pass, by window.
	ClustersFound = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clusters_found",
			Help: "Number of clusters produced by the most recent clustering pass",
		},
		[]string{"window"},
	)

	// NoisePointsTotal tracks the noise-labeled point count from the most
	// recent clustering pass, by window.
	NoisePointsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cluster_noise_points",
			Help: "Number of videos left unclustered as noise by the most recent clustering pass",
		},
		[]string{"window"},
	)
)

func init() {
	prometheus.MustRegister(GateRejectionsTotal)
	prometheus.MustRegister(QuotaUnitsConsumed)
	prometheus.MustRegister(QuotaExhaustedTotal)
	prometheus.MustRegister(SnapshotLeasesTotal)
	prometheus.MustRegister(ClustersFound)
	prometheus.MustRegister(NoisePointsTotal)
}
