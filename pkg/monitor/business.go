package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	StakeSubmittedTotal  prometheus.Counter
	StakeConfirmedTotal  prometheus.Counter
	StakeCancelledTotal  prometheus.Counter
	IntentExpiredTotal   prometheus.Counter
	TransferDuration     prometheus.Histogram
	ConfirmFailedTotal   prometheus.Counter
	ReferralTreeSize     *prometheus.HistogramVec
	ReferralStatsDrift   prometheus.Counter
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		StakeSubmittedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "staking_stake_submitted_total",
			Help: "The total number of on-chain transfers submitted for stakes",
		}),
		StakeConfirmedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "staking_stake_confirmed_total",
			Help: "The total number of stakes confirmed by the backend",
		}),
		StakeCancelledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "staking_stake_cancelled_total",
			Help: "The total number of pending stakes cancelled by users",
		}),
		IntentExpiredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "staking_intent_expired_total",
			Help: "The total number of pending stake intents dropped by TTL expiry",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "staking_transfer_duration_seconds",
			Help:    "Time from transfer submission until the transaction is mined",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		ConfirmFailedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "staking_confirm_failed_total",
			Help: "The total number of failed backend confirmation calls",
		}),
		ReferralTreeSize: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "staking_referral_tree_size",
			Help:    "Node count of built referral trees",
			Buckets: []float64{1, 10, 50, 100, 500, 1000},
		}, []string{"view"}),
		ReferralStatsDrift: promauto.NewCounter(prometheus.CounterOpts{
			Name: "staking_referral_stats_drift_total",
			Help: "The number of times locally recomputed referral stats disagreed with the backend",
		}),
	}
}
