package tiles

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "routemap",
		Subsystem: "tiles",
		Name:      "fetch_attempts_total",
		Help:      "Tile requests sent to mirrors",
	}, []string{"mirror", "result"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "routemap",
		Subsystem: "tiles",
		Name:      "fetch_duration_seconds",
		Help:      "Time to obtain a tile from the first mirror that answered",
		Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	placeholdersStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "routemap",
		Subsystem: "tiles",
		Name:      "placeholders_total",
		Help:      "Placeholder tiles stored after every mirror failed or the key was invalid",
	})

	pendingTiles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routemap",
		Subsystem: "tiles",
		Name:      "pending",
		Help:      "Tiles currently queued or being fetched",
	})

	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "routemap",
		Subsystem: "cache",
		Name:      "entries",
		Help:      "Tiles held in the in-memory cache",
	})
)
