package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlaylistReloads counts channel list reloads by result
	// (installed, superseded, failed).
	PlaylistReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_viewer_playlist_reloads_total",
		Help: "Total number of channel list reloads by result",
	}, []string{"result"})

	// ChannelsLoaded tracks the size of the installed channel list
	ChannelsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_viewer_channels_loaded",
		Help: "Number of channels in the current full list",
	})

	// HeadersLoaded tracks how many entries of the current list are group headers
	HeadersLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "iptv_viewer_headers_loaded",
		Help: "Number of group header entries in the current full list",
	})

	// FetchResults counts playlist fetches by origin (upstream, stale_cache, error)
	FetchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_viewer_fetch_results_total",
		Help: "Total number of playlist fetches by origin",
	}, []string{"origin"})

	// CircuitBreakerState tracks the state of each upstream breaker
	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "iptv_viewer_circuit_breaker_state",
		Help: "Current state of circuit breaker (0=closed, 1=open, 2=half-open)",
	}, []string{"upstream"})

	// Plays counts playback hand-offs by result
	Plays = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "iptv_viewer_plays_total",
		Help: "Total number of playback requests by result",
	}, []string{"result"})
)

// RecordReload increments the reload counter for result
func RecordReload(result string) {
	PlaylistReloads.WithLabelValues(result).Inc()
}

// SetChannelsLoaded records the size of a newly installed list
func SetChannelsLoaded(total, headers int) {
	ChannelsLoaded.Set(float64(total))
	HeadersLoaded.Set(float64(headers))
}

// RecordFetch increments the fetch counter for origin
func RecordFetch(origin string) {
	FetchResults.WithLabelValues(origin).Inc()
}

// SetCircuitBreakerState updates the breaker gauge.
// state should be one of: "CLOSED" (0), "OPEN" (1), "HALF-OPEN" (2)
func SetCircuitBreakerState(upstream, state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(upstream).Set(value)
}

// RecordPlay increments the playback counter for result
func RecordPlay(result string) {
	Plays.WithLabelValues(result).Inc()
}
