package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlaylistImports counts playlist imports by source ("url", "upload", "refresh") and outcome.
	PlaylistImports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channeldeck_playlist_imports_total",
		Help: "Total number of playlist imports",
	}, []string{"source", "outcome"})

	// ChannelsDecoded counts channels produced by the M3U decoder.
	ChannelsDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channeldeck_channels_decoded_total",
		Help: "Total number of channels decoded from M3U playlists",
	})

	// PlaylistExports counts M3U exports.
	PlaylistExports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channeldeck_playlist_exports_total",
		Help: "Total number of playlist exports",
	})

	// XtreamRequests counts catalog API calls by action and outcome
	XtreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channeldeck_xtream_requests_total",
		Help: "Total number of Xtream catalog API requests",
	}, []string{"action", "outcome"})
)

// RecordImport increments the import counter.
func RecordImport(source, outcome string) {
	PlaylistImports.WithLabelValues(source, outcome).Inc()
}

// RecordDecoded adds n decoded channels.
func RecordDecoded(n int) {
	ChannelsDecoded.Add(float64(n))
}

// RecordExport increments the export counter.
func RecordExport() {
	PlaylistExports.Inc()
}

// RecordXtreamRequest increments the catalog request counter. An empty action is
// the authentication call.
func RecordXtreamRequest(action, outcome string) {
	if action == "" {
		action = "authenticate"
	}
	XtreamRequests.WithLabelValues(action, outcome).Inc()
}
