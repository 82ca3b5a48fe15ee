package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for weather file conversion.
type Metrics struct {
	Conversions        *prometheus.CounterVec // labels: file_type={TMYx,EPW}, outcome={success,error}
	RowsRead           prometheus.Counter
	RowsWritten        prometheus.Counter
	RowsSkipped        *prometheus.CounterVec // labels: reason={too_few_fields,missing_field,malformed_number,unparseable}
	RowsPublished      prometheus.Counter
	ConversionDuration prometheus.Histogram
	DataStartFallbacks prometheus.Counter
}

// NewMetrics creates and registers all conversion metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Conversions,
		m.RowsRead,
		m.RowsWritten,
		m.RowsSkipped,
		m.RowsPublished,
		m.ConversionDuration,
		m.DataStartFallbacks,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmy3_convert",
			Name:      "conversions_total",
			Help:      "Weather file conversions by source type and outcome.",
		}, []string{"file_type", "outcome"}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tmy3_convert",
			Name:      "rows_read_total",
			Help:      "Non-blank hourly rows read from source files.",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tmy3_convert",
			Name:      "rows_written_total",
			Help:      "TMY3 data rows written to output files.",
		}),
		RowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tmy3_convert",
			Name:      "rows_skipped_total",
			Help:      "Source rows skipped during conversion, by reason.",
		}, []string{"reason"}),
		RowsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tmy3_convert",
			Name:      "rows_published_total",
			Help:      "TMY3 rows published to the Kafka sink topic.",
		}),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tmy3_convert",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of a complete file conversion.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		DataStartFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tmy3_convert",
			Name:      "data_start_fallbacks_total",
			Help:      "Conversions where no year-led line was found and the default data start was used.",
		}),
	}
}
