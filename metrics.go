package ulog

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ulog"

type metrics struct {
	records   prometheus.Counter
	skipped   prometheus.Counter
	bytes     prometheus.Counter
	rotations prometheus.Counter
	fileBytes prometheus.Gauge
}

func newMetrics() *metrics {
	return &metrics{
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "writer",
			Name:      "records_total",
			Help:      "Number of data records written.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "writer",
			Name:      "records_skipped_total",
			Help:      "Number of validated data records not written because the writer was disabled.",
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "writer",
			Name:      "bytes_total",
			Help:      "Number of encoded bytes written, across all files.",
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "writer",
			Name:      "rotations_total",
			Help:      "Number of times the writer rotated to a new file.",
		}),
		fileBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "writer",
			Name:      "file_bytes",
			Help:      "Size of the current output file, in bytes.",
		}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.records, m.skipped, m.bytes, m.rotations, m.fileBytes} {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "register metrics")
		}
	}
	return nil
}
