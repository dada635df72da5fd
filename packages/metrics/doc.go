// Package metrics records per-request and per-batch metrics.
//
// Counters and histograms live on a private Prometheus registry so a batch
// can be flushed to a node_exporter textfile without touching the default
// registry. Latency percentiles for the console summary come from an HDR
// histogram.
//
// Exported series:
//   - hitpull_requests_total{method,host,status}
//   - hitpull_request_errors_total{kind}
//   - hitpull_request_duration_seconds{host}
//   - hitpull_batches_total{result}
//   - hitpull_batch_descriptors
package metrics
