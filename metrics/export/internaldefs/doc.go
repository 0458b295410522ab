// Package internaldefs holds the metric names and bucket boundaries shared by the
// exporters, so the Prometheus and OTel views of a Client never disagree.
//
// It must not perform I/O or import an exporter package.
package internaldefs
