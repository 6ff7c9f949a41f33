// Package pipeline drives a full catalog run: list enumeration, record
// normalization, database reconciliation, and trailer materialization.
package pipeline
