// Package pipeline runs one cluster/envelope analysis end to end.
//
// Run is a single synchronous batch: it validates configuration and the
// species selection, materialises the whole source, then bins, links,
// extracts and filters clusters before building envelopes and gyration
// statistics per surviving cluster. That per-cluster stage fans out over a
// bounded worker group; results are stored by ordinal so reporting order
// never depends on completion order. The composition ledger is then
// updated in cluster order.
//
// Run returns either a complete Result or one error. Emit writes a Result
// to a sink; nothing is emitted for a failed run.
package pipeline
