// Package apt holds the pieces shared by every layer of the atom-probe
// cluster/envelope analysis: the failure taxonomy returned to callers and the
// warning kinds carried alongside a successful result.
//
// Layer packages:
//
//	l1ions      ion data model, species catalog, selection, ingestion
//	l2grid      uniform-grid binning and neighbour graph
//	l3clusters  connected components and size filtering
//	l4envelope  voxel envelopes, sweep fill, surface meshing
//	l5stats     gyration statistics and composition ledger
//
// Dependency rule: a layer may depend on lower layers, never on higher ones.
// Only pipeline wires layers together; only sink/report/db know about output.
package apt
