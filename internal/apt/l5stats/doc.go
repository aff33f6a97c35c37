// Package l5stats owns Layer 5 (Statistics) of the atom-probe data model.
//
// Responsibilities: per-cluster centre of mass and radius of gyration
// (overall and per species) over the original cluster members, and the
// running composition ledger that subtracts envelope contents from the
// whole-dataset totals to leave the matrix residual.
// Key types: Gyration, ClusterGyration, Ledger, Proportion.
//
// Dependency rule: L5 may depend on L1-L4.
package l5stats
