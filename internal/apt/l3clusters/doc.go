// Package l3clusters owns Layer 3 (Clusters) of the atom-probe data model.
//
// Responsibilities: partitioning the separation graph into connected
// components and dropping components below a minimum size.
// Key types: Cluster, FilterResult.
//
// Dependency rule: L3 may depend on L1-L2, never on L4+.
package l3clusters
