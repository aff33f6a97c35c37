// Package l2grid owns Layer 2 (Grid) of the atom-probe data model.
//
// Responsibilities: binning selected ions into a uniform 3-D cell grid whose
// cell edge equals the clustering separation, and building the undirected
// separation graph by comparing ions only within each cell's 27-cell
// neighbourhood.
// Key types: CellGrid, NeighborGraph.
//
// Dependency rule: L2 may depend on L1, never on L3+.
package l2grid
