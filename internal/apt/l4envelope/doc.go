// Package l4envelope owns Layer 4 (Envelopes) of the atom-probe data model.
//
// Responsibilities: per-cluster padded bounding box and boolean voxel
// occupancy, the optional X→Y→Z sweep fill, re-scanning every ranged ion
// against the occupied voxels, and turning a voxel grid into a closed
// triangle surface for rendering.
// Key types: VoxelGrid, Envelope, Voxelizer, Mesh.
//
// The sweep fill is a per-axis closure between the first and last occupied
// cell of every line. It is not a morphological closing and must stay
// three cumulative passes in fixed order.
//
// Dependency rule: L4 may depend on L1-L3, never on L5+.
package l4envelope
