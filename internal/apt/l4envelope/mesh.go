package l4envelope

import "github.com/banshee-data/composition.report/internal/apt/l1ions"

// Mesh is an indexed triangle surface. Triangles wind counter-clockwise
// seen from outside the occupied volume.
type Mesh struct {
	Vertices  []l1ions.Point3D
	Triangles [][3]int32
}

type voxelFace struct {
	normal  [3]int
	corners [4][3]int
}

var voxelFaces = [6]voxelFace{
	{normal: [3]int{1, 0, 0}, corners: [4][3]int{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	{normal: [3]int{-1, 0, 0}, corners: [4][3]int{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}}},
	{normal: [3]int{0, 1, 0}, corners: [4][3]int{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}},
	{normal: [3]int{0, -1, 0}, corners: [4][3]int{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	{normal: [3]int{0, 0, 1}, corners: [4][3]int{{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}}},
	{normal: [3]int{0, 0, -1}, corners: [4][3]int{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
}

// Surface emits two triangles for every face of an occupied cell whose
// neighbour across that face is empty or outside the grid. Shared corners
// are emitted once.
func Surface(g *VoxelGrid) Mesh {
	var m Mesh
	lookup := make(map[[3]int]int32)
	vertex := func(c [3]int) int32 {
		if id, ok := lookup[c]; ok {
			return id
		}
		id := int32(len(m.Vertices))
		lookup[c] = id
		m.Vertices = append(m.Vertices, g.WorldPos(c[0], c[1], c[2]))
		return id
	}

	for k := 0; k < g.Dims[2]; k++ {
		for j := 0; j < g.Dims[1]; j++ {
			for i := 0; i < g.Dims[0]; i++ {
				if !g.At(i, j, k) {
					continue
				}
				for _, f := range voxelFaces {
					if g.At(i+f.normal[0], j+f.normal[1], k+f.normal[2]) {
						continue
					}
					var q [4]int32
					for n, c := range f.corners {
						q[n] = vertex([3]int{i + c[0], j + c[1], k + c[2]})
					}
					m.Triangles = append(m.Triangles, [3]int32{q[0], q[1], q[2]}, [3]int32{q[0], q[2], q[3]})
				}
			}
		}
	}
	return m
}
