package l3clusters

import (
	"github.com/banshee-data/composition.report/internal/apt/l2grid"
)

// Cluster is one connected component. Members are dataset indices in
// breadth-first visit order.
type Cluster struct {
	Members []int
}

// Size returns the member count.
func (c Cluster) Size() int { return len(c.Members) }

// Extract runs breadth-first search from the lowest unvisited node until
// every node belongs to exactly one cluster. nodeIndex maps graph node i to
// its dataset index. Clusters come out in discovery order.
func Extract(graph *l2grid.NeighborGraph, nodeIndex []int) []Cluster {
	n := graph.Len()
	visited := make([]bool, n)
	queue := make([]int32, 0, 64)
	var clusters []Cluster

	for seed := 0; seed < n; seed++ {
		if visited[seed] {
			continue
		}
		visited[seed] = true
		queue = append(queue[:0], int32(seed))

		for head := 0; head < len(queue); head++ {
			for _, nb := range graph.Neighbors(int(queue[head])) {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}

		members := make([]int, len(queue))
		for i, node := range queue {
			members[i] = nodeIndex[node]
		}
		clusters = append(clusters, Cluster{Members: members})
	}
	return clusters
}
