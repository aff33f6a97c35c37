package l3clusters

// FilterResult is the outcome of dropping undersized clusters.
type FilterResult struct {
	Kept []Cluster

	// RemovedBySize[s] counts removed clusters with s members, for
	// s in 1..minAtoms-1. Index 0 is unused.
	RemovedBySize []int
	Removed       int
	RemovedAtoms  int
}

// Filter keeps clusters with at least minAtoms members, preserving order.
// Whole clusters are removed; members are never split.
func Filter(clusters []Cluster, minAtoms int) FilterResult {
	if minAtoms < 1 {
		minAtoms = 1
	}
	res := FilterResult{
		Kept:          make([]Cluster, 0, len(clusters)),
		RemovedBySize: make([]int, minAtoms),
	}
	for _, c := range clusters {
		if c.Size() >= minAtoms {
			res.Kept = append(res.Kept, c)
			continue
		}
		res.RemovedBySize[c.Size()]++
		res.Removed++
		res.RemovedAtoms += c.Size()
	}
	return res
}

// KeptAtoms returns the member count over surviving clusters.
func (r FilterResult) KeptAtoms() int {
	n := 0
	for _, c := range r.Kept {
		n += c.Size()
	}
	return n
}

// Histogram returns size → removed-count for sizes with at least one
// removal.
func (r FilterResult) Histogram() map[int]int {
	h := make(map[int]int)
	for size, n := range r.RemovedBySize {
		if n > 0 {
			h[size] = n
		}
	}
	return h
}
