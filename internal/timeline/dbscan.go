package timeline

import "math"

const noise = -1

// dbscan assigns a cluster label to each point using density-based
// clustering with Euclidean distance. Points without minPts neighbors within
// eps that are not reachable from a core point get the noise label.
func dbscan(points [][]float64, eps float64, minPts int) []int {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = noise
	}
	visited := make([]bool, n)
	next := 0

	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		neighbors := regionQuery(points, i, eps)
		if len(neighbors) < minPts {
			continue
		}

		labels[i] = next
		// Seed set expansion; neighbors may grow while iterating.
		for k := 0; k < len(neighbors); k++ {
			j := neighbors[k]
			if !visited[j] {
				visited[j] = true
				more := regionQuery(points, j, eps)
				if len(more) >= minPts {
					neighbors = append(neighbors, more...)
				}
			}
			if labels[j] == noise {
				labels[j] = next
			}
		}
		next++
	}
	return labels
}

// regionQuery returns the indices of all points within eps of points[i],
// including i itself.
func regionQuery(points [][]float64, i int, eps float64) []int {
	var neighbors []int
	for j := range points {
		if euclidean(points[i], points[j]) <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
