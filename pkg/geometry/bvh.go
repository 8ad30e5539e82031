package geometry

import (
	"cmp"
	"slices"

	"github.com/df07/go-raycore/pkg/core"
)

// Leaf threshold: if we have this many or fewer triangles, store them in a leaf node
const leafThreshold = 4

// bvhNode is a node of the flattened hierarchy. Interior nodes reference
// their children by index; leaves reference a run of BVH.order.
type bvhNode struct {
	bounds      core.AABB
	left, right int32 // Child node indices, -1 for leaves
	first       int32 // First entry in order (leaves only)
	count       int32 // Number of triangles (leaves only)
}

func (n *bvhNode) isLeaf() bool {
	return n.left < 0
}

// BVH is a bounding volume hierarchy over a fixed slice of triangles.
// It is built once and is safe for concurrent queries.
type BVH struct {
	nodes []bvhNode
	order []int32 // Triangle indices in leaf order
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	MaxLeaf    int // Largest number of triangles in one leaf
}

// NewBVH constructs a BVH over triangles by recursively splitting the
// longest axis of each node's bounds at the centroid median. The triangles
// slice is not modified and must not be modified afterwards.
func NewBVH(triangles []Triangle) *BVH {
	bvh := &BVH{}
	if len(triangles) == 0 {
		return bvh
	}

	bvh.order = make([]int32, len(triangles))
	for i := range bvh.order {
		bvh.order[i] = int32(i)
	}
	centroids := make([]core.Vec3, len(triangles))
	bounds := make([]core.AABB, len(triangles))
	for i := range triangles {
		centroids[i] = triangles[i].Centroid()
		bounds[i] = triangles[i].Bounds()
	}

	bvh.nodes = make([]bvhNode, 0, 2*len(triangles)/leafThreshold+1)
	bvh.build(0, len(triangles), centroids, bounds)
	return bvh
}

// build creates the node covering order[lo:hi] and returns its index
func (bvh *BVH) build(lo, hi int, centroids []core.Vec3, bounds []core.AABB) int32 {
	box := core.EmptyAABB()
	centroidBox := core.EmptyAABB()
	for _, idx := range bvh.order[lo:hi] {
		box = box.Union(bounds[idx])
		centroidBox = centroidBox.Extend(centroids[idx])
	}

	nodeIdx := int32(len(bvh.nodes))
	bvh.nodes = append(bvh.nodes, bvhNode{bounds: pad(box), left: -1, right: -1})

	if hi-lo <= leafThreshold {
		bvh.nodes[nodeIdx].first = int32(lo)
		bvh.nodes[nodeIdx].count = int32(hi - lo)
		return nodeIdx
	}

	// Median split along the longest axis of the centroid bounds
	axis := centroidBox.LongestAxis()
	slices.SortStableFunc(bvh.order[lo:hi], func(a, b int32) int {
		return cmp.Compare(centroids[a].Axis(axis), centroids[b].Axis(axis))
	})
	mid := lo + (hi-lo)/2

	left := bvh.build(lo, mid, centroids, bounds)
	right := bvh.build(mid, hi, centroids, bounds)
	bvh.nodes[nodeIdx].left = left
	bvh.nodes[nodeIdx].right = right
	return nodeIdx
}

// pad grows a box by a tiny relative margin so flat boxes around
// axis-aligned triangles are not lost to rounding in the slab test.
func pad(box core.AABB) core.AABB {
	eps := 1e-9 + 1e-7*box.Size().MaxComponent()
	margin := core.NewVec3(eps, eps, eps)
	return core.NewAABB(box.Min.Subtract(margin), box.Max.Add(margin))
}

// Bounds returns the bounding box of everything in the hierarchy
func (bvh *BVH) Bounds() core.AABB {
	if len(bvh.nodes) == 0 {
		return core.EmptyAABB()
	}
	return bvh.nodes[0].bounds
}

// closer orders hits by distance, breaking exact ties by triangle index so
// that traversal order never changes which triangle is reported.
func closer(t float64, idx int, bestT float64, bestIdx int) bool {
	return t < bestT || (t == bestT && idx < bestIdx)
}

// Intersect returns the index of the closest triangle hit by ray within its
// range together with the surface hit. The result is identical to
// IntersectLinear over the same triangles.
func (bvh *BVH) Intersect(ray core.Ray, triangles []Triangle) (int, SurfaceHit, bool) {
	return bvh.IntersectCounted(ray, triangles, nil)
}

// IntersectCounted is Intersect that also records box and triangle tests in
// stats when stats is not nil.
func (bvh *BVH) IntersectCounted(ray core.Ray, triangles []Triangle, stats *core.RayStats) (int, SurfaceHit, bool) {
	if len(bvh.nodes) == 0 {
		return -1, SurfaceHit{}, false
	}

	bestIdx := -1
	bestT := ray.TMax
	var best SurfaceHit

	var stackBuf [64]int32
	stack := append(stackBuf[:0], 0)

	for len(stack) > 0 {
		node := &bvh.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		// Skip nodes the ray misses or enters beyond the current best hit
		if stats != nil {
			stats.BoxTests++
		}
		if _, ok := node.bounds.Hit(ray, ray.TMin, bestT); !ok {
			continue
		}

		if node.isLeaf() {
			if stats != nil {
				stats.TriangleTests += int(node.count)
			}
			for _, idx := range bvh.order[node.first : node.first+node.count] {
				hit, ok := triangles[idx].Intersect(ray.WithRange(ray.TMin, bestT))
				if ok && closer(hit.T, int(idx), bestT, bestIdx) {
					bestT = hit.T
					bestIdx = int(idx)
					best = hit
				}
			}
			continue
		}

		// Visit the nearer child first: push it last
		tLeft, hitLeft := bvh.nodes[node.left].bounds.Hit(ray, ray.TMin, bestT)
		tRight, hitRight := bvh.nodes[node.right].bounds.Hit(ray, ray.TMin, bestT)
		if stats != nil {
			stats.BoxTests += 2
		}
		switch {
		case hitLeft && hitRight:
			if tLeft <= tRight {
				stack = append(stack, node.right, node.left)
			} else {
				stack = append(stack, node.left, node.right)
			}
		case hitLeft:
			stack = append(stack, node.left)
		case hitRight:
			stack = append(stack, node.right)
		}
	}

	return bestIdx, best, bestIdx >= 0
}

// IntersectLinear tests every triangle exhaustively. It is the reference
// the BVH must agree with.
func IntersectLinear(ray core.Ray, triangles []Triangle) (int, SurfaceHit, bool) {
	bestIdx := -1
	bestT := ray.TMax
	var best SurfaceHit
	for i := range triangles {
		hit, ok := triangles[i].Intersect(ray.WithRange(ray.TMin, bestT))
		if ok && closer(hit.T, i, bestT, bestIdx) {
			bestT = hit.T
			bestIdx = i
			best = hit
		}
	}
	return bestIdx, best, bestIdx >= 0
}

// Stats returns statistics about the BVH structure
func (bvh *BVH) Stats() BVHStats {
	var stats BVHStats
	if len(bvh.nodes) == 0 {
		return stats
	}
	bvh.collectStats(0, 0, &stats)
	return stats
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(nodeIdx int32, depth int, stats *BVHStats) {
	node := &bvh.nodes[nodeIdx]
	stats.TotalNodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)

	if node.isLeaf() {
		stats.LeafNodes++
		stats.MaxLeaf = max(stats.MaxLeaf, int(node.count))
		return
	}
	bvh.collectStats(node.left, depth+1, stats)
	bvh.collectStats(node.right, depth+1, stats)
}
