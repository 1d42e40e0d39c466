package aprs

import (
	"github.com/go-gl/mathgl/mgl32"
	"gonum.org/v1/gonum/stat"
)

// LeafCapacity is the maximum number of live indices a kd-tree leaf holds
// before the index splits it.
const LeafCapacity = 100

// kdNode is a flat-array kd-tree node, in the spirit of bvh.BVHNode: leaves
// carry a slice of arena indices directly, internal nodes carry a split
// axis/value and two child offsets into the same node slice. Axis < 0
// marks a leaf.
type kdNode struct {
	axis  int8
	split float32
	left  int32
	right int32
	leaf  []uint32
}

// SpatialIndex is a kd-tree over live particle positions. It stores only
// arena indices and a reference to the buffer they index into — never a
// copy of the positions themselves — so it is cheap to rebuild every step.
type SpatialIndex struct {
	buf   []Particle
	nodes []kdNode
	root  int32
}

// NewSpatialIndex returns an empty index; call Rebuild before querying.
func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{root: -1}
}

// Rebuild constructs a balanced-by-mean kd-tree over the given live indices
// into buf. The split axis cycles X, Y, Z with tree depth; the split value
// is the mean of the node's positions along that axis.
func (idx *SpatialIndex) Rebuild(buf []Particle, live []uint32) {
	idx.buf = buf
	idx.nodes = idx.nodes[:0]
	if len(live) == 0 {
		idx.root = -1
		return
	}
	working := append([]uint32(nil), live...)
	idx.root = idx.build(working, 0)
}

func (idx *SpatialIndex) build(indices []uint32, axis int) int32 {
	nodeIdx := int32(len(idx.nodes))
	idx.nodes = append(idx.nodes, kdNode{axis: -1})

	if len(indices) <= LeafCapacity {
		idx.nodes[nodeIdx].leaf = indices
		return nodeIdx
	}

	vals := make([]float64, len(indices))
	for i, j := range indices {
		vals[i] = float64(idx.buf[j].Position[axis])
	}
	mean := float32(stat.Mean(vals, nil))

	var left, right []uint32
	for _, j := range indices {
		if idx.buf[j].Position[axis] <= mean {
			left = append(left, j)
		} else {
			right = append(right, j)
		}
	}

	// A degenerate split (every point on the same side, e.g. duplicate
	// positions) would recurse forever; fall back to a leaf instead.
	if len(left) == 0 || len(right) == 0 {
		idx.nodes[nodeIdx].leaf = indices
		return nodeIdx
	}

	nextAxis := (axis + 1) % 3
	leftChild := idx.build(left, nextAxis)
	rightChild := idx.build(right, nextAxis)

	idx.nodes[nodeIdx].axis = int8(axis)
	idx.nodes[nodeIdx].split = mean
	idx.nodes[nodeIdx].left = leftChild
	idx.nodes[nodeIdx].right = rightChild
	return nodeIdx
}

// QueryRadius returns every live index j with ‖buf[j].Position-center‖ <=
// radius. No ordering is guaranteed and duplicates are impossible.
func (idx *SpatialIndex) QueryRadius(center mgl32.Vec3, radius float32) []uint32 {
	if idx.root < 0 {
		return nil
	}
	var out []uint32
	idx.query(idx.root, center, radius, &out)
	return out
}

func (idx *SpatialIndex) query(nodeIdx int32, center mgl32.Vec3, radius float32, out *[]uint32) {
	node := &idx.nodes[nodeIdx]
	if node.axis < 0 {
		for _, j := range node.leaf {
			if center.Sub(idx.buf[j].Position).Len() <= radius {
				*out = append(*out, j)
			}
		}
		return
	}

	d := center[node.axis] - node.split
	if d <= 0 {
		idx.query(node.left, center, radius, out)
		if -d <= radius {
			idx.query(node.right, center, radius, out)
		}
	} else {
		idx.query(node.right, center, radius, out)
		if d <= radius {
			idx.query(node.left, center, radius, out)
		}
	}
}

// Insert adds index into whichever leaf its position descends to, without
// rebalancing. Cheap amortized-O(log n) maintenance between rebuilds; a
// full Rebuild still runs every simulation step, so any imbalance this
// introduces never accumulates across steps.
func (idx *SpatialIndex) Insert(buf []Particle, index uint32) {
	idx.buf = buf
	if idx.root < 0 {
		idx.buf = buf
		idx.nodes = []kdNode{{axis: -1, leaf: []uint32{index}}}
		idx.root = 0
		return
	}
	n := idx.root
	for idx.nodes[n].axis >= 0 {
		node := &idx.nodes[n]
		if buf[index].Position[node.axis] <= node.split {
			n = node.left
		} else {
			n = node.right
		}
	}
	idx.nodes[n].leaf = append(idx.nodes[n].leaf, index)
}

// Remove deletes index from whichever leaf currently holds it, if any.
func (idx *SpatialIndex) Remove(index uint32) {
	for i := range idx.nodes {
		leaf := idx.nodes[i].leaf
		for k, j := range leaf {
			if j == index {
				idx.nodes[i].leaf = append(leaf[:k], leaf[k+1:]...)
				return
			}
		}
	}
}
