package abilitykit

// DepthUnbounded makes CollectEntityIDs walk the entire subtree.
const DepthUnbounded = -1

// CollectEntityIDs returns the set of entity IDs reachable from root within
// maxDepth levels. The root itself is always included; maxDepth 1 adds the
// direct children, DepthUnbounded the whole subtree.
//
// The entity graph must be a tree. Cycles are not detected and cause
// non-termination.
func CollectEntityIDs(root *Entity, maxDepth int) map[string]struct{} {
	ids := make(map[string]struct{})
	if root == nil {
		return ids
	}
	collectEntityIDs(root, 0, maxDepth, ids)
	return ids
}

func collectEntityIDs(node *Entity, depth, maxDepth int, ids map[string]struct{}) {
	ids[node.ID] = struct{}{}
	if maxDepth != DepthUnbounded && depth >= maxDepth {
		return
	}
	for _, child := range node.Entities {
		collectEntityIDs(child, depth+1, maxDepth, ids)
	}
}
