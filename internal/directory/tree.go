package directory

import (
	"sort"

	"github.com/syariahos/syariahos-api/internal/models"
)

// Node is a directory item with its children.
type Node struct {
	Item     models.DirectoryItem
	Children []*Node
}

// BuildTree assembles flat rows into a forest. Rows whose parent is not in
// the set become roots. Siblings are ordered by sort order, then name.
func BuildTree(rows []models.DirectoryItem) []*Node {
	nodes := make(map[uint64]*Node, len(rows))
	for _, row := range rows {
		nodes[row.ID] = &Node{Item: row}
	}
	roots := make([]*Node, 0)
	for _, row := range rows {
		node := nodes[row.ID]
		if row.ParentID != nil {
			if parent, ok := nodes[*row.ParentID]; ok && *row.ParentID != row.ID {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Item.SortOrder != nodes[j].Item.SortOrder {
			return nodes[i].Item.SortOrder < nodes[j].Item.SortOrder
		}
		if nodes[i].Item.Name != nodes[j].Item.Name {
			return nodes[i].Item.Name < nodes[j].Item.Name
		}
		return nodes[i].Item.ID < nodes[j].Item.ID
	})
	for _, node := range nodes {
		sortNodes(node.Children)
	}
}

// descendants returns the IDs below root, using a parent index built from rows.
func descendants(rows []models.DirectoryItem, root uint64) []uint64 {
	children := make(map[uint64][]uint64, len(rows))
	for _, row := range rows {
		if row.ParentID != nil {
			children[*row.ParentID] = append(children[*row.ParentID], row.ID)
		}
	}
	var out []uint64
	seen := map[uint64]bool{root: true}
	queue := []uint64{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	return out
}
