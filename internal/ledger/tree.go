package ledger

import (
	"sort"

	"github.com/google/uuid"
)

// Tree is a farm's category forest built once from a flat list.
type Tree struct {
	cats     []Category
	byID     map[uuid.UUID]Category
	byCode   map[string]Category
	children map[uuid.UUID][]Category
}

func NewTree(cats []Category) *Tree {
	t := &Tree{
		cats:     cats,
		byID:     make(map[uuid.UUID]Category, len(cats)),
		byCode:   make(map[string]Category, len(cats)),
		children: make(map[uuid.UUID][]Category),
	}
	for _, c := range cats {
		t.byID[c.ID] = c
		t.byCode[c.Code] = c
		if c.ParentID != nil {
			t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
		}
	}
	for id := range t.children {
		sortCategories(t.children[id])
	}
	return t
}

func sortCategories(cats []Category) {
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].Level != cats[j].Level {
			return cats[i].Level < cats[j].Level
		}
		return cats[i].SortOrder < cats[j].SortOrder
	})
}

// Categories returns every category ordered by level then sort order.
func (t *Tree) Categories() []Category {
	out := append([]Category(nil), t.cats...)
	sortCategories(out)
	return out
}

func (t *Tree) Lookup(code string) (Category, bool) {
	c, ok := t.byCode[code]
	return c, ok
}

func (t *Tree) Children(id uuid.UUID) []Category {
	return t.children[id]
}

func (t *Tree) Roots() []Category {
	var roots []Category
	for _, c := range t.cats {
		if c.ParentID == nil {
			roots = append(roots, c)
		}
	}
	sortCategories(roots)
	return roots
}

// IsLeaf reports whether code exists and has no children.
func (t *Tree) IsLeaf(code string) bool {
	c, ok := t.byCode[code]
	return ok && len(t.children[c.ID]) == 0
}

// Leaves returns the categories no other category names as parent.
func (t *Tree) Leaves() []Category {
	var leaves []Category
	for _, c := range t.Categories() {
		if len(t.children[c.ID]) == 0 {
			leaves = append(leaves, c)
		}
	}
	return leaves
}

// LeafCodes returns the code of every leaf.
func (t *Tree) LeafCodes() []string {
	leaves := t.Leaves()
	codes := make([]string, len(leaves))
	for i, c := range leaves {
		codes[i] = c.Code
	}
	return codes
}

// ValidateLeaf fails with *InvalidCategoryError for an unknown code or a
// category with children.
func (t *Tree) ValidateLeaf(code string) error {
	c, ok := t.byCode[code]
	if !ok {
		return &InvalidCategoryError{Code: code, Reason: reasonUnknown}
	}
	if len(t.children[c.ID]) > 0 {
		return &InvalidCategoryError{Code: code, Reason: reasonParent}
	}
	return nil
}

// ParentCode returns the code of c's parent, or "" for a root.
func (t *Tree) ParentCode(c Category) string {
	if c.ParentID == nil {
		return ""
	}
	return t.byID[*c.ParentID].Code
}

// Placement computes path, level and sort order for a new category. Roots
// go 100 past the last root; children go right after their last sibling, or
// right after the parent when it has none.
func (t *Tree) Placement(code string, parent *Category) (path string, level, sortOrder int) {
	if parent == nil {
		maxSort := 0
		for _, r := range t.Roots() {
			if r.SortOrder > maxSort {
				maxSort = r.SortOrder
			}
		}
		return code, 0, maxSort + 100
	}

	siblings := t.children[parent.ID]
	if len(siblings) == 0 {
		sortOrder = parent.SortOrder + 1
	} else {
		maxSort := siblings[0].SortOrder
		for _, s := range siblings[1:] {
			if s.SortOrder > maxSort {
				maxSort = s.SortOrder
			}
		}
		sortOrder = maxSort + 1
	}
	return parent.Path + "." + code, parent.Level + 1, sortOrder
}

// CategoryNode is a category with its children nested.
type CategoryNode struct {
	Category
	Children []CategoryNode `json:"children"`
}

// Nested returns the forest with children nested under their parents.
func (t *Tree) Nested() []CategoryNode {
	var build func(c Category) CategoryNode
	build = func(c Category) CategoryNode {
		node := CategoryNode{Category: c, Children: []CategoryNode{}}
		for _, child := range t.children[c.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	roots := t.Roots()
	out := make([]CategoryNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}
