package catalog

// Category groups subcategories of node kinds for display.
type Category struct {
	Name          string
	Subcategories []Subcategory
}

// Subcategory groups node kinds for display.
type Subcategory struct {
	Name  string
	Kinds []*NodeKind
}

// Tree arranges every kind as category -> subcategory -> kinds, preserving
// the order in which each was first registered.
func (r *Registry) Tree() []Category {
	var tree []Category
	catIndex := make(map[string]int)
	subIndex := make(map[[2]string]int)

	for _, k := range r.Kinds() {
		ci, ok := catIndex[k.Category]
		if !ok {
			ci = len(tree)
			catIndex[k.Category] = ci
			tree = append(tree, Category{Name: k.Category})
		}
		key := [2]string{k.Category, k.Subcategory}
		si, ok := subIndex[key]
		if !ok {
			si = len(tree[ci].Subcategories)
			subIndex[key] = si
			tree[ci].Subcategories = append(tree[ci].Subcategories, Subcategory{Name: k.Subcategory})
		}
		tree[ci].Subcategories[si].Kinds = append(tree[ci].Subcategories[si].Kinds, k)
	}
	return tree
}
