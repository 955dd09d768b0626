package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

var (
	// ErrCategoryCycle is returned when parent links form a loop.
	ErrCategoryCycle = errors.New("category parent links form a cycle")
	// ErrOrphanCategory is returned when a parent_id names no category.
	ErrOrphanCategory = errors.New("category parent does not exist")
)

// CategoryNode is a category with its children, ordered by ID.
type CategoryNode struct {
	ID       uint64          `json:"id"`
	Name     string          `json:"name"`
	Children []*CategoryNode `json:"children"`
}

// BuildTree assembles the category forest from flat rows.  Roots are
// the rows without a parent.  The walk is iterative, so deep or
// malformed input cannot exhaust the stack; any row not reachable from
// a root sits on a parent cycle and fails the build.
func BuildTree(rows []model.Category) ([]*CategoryNode, error) {
	nodes := make(map[uint64]*CategoryNode, len(rows))
	for _, r := range rows {
		if _, dup := nodes[r.ID]; dup {
			return nil, fmt.Errorf("duplicate category id %d", r.ID)
		}
		nodes[r.ID] = &CategoryNode{ID: r.ID, Name: r.Name, Children: []*CategoryNode{}}
	}

	children := make(map[uint64][]*CategoryNode, len(rows))
	roots := []*CategoryNode{}
	for _, r := range rows {
		n := nodes[r.ID]
		if r.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if _, ok := nodes[*r.ParentID]; !ok {
			return nil, fmt.Errorf("%w: category %d has parent %d", ErrOrphanCategory, r.ID, *r.ParentID)
		}
		children[*r.ParentID] = append(children[*r.ParentID], n)
	}

	byID := func(a, b *CategoryNode) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	}
	slices.SortFunc(roots, byID)

	visited := 0
	stack := slices.Clone(roots)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited++
		kids := children[n.ID]
		slices.SortFunc(kids, byID)
		n.Children = append(n.Children, kids...)
		stack = append(stack, kids...)
	}
	if visited != len(nodes) {
		return nil, fmt.Errorf("%w: %d of %d categories unreachable from a root",
			ErrCategoryCycle, len(nodes)-visited, len(nodes))
	}
	return roots, nil
}

// CategoryTree loads every category and builds the tree.
func CategoryTree(ctx context.Context, repo *repository.CategoryRepo) ([]*CategoryNode, error) {
	rows, err := repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return BuildTree(rows)
}
