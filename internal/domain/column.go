package domain

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrInvalidColumnID   = errors.New("column id must be a lowercase slug")
	ErrColumnTitleNeeded = errors.New("column title is required")
)

var columnIDPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Column is a workflow stage. Task.Status holds a Column.ID.
type Column struct {
	ID    string `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
	Color string `db:"color" json:"color"`
	Order *int   `db:"order" json:"order,omitempty"`
}

func (c *Column) Validate() error {
	if !columnIDPattern.MatchString(c.ID) {
		return ErrInvalidColumnID
	}
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return ErrColumnTitleNeeded
	}
	return nil
}

// DefaultColumns mirrors the rows seeded by the initial migration.
func DefaultColumns() []Column {
	one, two, three := 1, 2, 3
	return []Column{
		{ID: "todo", Title: "To Do", Color: "bg-blue-50", Order: &one},
		{ID: "in-progress", Title: "In Progress", Color: "bg-yellow-50", Order: &two},
		{ID: "done", Title: "Done", Color: "bg-green-50", Order: &three},
	}
}

// SortColumns orders columns by Order (unset last), then by ID.
func SortColumns(cols []Column) {
	sort.SliceStable(cols, func(i, j int) bool {
		a, b := cols[i].Order, cols[j].Order
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return cols[i].ID < cols[j].ID
	})
}

// ColumnIDs returns the ids of cols in their given order.
func ColumnIDs(cols []Column) []string {
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}

// FindColumn returns the column with id, if present.
func FindColumn(cols []Column, id string) (Column, bool) {
	for _, c := range cols {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}
