package domain

import (
	"reflect"
	"testing"
)

func TestColumnValidate(t *testing.T) {
	cases := []struct {
		col  Column
		want error
	}{
		{Column{ID: "todo", Title: "To Do"}, nil},
		{Column{ID: "in-review", Title: " Review "}, nil},
		{Column{ID: "In Progress", Title: "x"}, ErrInvalidColumnID},
		{Column{ID: "-bad", Title: "x"}, ErrInvalidColumnID},
		{Column{ID: "", Title: "x"}, ErrInvalidColumnID},
		{Column{ID: "ok", Title: "   "}, ErrColumnTitleNeeded},
	}
	for _, tc := range cases {
		c := tc.col
		if got := c.Validate(); got != tc.want {
			t.Fatalf("Validate(%+v) = %v; want %v", tc.col, got, tc.want)
		}
	}
}

func TestSortColumns(t *testing.T) {
	two, one := 2, 1
	cols := []Column{
		{ID: "z"},
		{ID: "b", Order: &two},
		{ID: "a"},
		{ID: "c", Order: &one},
	}
	SortColumns(cols)
	if got := ColumnIDs(cols); !reflect.DeepEqual(got, []string{"c", "b", "a", "z"}) {
		t.Fatalf("sorted ids = %v", got)
	}
}

func TestFindColumn(t *testing.T) {
	cols := DefaultColumns()
	if c, ok := FindColumn(cols, "done"); !ok || c.Title != "Done" {
		t.Fatalf("FindColumn(done) = %+v, %v", c, ok)
	}
	if _, ok := FindColumn(cols, "missing"); ok {
		t.Fatalf("found a column that does not exist")
	}
}
