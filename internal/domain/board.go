package domain

// ColumnView is one column of the board with the tasks currently in it.
type ColumnView struct {
	Column
	Tasks   []Task  `json:"tasks"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Board is the derived dashboard view.
type Board struct {
	Columns    []ColumnView `json:"columns"`
	Unassigned []Task       `json:"unassigned"`
	Total      int          `json:"total"`
	Empty      bool         `json:"empty"`
}

// BuildBoard groups tasks by status into cols. Tasks whose status matches no
// column end up in Unassigned, so the column counts plus len(Unassigned)
// always equal Total.
func BuildBoard(cols []Column, tasks []Task) Board {
	b := Board{
		Columns:    make([]ColumnView, len(cols)),
		Unassigned: []Task{},
		Total:      len(tasks),
		Empty:      len(tasks) == 0,
	}

	index := make(map[string]int, len(cols))
	for i, c := range cols {
		b.Columns[i] = ColumnView{Column: c, Tasks: []Task{}}
		index[c.ID] = i
	}

	for _, t := range tasks {
		i, ok := index[t.Status]
		if !ok {
			b.Unassigned = append(b.Unassigned, t)
			continue
		}
		b.Columns[i].Tasks = append(b.Columns[i].Tasks, t)
	}

	for i := range b.Columns {
		n := len(b.Columns[i].Tasks)
		b.Columns[i].Count = n
		if b.Total > 0 {
			b.Columns[i].Percent = float64(n) / float64(b.Total) * 100
		}
	}
	return b
}
