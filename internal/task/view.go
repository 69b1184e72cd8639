package task

import "time"

// View is everything the presentation layer renders for one state.
type View struct {
	Groups  []Group
	Counts  Counts
	Matched int
}

// Derive runs filter, sort and group over all and aggregates counts over the
// unfiltered collection. all is treated as read-only.
func Derive(all []Task, c Criteria, d Dimension, now time.Time) View {
	sorted := Sort(Filter(all, c, now))
	return View{
		Groups:  GroupBy(sorted, d),
		Counts:  Aggregate(all, now),
		Matched: len(sorted),
	}
}

// Rows flattens the groups in display order.
func (v View) Rows() []Task {
	rows := make([]Task, 0, v.Matched)
	for _, g := range v.Groups {
		rows = append(rows, g.Tasks...)
	}
	return rows
}
