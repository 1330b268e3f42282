package insight

import "sort"

// CategoryCount is the number of records holding one value.
type CategoryCount struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// Counts is a count-per-category view of one integer field, ordered by value.
type Counts struct {
	Field      string          `json:"field"`
	Title      string          `json:"title"`
	Categories []CategoryCount `json:"categories"`
}

// NewCounts tallies values.
func NewCounts(field, title string, values []int) Counts {
	tally := make(map[int]int)
	for _, v := range values {
		tally[v]++
	}
	cats := make([]CategoryCount, 0, len(tally))
	for v, c := range tally {
		cats = append(cats, CategoryCount{Value: v, Count: c})
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Value < cats[j].Value })
	return Counts{Field: field, Title: title, Categories: cats}
}

// Total sums all category counts.
func (c Counts) Total() int {
	var n int
	for _, cat := range c.Categories {
		n += cat.Count
	}
	return n
}
