package model

// StatementCount is the number of statements in every round and turn
const StatementCount = 3

// NoLie marks a round whose lie has not been selected yet
const NoLie = -1

// Statement is one of the three claims made about a subject.
// Whether it is the lie is derived from the owning round's LieIndex.
type Statement struct {
	ID      int    `json:"id"` // 1-indexed position
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ValidStatementIndex returns true if idx addresses one of the three statements
func ValidStatementIndex(idx int) bool {
	return idx >= 0 && idx < StatementCount
}
