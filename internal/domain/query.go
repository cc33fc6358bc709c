package domain

import (
	"strings"
)

const MaxQueryLength = 1000

type QueryRequest struct {
	UserID int64
	Text   string
}

func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}

	if len(q.Text) > MaxQueryLength {
		return ErrQueryTooLong
	}

	return nil
}

func (q *QueryRequest) Sanitize() {
	q.Text = strings.TrimSpace(q.Text)
}

// StructuredQuery is the raw completion text: a filter expression on the
// first line and a constraint object on the second. It is never validated
// or rewritten; the accessors only split it for display.
type StructuredQuery string

func (q StructuredQuery) String() string {
	return string(q)
}

func (q StructuredQuery) FilterLine() string {
	filter, _ := q.split()
	return filter
}

func (q StructuredQuery) ConstraintLine() string {
	_, constraint := q.split()
	return constraint
}

func (q StructuredQuery) split() (string, string) {
	text := strings.TrimSpace(string(q))
	filter, rest, found := strings.Cut(text, "\n")
	if !found {
		return strings.TrimSpace(filter), ""
	}
	return strings.TrimSpace(filter), strings.TrimSpace(rest)
}
