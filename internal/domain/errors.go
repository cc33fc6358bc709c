package domain

import "errors"

var ErrUserNotFound = errors.New("user not found")

var (
	ErrEmptyQuery   = errors.New("empty query")
	ErrQueryTooLong = errors.New("query too long")
)

var (
	ErrNoHeadlines          = errors.New("no headlines to summarize")
	ErrInvalidSentenceCount = errors.New("invalid sentence count")
	ErrNewsUnavailable      = errors.New("news request failed")
)

var (
	ErrInvalidCountry  = errors.New("invalid country code")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidLanguage = errors.New("invalid language code")
	ErrInvalidSortBy   = errors.New("invalid sort order")
)
