package domain

import "time"

type User struct {
	ID          int64
	TelegramID  int64
	Username    string
	Preferences Preferences
	CreatedAt   time.Time
}

const (
	DefaultSummarySentences = 3
	MaxSummarySentences     = 10
)

// Preferences - дефолты для /headlines, /brief и /sources.
// Пустые строки значат "не фильтровать".
type Preferences struct {
	Country          string
	Category         Category
	Language         string
	SummarySentences int
}

func (p Preferences) Validate() error {
	if p.Country != "" && !IsValidCountry(p.Country) {
		return ErrInvalidCountry
	}
	if p.Category != "" && !p.Category.IsValid() {
		return ErrInvalidCategory
	}
	if p.Language != "" && !IsValidLanguage(p.Language) {
		return ErrInvalidLanguage
	}
	if p.SummarySentences != 0 {
		if err := ValidateSentenceCount(p.SummarySentences); err != nil {
			return err
		}
	}
	return nil
}

// Sentences returns the configured sentence count or the default when unset.
func (p Preferences) Sentences() int {
	if p.SummarySentences <= 0 {
		return DefaultSummarySentences
	}
	return p.SummarySentences
}

func ValidateSentenceCount(n int) error {
	if n < 1 || n > MaxSummarySentences {
		return ErrInvalidSentenceCount
	}
	return nil
}
