package telegram

import (
	"strconv"
	"strings"

	"github.com/kitbuilder587/newsquery/internal/domain"
)

// ParseQueryCommand returns the request text of "/query ..." or of a plain
// message. "/query@botname" is accepted.
func ParseQueryCommand(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}

	parts := strings.SplitN(text, " ", 2)
	command, _, _ := strings.Cut(strings.ToLower(parts[0]), "@")

	if command != "/query" && command != "/q" {
		return text
	}
	if len(parts) < 2 {
		return ""
	}
	return normalizeSpaces(parts[1])
}

// ParseHeadlinesArgs reads "/headlines [cc] [category]" in any order. Missing
// values fall back to the user's preferences.
func ParseHeadlinesArgs(args string, prefs domain.Preferences) (country string, category domain.Category, err error) {
	country = prefs.Country
	category = prefs.Category

	for _, arg := range strings.Fields(strings.ToLower(args)) {
		if c, parseErr := domain.ParseCategory(arg); parseErr == nil {
			category = c
			continue
		}
		if domain.IsValidCountry(arg) {
			country = arg
			continue
		}
		if len(arg) == 2 {
			return "", "", domain.ErrInvalidCountry
		}
		return "", "", domain.ErrInvalidCategory
	}

	return country, category, nil
}

// ParseSentences returns fallback for an empty argument.
func ParseSentences(arg string, fallback int) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, domain.ErrInvalidSentenceCount
	}
	if err := domain.ValidateSentenceCount(n); err != nil {
		return 0, err
	}
	return n, nil
}

// isReset reports whether a settings argument means "clear the filter".
func isReset(arg string) bool {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "-", "all", "any", "все", "сброс":
		return true
	}
	return false
}

func normalizeSpaces(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
