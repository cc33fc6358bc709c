package domain

import "strings"

type Category string

const (
	CategoryBusiness      Category = "business"
	CategoryEntertainment Category = "entertainment"
	CategoryGeneral       Category = "general"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategorySports        Category = "sports"
	CategoryTechnology    Category = "technology"
)

var Categories = []Category{
	CategoryBusiness,
	CategoryEntertainment,
	CategoryGeneral,
	CategoryHealth,
	CategoryScience,
	CategorySports,
	CategoryTechnology,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

type SortBy string

const (
	SortRelevancy   SortBy = "relevancy"
	SortPopularity  SortBy = "popularity"
	SortPublishedAt SortBy = "publishedAt"
)

func (s SortBy) IsValid() bool {
	switch s {
	case SortRelevancy, SortPopularity, SortPublishedAt:
		return true
	default:
		return false
	}
}

// Languages и Countries - то, что принимает NewsAPI (ISO-639-1 / ISO 3166-1, нижний регистр).
var Languages = []string{
	"ar", "de", "en", "es", "fr", "he",
	"it", "nl", "no", "pt", "ru", "sv",
	"ud", "zh",
}

var Countries = []string{
	"ae", "ar", "at", "au", "be", "bg", "br",
	"ca", "ch", "cn", "co", "cu", "cz", "de",
	"eg", "fr", "gb", "gr", "hk", "hu", "id",
	"ie", "il", "in", "it", "jp", "kr", "lt",
	"lv", "ma", "mx", "my", "ng", "nl", "no",
	"nz", "ph", "pl", "pt", "ro", "rs", "ru",
	"sa", "se", "sg", "si", "sk", "th", "tr",
	"tw", "ua", "us", "ve", "za",
}

func IsValidCountry(code string) bool {
	return contains(Countries, strings.ToLower(code))
}

func IsValidLanguage(code string) bool {
	return contains(Languages, strings.ToLower(code))
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Briefing - сводка по топ-заголовкам.
type Briefing struct {
	Headlines []Headline
	Summary   string
}

type Headline struct {
	Title  string
	Source string
	URL    string
}
