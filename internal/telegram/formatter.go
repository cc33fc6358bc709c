package telegram

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/news"
)

const (
	maxListedArticles = 10
	maxListedSources  = 30
)

// FormatStructuredQuery shows the generated query line by line. The text
// itself is not changed, only escaped.
func FormatStructuredQuery(q domain.StructuredQuery) string {
	var sb strings.Builder
	sb.WriteString("<b>Запрос:</b>\n")
	sb.WriteString(fmt.Sprintf("<code>%s</code>", html.EscapeString(q.FilterLine())))

	if constraint := q.ConstraintLine(); constraint != "" {
		sb.WriteString("\n\n<b>Период и фильтры:</b>\n")
		sb.WriteString(fmt.Sprintf("<code>%s</code>", html.EscapeString(constraint)))
	}

	return sb.String()
}

func FormatArticles(title string, resp *news.Response) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n\n", html.EscapeString(title)))

	shown := 0
	for _, a := range resp.Articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		if shown == maxListedArticles {
			break
		}
		shown++
		sb.WriteString(formatArticle(shown, a))
	}

	sb.WriteString(fmt.Sprintf("\nНайдено: %d", resp.TotalResults))
	return sb.String()
}

func formatArticle(n int, a news.Article) string {
	line := fmt.Sprintf("%d. ", n)
	if a.URL != "" {
		line += fmt.Sprintf("<a href=\"%s\">%s</a>", html.EscapeString(a.URL), html.EscapeString(a.Title))
	} else {
		line += html.EscapeString(a.Title)
	}
	if a.Source.Name != "" {
		line += fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(a.Source.Name))
	}
	return line + "\n"
}

func FormatBriefing(b *domain.Briefing) string {
	var sb strings.Builder
	sb.WriteString("<b>Сводка:</b>\n")
	sb.WriteString(html.EscapeString(b.Summary))
	sb.WriteString("\n\n━━━━━━━━━━━━━━━━━━━━━\n")
	sb.WriteString("<b>Заголовки:</b>\n")

	for i, h := range b.Headlines {
		if i == maxListedArticles {
			sb.WriteString(fmt.Sprintf("...и еще %d\n", len(b.Headlines)-maxListedArticles))
			break
		}
		sb.WriteString(formatArticle(i+1, news.Article{
			Title:  h.Title,
			URL:    h.URL,
			Source: news.ArticleSource{Name: h.Source},
		}))
	}

	return sb.String()
}

func FormatSourcesList(sources []news.Source) string {
	var sb strings.Builder
	sb.WriteString("<b>Источники:</b>\n\n")

	for i, s := range sources {
		if i == maxListedSources {
			sb.WriteString("...\n")
			break
		}
		sb.WriteString(fmt.Sprintf("%d. %s <code>%s</code>\n   %s [%s, %s]\n",
			i+1,
			html.EscapeString(s.Name),
			html.EscapeString(s.ID),
			html.EscapeString(truncate(s.URL, 50)),
			html.EscapeString(s.Category),
			html.EscapeString(s.Country),
		))
	}

	sb.WriteString(fmt.Sprintf("\nВсего: %d", len(sources)))
	return sb.String()
}

func FormatSettings(p domain.Preferences) string {
	return fmt.Sprintf(`<b>Ваши настройки:</b>

Страна: %s
Категория: %s
Язык: %s
Предложений в сводке: %d`,
		orAny(p.Country),
		orAny(string(p.Category)),
		orAny(p.Language),
		p.Sentences(),
	)
}

func orAny(s string) string {
	if s == "" {
		return "любая"
	}
	return html.EscapeString(s)
}

// SplitMessage cuts HTML text into parts of at most maxLen runes, preferring
// line breaks and spaces. A cut never lands inside a tag or an entity. Tags
// still open at a cut are closed at the end of the part and reopened at the
// start of the next one. An element that cannot be cut that way stays whole,
// even if its part grows past maxLen.
func SplitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	runes := []rune(text)
	var (
		parts []string
		open  []htmlTag
	)
	for len(runes) > 0 {
		prefix := openingTags(open)
		budget := maxLen - utf8.RuneCountInString(prefix)
		if len(runes) <= budget {
			parts = append(parts, prefix+string(runes))
			break
		}

		cut := cutPoint(runes, budget, open)
		stillOpen := tagsOpenAfter(open, runes[:cut])
		parts = append(parts, prefix+string(runes[:cut])+closingTags(stillOpen))
		runes = runes[cut:]
		open = stillOpen
	}
	return parts
}

type htmlTag struct {
	name string
	open string // полный открывающий тег, с атрибутами
}

const maxEntityLen = 10

// cutPoint picks where the part ends, in order of preference: whitespace with
// no element split, whitespace inside an element that is cheap to reopen, any
// point with no element split, any safe point. With none of them in budget it
// returns the first safe point past the element that overflows.
func cutPoint(runes []rune, budget int, open []htmlTag) int {
	stack := append([]htmlTag(nil), open...)
	base := len(stack)

	var (
		inTag, inEntity       bool
		tagStart, entityStart int
		spaceWhole, spaceOpen int
		whole, anySafe        int
	)
	for p := 1; p <= len(runes); p++ {
		r := runes[p-1]
		switch {
		case inTag:
			if r == '>' {
				inTag = false
				var removed int
				stack, removed = applyTag(stack, string(runes[tagStart:p]))
				if removed >= 0 && removed < base {
					base--
				}
			}
		case inEntity:
			if r == ';' || p-entityStart > maxEntityLen {
				inEntity = false
			}
		case r == '<':
			inTag, tagStart = true, p-1
		case r == '&':
			inEntity, entityStart = true, p-1
		}
		if inTag || inEntity {
			continue
		}

		split := len(stack) > base
		if p > budget {
			if spaceWhole+spaceOpen+whole+anySafe > 0 {
				break
			}
			if !split {
				return p
			}
			continue
		}
		if p+utf8.RuneCountInString(closingTags(stack)) > budget {
			continue
		}

		space := (r == ' ' || r == '\n') && p > budget/2
		cheap := utf8.RuneCountInString(openingTags(stack)) <= budget/4
		switch {
		case space && !split:
			spaceWhole = p
		case space && cheap:
			spaceOpen = p
		}
		if !split {
			whole = p
		}
		anySafe = p
	}

	for _, p := range []int{spaceWhole, spaceOpen, whole, anySafe} {
		if p > 0 {
			return p
		}
	}
	return len(runes)
}

// tagsOpenAfter returns open updated by the tags found in chunk.
func tagsOpenAfter(open []htmlTag, chunk []rune) []htmlTag {
	stack := append([]htmlTag(nil), open...)
	start := -1
	for i, r := range chunk {
		switch {
		case r == '<':
			start = i
		case r == '>' && start >= 0:
			stack, _ = applyTag(stack, string(chunk[start:i+1]))
			start = -1
		}
	}
	return stack
}

// applyTag pushes an opening tag or pops the matching closing one. removed is
// the index of the popped element, -1 otherwise.
func applyTag(stack []htmlTag, tag string) ([]htmlTag, int) {
	inner := strings.TrimSuffix(strings.TrimPrefix(tag, "<"), ">")
	if name, ok := strings.CutPrefix(inner, "/"); ok {
		name = strings.ToLower(strings.TrimSpace(name))
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].name == name {
				return append(stack[:i:i], stack[i+1:]...), i
			}
		}
		return stack, -1
	}

	name := inner
	if i := strings.IndexAny(inner, " \t\n"); i >= 0 {
		name = inner[:i]
	}
	return append(stack, htmlTag{name: strings.ToLower(name), open: tag}), -1
}

func openingTags(stack []htmlTag) string {
	var sb strings.Builder
	for _, t := range stack {
		sb.WriteString(t.open)
	}
	return sb.String()
}

func closingTags(stack []htmlTag) string {
	var sb strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		sb.WriteString("</" + stack[i].name + ">")
	}
	return sb.String()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
