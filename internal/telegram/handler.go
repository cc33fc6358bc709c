package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/llm"
	"github.com/kitbuilder587/newsquery/internal/news"
	"github.com/kitbuilder587/newsquery/internal/service"
)

const genericErrorMessage = "Произошла ошибка. Попробуйте позже."

type Handler struct {
	bot *Bot
}

func NewHandler(bot *Bot) *Handler {
	return &Handler{bot: bot}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.bot.logger.Info("received message",
		zap.Int64("user_id", msg.From.ID),
		zap.String("username", msg.From.UserName),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if msg.IsCommand() {
		h.handleCommand(ctx, msg)
	} else {
		h.handleQuery(ctx, msg, ParseQueryCommand(msg.Text))
	}
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "query", "q":
		h.handleQuery(ctx, msg, normalizeSpaces(msg.CommandArguments()))
	case "headlines":
		h.handleHeadlines(ctx, msg)
	case "brief":
		h.handleBrief(ctx, msg)
	case "search":
		h.handleSearch(ctx, msg)
	case "sources":
		h.handleSources(ctx, msg)
	case "country":
		h.handleCountry(ctx, msg)
	case "category":
		h.handleCategory(ctx, msg)
	case "language":
		h.handleLanguage(ctx, msg)
	case "sentences":
		h.handleSentences(ctx, msg)
	case "settings":
		h.handleSettings(ctx, msg)
	default:
		h.bot.Send(msg.Chat.ID, "Неизвестная команда. Используйте /help для справки.")
	}
}

func (h *Handler) user(ctx context.Context, msg *tgbotapi.Message) (*domain.User, bool) {
	user, err := h.bot.users.GetOrCreate(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		h.bot.logger.Error("failed to get user", zap.Error(err), zap.Int64("user_id", msg.From.ID))
		h.bot.Send(msg.Chat.ID, genericErrorMessage)
		return nil, false
	}
	return user, true
}

func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if _, ok := h.user(ctx, msg); !ok {
		return
	}

	h.bot.Send(msg.Chat.ID, "Добро пожаловать! Опишите, какие новости вас интересуют, и я составлю поисковый запрос.\n\nИспользуйте /help для просмотра доступных команд.")
}

func (h *Handler) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	helpText := `<b>Доступные команды:</b>

/start - Регистрация
/help - Показать эту справку
/query текст - Составить структурированный запрос
/headlines [страна] [категория] - Главные заголовки
/brief [N] - Сводка главных заголовков в N предложений
/search текст - Поиск статей
/sources - Список источников

<b>Настройки:</b>
/country код - Страна по умолчанию (us, gb, de...)
/category название - Категория по умолчанию
/language код - Язык источников (en, de, fr...)
/sentences N - Длина сводки (1-10)
/settings - Показать настройки
Значение "-" сбрасывает фильтр.

<b>Категории:</b>
business, entertainment, general, health, science, sports, technology

<b>Как использовать:</b>
Просто отправьте текст, например:
• "Show me all the articles about Apple"
• "Negative news about Tesla in the last month"`

	h.bot.Send(msg.Chat.ID, helpText)
}

func (h *Handler) handleQuery(ctx context.Context, msg *tgbotapi.Message, request string) {
	if _, ok := h.user(ctx, msg); !ok {
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	query, err := h.bot.queries.Generate(ctx, request)
	if err != nil {
		h.bot.logger.Error("query generation failed",
			zap.Error(err),
			zap.Int64("user_id", msg.From.ID),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.SendLong(msg.Chat.ID, FormatStructuredQuery(query))
}

func (h *Handler) handleHeadlines(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := h.user(ctx, msg)
	if !ok {
		return
	}

	country, category, err := ParseHeadlinesArgs(msg.CommandArguments(), user.Preferences)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err)+"\nИспользование: /headlines [страна] [категория]")
		return
	}

	resp := h.bot.news.TopHeadlines(ctx, news.HeadlinesParams{
		Country:  country,
		Category: category,
		PageSize: maxListedArticles,
	})
	if resp == nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(domain.ErrNewsUnavailable))
		return
	}
	if len(resp.Titles()) == 0 {
		h.bot.Send(msg.Chat.ID, "Заголовков не найдено.")
		return
	}

	h.bot.SendLong(msg.Chat.ID, FormatArticles("Главные заголовки", resp))
}

func (h *Handler) handleBrief(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := h.user(ctx, msg)
	if !ok {
		return
	}

	fallback := h.bot.defaultSentences
	if user.Preferences.SummarySentences > 0 {
		fallback = user.Preferences.SummarySentences
	}

	sentences, err := ParseSentences(msg.CommandArguments(), fallback)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.SendTyping(msg.Chat.ID)

	briefing, err := h.bot.briefing.Brief(ctx, service.BriefRequest{
		Country:   user.Preferences.Country,
		Category:  user.Preferences.Category,
		PageSize:  20,
		Sentences: sentences,
	})
	if err != nil {
		h.bot.logger.Error("briefing failed",
			zap.Error(err),
			zap.Int64("user_id", msg.From.ID),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.SendLong(msg.Chat.ID, FormatBriefing(briefing))
}

func (h *Handler) handleSearch(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := h.user(ctx, msg)
	if !ok {
		return
	}

	text := normalizeSpaces(msg.CommandArguments())
	if text == "" {
		h.bot.Send(msg.Chat.ID, "Укажите запрос: /search bitcoin")
		return
	}

	resp := h.bot.news.Search(ctx, text, news.SearchOptions{
		Language: user.Preferences.Language,
		SortBy:   domain.SortPublishedAt,
		PageSize: maxListedArticles,
	})
	if resp == nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(domain.ErrNewsUnavailable))
		return
	}
	if len(resp.Titles()) == 0 {
		h.bot.Send(msg.Chat.ID, "Ничего не найдено.")
		return
	}

	h.bot.SendLong(msg.Chat.ID, FormatArticles("Результаты поиска", resp))
}

func (h *Handler) handleSources(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := h.user(ctx, msg)
	if !ok {
		return
	}

	resp := h.bot.news.Sources(ctx, news.SourcesParams{
		Category: user.Preferences.Category,
		Language: user.Preferences.Language,
		Country:  user.Preferences.Country,
	})
	if resp == nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(domain.ErrNewsUnavailable))
		return
	}
	if len(resp.Sources) == 0 {
		h.bot.Send(msg.Chat.ID, "Источников с такими фильтрами нет. Проверьте /settings.")
		return
	}

	h.bot.SendLong(msg.Chat.ID, FormatSourcesList(resp.Sources))
}

func (h *Handler) handleCountry(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if arg == "" {
		h.bot.Send(msg.Chat.ID, "Укажите код страны: /country us\nСбросить: /country -")
		return
	}
	if isReset(arg) {
		arg = ""
	}

	h.updatePreferences(ctx, msg, func(p *domain.Preferences) { p.Country = arg })
}

func (h *Handler) handleCategory(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if arg == "" {
		h.bot.Send(msg.Chat.ID, "Укажите категорию: /category technology\nСбросить: /category -")
		return
	}
	if isReset(arg) {
		arg = ""
	}

	h.updatePreferences(ctx, msg, func(p *domain.Preferences) { p.Category = domain.Category(arg) })
}

func (h *Handler) handleLanguage(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	if arg == "" {
		h.bot.Send(msg.Chat.ID, "Укажите код языка: /language en\nСбросить: /language -")
		return
	}
	if isReset(arg) {
		arg = ""
	}

	h.updatePreferences(ctx, msg, func(p *domain.Preferences) { p.Language = arg })
}

func (h *Handler) handleSentences(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.bot.Send(msg.Chat.ID, fmt.Sprintf("Укажите число от 1 до %d: /sentences 3", domain.MaxSummarySentences))
		return
	}

	n, err := ParseSentences(arg, 0)
	if err != nil {
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.updatePreferences(ctx, msg, func(p *domain.Preferences) { p.SummarySentences = n })
}

func (h *Handler) handleSettings(ctx context.Context, msg *tgbotapi.Message) {
	user, ok := h.user(ctx, msg)
	if !ok {
		return
	}
	h.bot.Send(msg.Chat.ID, FormatSettings(user.Preferences))
}

func (h *Handler) updatePreferences(ctx context.Context, msg *tgbotapi.Message, update func(*domain.Preferences)) {
	if _, ok := h.user(ctx, msg); !ok {
		return
	}

	prefs, err := h.bot.users.UpdatePreferences(ctx, msg.From.ID, update)
	if err != nil {
		h.bot.logger.Warn("failed to update preferences",
			zap.Error(err),
			zap.Int64("user_id", msg.From.ID),
		)
		h.bot.Send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.bot.Send(msg.Chat.ID, "Настройки сохранены.\n\n"+FormatSettings(prefs))
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return "Пустой запрос. Опишите, какие новости вас интересуют."
	case errors.Is(err, domain.ErrQueryTooLong):
		return "Запрос слишком длинный. Максимум 1000 символов."
	case errors.Is(err, domain.ErrNewsUnavailable):
		return "Не удалось получить новости. Попробуйте позже."
	case errors.Is(err, domain.ErrNoHeadlines):
		return "Заголовков не найдено."
	case errors.Is(err, domain.ErrInvalidSentenceCount):
		return fmt.Sprintf("Количество предложений должно быть от 1 до %d.", domain.MaxSummarySentences)
	case errors.Is(err, domain.ErrInvalidCountry):
		return "Неизвестный код страны."
	case errors.Is(err, domain.ErrInvalidCategory):
		return "Неизвестная категория. Доступны: business, entertainment, general, health, science, sports, technology."
	case errors.Is(err, domain.ErrInvalidLanguage):
		return "Неизвестный код языка."
	case errors.Is(err, llm.ErrRateLimit):
		return "Языковая модель перегружена. Попробуйте через минуту."
	case errors.Is(err, llm.ErrAuthFailed),
		errors.Is(err, llm.ErrRequestFailed),
		errors.Is(err, llm.ErrEmptyResponse):
		return "Не удалось сформировать ответ. Попробуйте позже."
	default:
		return genericErrorMessage
	}
}
