package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/domain"
	"github.com/kitbuilder587/newsquery/internal/metrics"
	"github.com/kitbuilder587/newsquery/internal/news"
	"github.com/kitbuilder587/newsquery/internal/service"
)

const maxMessageLength = 4096 // лимит телеграма

type BotConfig struct {
	Token string
	Debug bool
	// DefaultSentences is used by /brief when neither the argument nor the
	// user's settings give a count.
	DefaultSentences int
}

type Services struct {
	Users    service.UserService
	Queries  service.QueryGenerator
	Briefing service.Briefing
	News     news.Client
}

type Bot struct {
	api      *tgbotapi.BotAPI
	users    service.UserService
	queries  service.QueryGenerator
	briefing service.Briefing
	news     news.Client
	logger   *zap.Logger
	metrics  *metrics.Metrics
	handler  *Handler

	defaultSentences int

	// send replaces the Telegram API in tests.
	send func(chatID int64, text string) error
	wg   sync.WaitGroup
}

func New(cfg BotConfig, svc Services, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	bot := newBot(api, cfg, svc, logger, m)

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return bot, nil
}

func newBot(api *tgbotapi.BotAPI, cfg BotConfig, svc Services, logger *zap.Logger, m *metrics.Metrics) *Bot {
	if cfg.DefaultSentences <= 0 {
		cfg.DefaultSentences = domain.DefaultSummarySentences
	}

	bot := &Bot{
		api:              api,
		users:            svc.Users,
		queries:          svc.Queries,
		briefing:         svc.Briefing,
		news:             svc.News,
		logger:           logger,
		metrics:          m,
		defaultSentences: cfg.DefaultSentences,
	}
	bot.handler = NewHandler(bot)
	return bot
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.logger.Info("all handlers finished")
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	startTime := time.Now()
	operation := operationName(update.Message)

	if b.metrics != nil {
		b.metrics.IncRequestsInFlight()
		defer b.metrics.DecRequestsInFlight()
	}

	defer func() {
		if r := recover(); r != nil {
			chatID := int64(0)
			if update.Message != nil && update.Message.Chat != nil {
				chatID = update.Message.Chat.ID
			}
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", chatID),
			)
			if b.metrics != nil {
				b.metrics.RecordRequest("telegram", operation, "panic", time.Since(startTime))
			}
		}
	}()

	b.handler.HandleMessage(ctx, update.Message)

	if b.metrics != nil {
		b.metrics.RecordRequest("telegram", operation, "processed", time.Since(startTime))
	}
}

// operationName keeps metric label cardinality bounded.
func operationName(msg *tgbotapi.Message) string {
	if msg == nil || !msg.IsCommand() {
		return "query"
	}
	switch cmd := msg.Command(); cmd {
	case "start", "help", "query", "headlines", "brief", "search", "sources",
		"country", "category", "language", "sentences", "settings":
		return cmd
	default:
		return "unknown"
	}
}

func (b *Bot) Send(chatID int64, text string) error {
	if b.send != nil {
		return b.send(chatID, text)
	}
	if b.api == nil {
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

// SendLong splits text into Telegram-sized chunks.
func (b *Bot) SendLong(chatID int64, text string) {
	for _, part := range SplitMessage(text, maxMessageLength) {
		if err := b.Send(chatID, part); err != nil {
			b.logger.Error("failed to send message", zap.Error(err))
		}
	}
}

func (b *Bot) SendTyping(chatID int64) {
	if b.api == nil {
		return
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	b.api.Send(action)
}
