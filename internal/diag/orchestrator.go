// Package diag runs the one-shot startup diagnostics: bot identity, destination
// channel, market-data sample and a confirmation message, then idles.
package diag

import (
	"context"
	"fmt"
	"strings"

	"stats_bot/internal/bot"
	"stats_bot/internal/cmc"
	"stats_bot/internal/config"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	SampleLimit    = 5
	SampleCurrency = "USD"
)

// Messenger is the part of the bot API the checks need.
type Messenger interface {
	Identify(ctx context.Context) (bot.Identity, error)
	ResolveDestination(ctx context.Context, chatID string) (bot.Destination, error)
	Publish(ctx context.Context, chatID string, text string) error
}

// MarketData is the market-data API.
type MarketData interface {
	LatestListings(ctx context.Context, limit int, convert string) ([]cmc.Listing, error)
}

type Orchestrator struct {
	config    config.Config
	messenger Messenger
	market    MarketData
	log       zerolog.Logger
	heartbeat string
}

func New(cfg config.Config, m Messenger, md MarketData, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		config:    cfg,
		messenger: m,
		market:    md,
		log:       log,
		heartbeat: HeartbeatSchedule,
	}
}

// Run executes the checks once. The listener must already be up.
// Every call starts from a fresh report.
func (o *Orchestrator) Run(ctx context.Context) *Report {
	report := newReport()
	report.advance(StateListenerUp)

	report.record(o.checkEnvironment(), StateListenerUp)

	identity, res := o.verifyIdentity(ctx)
	if !res.OK() {
		report.record(res, StateAborted)
		o.log.Error().Msg("❌ Невозможно продолжить без подключения к боту")
		return report
	}
	report.record(res, StateIdentityOK)

	destination, res := o.resolveDestination(ctx)
	if !res.OK() {
		report.record(res, StateAborted)
		o.log.Error().Msg("❌ Невозможно продолжить без доступа к каналу")
		return report
	}
	report.record(res, StateDestinationOK)

	market := o.sampleMarketData(ctx)
	if market.OK() {
		report.record(market, StateMarketOK)
	} else {
		report.record(market, StateMarketWarn)
		o.log.Warn().Msg("⚠️ CoinMarketCap API не работает, но можно продолжить")
	}

	res = o.publishConfirmation(ctx, identity, destination, market.OK())
	if res.OK() {
		report.record(res, StateConfirmSent)
	} else {
		report.record(res, StateConfirmWarn)
	}

	o.log.Info().Msg("✅ ДИАГНОСТИКА ЗАВЕРШЕНА")
	o.log.Info().Msg("Бот продолжает работать, проверьте канал: там должно быть тестовое сообщение")
	report.advance(StateIdle)
	return report
}

// Start runs the checks and then idles in a separate goroutine.
// The channel gets an error only if something unexpected happens, e.g. a panic.
func (o *Orchestrator) Start(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- errors.Errorf("diagnostics panicked: %v", r)
			}
		}()

		if report := o.Run(ctx); report.State() != StateIdle {
			return
		}

		if err := Idle(ctx, o.log, o.heartbeat); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	return errCh
}

func (o *Orchestrator) checkEnvironment() Result {
	log := o.log.With().Str("stage", string(StageEnvironment)).Logger()
	log.Info().Msg("1️⃣ Проверка переменных окружения")

	vars := []struct {
		key string
		set bool
	}{
		{"TELEGRAM_BOT_TOKEN", o.config.TelegramToken != ""},
		{"CHANNEL_ID", o.config.ChannelID != ""},
		{"CMC_API_KEY", o.config.CMCAPIKey != ""},
	}

	var missing []string
	for _, v := range vars {
		if v.set {
			log.Info().Str("var", v.key).Msg("✅ Установлен")
		} else {
			missing = append(missing, v.key)
			log.Warn().Str("var", v.key).Msg("❌ НЕ УСТАНОВЛЕН")
		}
	}
	if o.config.ChannelID != "" {
		log.Info().Str("channel_id", o.config.ChannelID).Msg("Канал назначения")
	}

	// Пустые переменные проявятся ошибкой на своих этапах
	if len(missing) > 0 {
		return Result{Stage: StageEnvironment, Outcome: Continue, Message: "missing: " + strings.Join(missing, ", ")}
	}
	return Result{Stage: StageEnvironment, Outcome: Continue, Message: "all variables set"}
}

func (o *Orchestrator) verifyIdentity(ctx context.Context) (bot.Identity, Result) {
	log := o.log.With().Str("stage", string(StageIdentity)).Logger()
	log.Info().Msg("2️⃣ Тестирование Telegram Bot API")

	identity, err := o.messenger.Identify(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ Ошибка подключения к боту")
		return bot.Identity{}, Result{Stage: StageIdentity, Outcome: Abort, Message: err.Error(), Err: err}
	}

	log.Info().
		Str("username", identity.UserName).
		Int64("id", identity.ID).
		Str("first_name", identity.FirstName).
		Msgf("✅ Бот подключен: @%s", identity.UserName)

	return identity, Result{Stage: StageIdentity, Outcome: Continue, Message: "@" + identity.UserName}
}

func (o *Orchestrator) resolveDestination(ctx context.Context) (bot.Destination, Result) {
	log := o.log.With().Str("stage", string(StageDestination)).Logger()
	log.Info().Msg("3️⃣ Тестирование доступа к каналу")

	dest, err := o.messenger.ResolveDestination(ctx, o.config.ChannelID)
	if err != nil {
		log.Error().Err(err).Msg("❌ Ошибка доступа к каналу")
		log.Error().Msg("Проверьте: правильный ли ID канала, добавлен ли бот админом, есть ли у бота право публикации сообщений")
		return bot.Destination{}, Result{Stage: StageDestination, Outcome: Abort, Message: err.Error(), Err: err}
	}

	username := "Нет"
	if dest.UserName != "" {
		username = "@" + dest.UserName
	}
	log.Info().
		Str("title", dest.Title).
		Str("username", username).
		Int64("id", dest.ID).
		Str("type", dest.Type).
		Msgf("✅ Канал найден: %s", dest.Title)

	return dest, Result{Stage: StageDestination, Outcome: Continue, Message: dest.Title}
}

func (o *Orchestrator) sampleMarketData(ctx context.Context) Result {
	log := o.log.With().Str("stage", string(StageMarket)).Logger()
	log.Info().Msg("4️⃣ Тестирование CoinMarketCap API")

	listings, err := o.market.LatestListings(ctx, SampleLimit, SampleCurrency)
	if err != nil {
		var statusErr *cmc.StatusError
		if errors.As(err, &statusErr) {
			log.Warn().
				Int("status", statusErr.StatusCode).
				Str("body", statusErr.Body).
				Msgf("❌ CMC API ошибка: %d", statusErr.StatusCode)
		} else {
			log.Warn().Err(err).Msg("❌ Ошибка CMC API")
		}
		return Result{Stage: StageMarket, Outcome: Warn, Message: err.Error(), Err: err}
	}
	if len(listings) == 0 {
		log.Warn().Err(cmc.ErrEmptyListings).Msg("❌ Ошибка CMC API")
		return Result{Stage: StageMarket, Outcome: Warn, Message: cmc.ErrEmptyListings.Error(), Err: cmc.ErrEmptyListings}
	}

	first := listings[0]
	price, ok := first.Price(SampleCurrency)
	if !ok {
		err := fmt.Errorf("listing %s has no %s quote", first.Name, SampleCurrency)
		log.Warn().Err(err).Msg("❌ Ошибка CMC API")
		return Result{Stage: StageMarket, Outcome: Warn, Message: err.Error(), Err: err}
	}
	formatted := price.StringFixed(2)

	log.Info().
		Int("count", len(listings)).
		Str("first", first.Name).
		Str("price", formatted).
		Msgf("✅ CMC API работает: получено %d, первая %s ($%s)", len(listings), first.Name, formatted)

	return Result{Stage: StageMarket, Outcome: Continue, Message: fmt.Sprintf("%s ($%s)", first.Name, formatted)}
}

func (o *Orchestrator) publishConfirmation(ctx context.Context, identity bot.Identity, dest bot.Destination, marketOK bool) Result {
	log := o.log.With().Str("stage", string(StageConfirmation)).Logger()
	log.Info().Msg("5️⃣ Отправка тестового сообщения")

	if err := o.messenger.Publish(ctx, o.config.ChannelID, confirmationText(identity, dest, marketOK)); err != nil {
		log.Warn().Err(err).Msg("❌ Ошибка отправки сообщения")
		return Result{Stage: StageConfirmation, Outcome: Warn, Message: err.Error(), Err: err}
	}

	log.Info().Msg("✅ Тестовое сообщение отправлено в канал")
	return Result{Stage: StageConfirmation, Outcome: Continue, Message: "sent"}
}
