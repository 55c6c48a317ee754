package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/romanzzaa/mod-auth/internal/domain"
	"github.com/romanzzaa/mod-auth/internal/render"
)

// Текстовые константы для кнопок (чтобы не опечататься)
const (
	BtnGenerate = "🔑 Сгенерировать ключ"
	BtnList     = "📋 Список ключей"
	BtnExport   = "📤 Экспорт keys.json"
)

const (
	callbackGenPrefix = "gen:"
	exportFileName    = "keys.json"
)

// API - часть tgbotapi.BotAPI, которой пользуется хендлер
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type KeyService interface {
	Generate(ctx context.Context, minutes int) (domain.KeyRecord, error)
	Views(ctx context.Context) ([]domain.KeyView, error)
	Export(ctx context.Context, w io.Writer) error
	FetchRemote(ctx context.Context) domain.KeysData
	Now() time.Time
	Location() *time.Location
}

type Handler struct {
	bot     API
	keys    KeyService
	adminID int64
	logger  *slog.Logger
}

func NewHandler(bot API, keys KeyService, adminID int64, logger *slog.Logger) *Handler {
	return &Handler{
		bot:     bot,
		keys:    keys,
		adminID: adminID,
		logger:  logger.With("component", "bot"),
	}
}

func (h *Handler) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			go h.HandleUpdate(ctx, update)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		h.handleMessage(ctx, update.Message)
	} else if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
	}
}

func (h *Handler) isAdmin(user *tgbotapi.User) bool {
	return user != nil && h.adminID != 0 && user.ID == h.adminID
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !h.isAdmin(msg.From) {
		h.logger.Warn("Ignoring message from non-admin", slog.Int64("chat_id", msg.Chat.ID))
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.showMainMenu(msg.Chat.ID)
		case "gen":
			h.cmdGen(ctx, msg)
		case "keys":
			h.cmdList(ctx, msg.Chat.ID)
		case "export":
			h.cmdExport(ctx, msg.Chat.ID)
		case "remote":
			h.cmdRemote(ctx, msg.Chat.ID)
		default:
			h.send(msg.Chat.ID, "Неизвестная команда.")
		}
		return
	}

	// Обработка кнопок меню (текстовые сообщения)
	switch msg.Text {
	case BtnGenerate:
		h.askForDuration(msg.Chat.ID)
	case BtnList:
		h.cmdList(ctx, msg.Chat.ID)
	case BtnExport:
		h.cmdExport(ctx, msg.Chat.ID)
	default:
		h.send(msg.Chat.ID, "Используйте меню для навигации.")
	}
}

// --- Commands ---

func (h *Handler) cmdGen(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.askForDuration(msg.Chat.ID)
		return
	}

	minutes, err := strconv.Atoi(arg)
	if err != nil {
		h.send(msg.Chat.ID, "Usage: /gen <минуты>")
		return
	}
	h.generate(ctx, msg.Chat.ID, minutes)
}

func (h *Handler) generate(ctx context.Context, chatID int64, minutes int) {
	rec, err := h.keys.Generate(ctx, minutes)
	if errors.Is(err, domain.ErrInvalidDuration) {
		h.send(chatID, "❌ Срок должен быть положительным числом минут.")
		return
	}
	if err != nil {
		h.logger.Error("Failed to generate key", slog.String("error", err.Error()))
		h.send(chatID, "⚠️ Ошибка генерации ключа.")
		return
	}

	view := domain.NewKeyView(rec, h.keys.Now(), h.keys.Location())
	h.sendMarkdown(chatID, render.Generated(rec, view))
}

func (h *Handler) cmdList(ctx context.Context, chatID int64) {
	views, err := h.keys.Views(ctx)
	if err != nil {
		h.logger.Error("Failed to load keys", slog.String("error", err.Error()))
		h.send(chatID, "⚠️ Ошибка получения списка ключей.")
		return
	}
	h.sendMarkdown(chatID, render.Text(views))
}

func (h *Handler) cmdExport(ctx context.Context, chatID int64) {
	var buf bytes.Buffer
	if err := h.keys.Export(ctx, &buf); err != nil {
		h.logger.Error("Failed to export keys", slog.String("error", err.Error()))
		h.send(chatID, "⚠️ Ошибка экспорта.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: exportFileName, Bytes: buf.Bytes()})
	doc.Caption = "Файл keys.json готов! Загрузите его в ваш GitHub репозиторий."
	if _, err := h.bot.Send(doc); err != nil {
		h.logger.Error("Failed to send export", slog.String("error", err.Error()))
	}
}

func (h *Handler) cmdRemote(ctx context.Context, chatID int64) {
	data := h.keys.FetchRemote(ctx)
	h.send(chatID, fmt.Sprintf("🌐 В опубликованном keys.json ключей: %d", len(data.Keys)))
}

// --- Callbacks ---

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		h.logger.Warn("Failed to answer callback", slog.String("error", err.Error()))
	}
	if !h.isAdmin(cb.From) || cb.Message == nil {
		return
	}

	raw, ok := strings.CutPrefix(cb.Data, callbackGenPrefix)
	if !ok {
		return
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil {
		return
	}
	h.generate(ctx, cb.Message.Chat.ID, minutes)
}

// --- UI Helpers ---

func (h *Handler) askForDuration(chatID int64) {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(domain.Durations))
	for _, d := range domain.Durations {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			domain.DurationText(d),
			callbackGenPrefix+strconv.Itoa(d),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "Выберите срок действия:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	h.bot.Send(msg)
}

func (h *Handler) showMainMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Меню:")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnGenerate)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnList),
			tgbotapi.NewKeyboardButton(BtnExport),
		),
	)
	h.bot.Send(msg)
}

func (h *Handler) send(chatID int64, text string) {
	h.deliver(tgbotapi.NewMessage(chatID, text))
}

// sendMarkdown - для текста из render, значения в нем уже экранированы
func (h *Handler) sendMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	h.deliver(msg)
}

func (h *Handler) deliver(msg tgbotapi.MessageConfig) {
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.Warn("Failed to send message",
			slog.Int64("chat_id", msg.ChatID),
			slog.String("error", err.Error()))
	}
}
