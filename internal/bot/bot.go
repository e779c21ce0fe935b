package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"weekly-planner/internal/config"
	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/service"
)

// maxImportSize bounds uploaded template documents.
const maxImportSize = 1 << 20

// telegramAPI is the part of tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type userStore interface {
	UpsertFromTelegram(ctx context.Context, telegramID, chatID int64, firstName, lastName, username string) (*model.User, error)
	ListAgendaSubscribers(ctx context.Context) ([]model.User, error)
	SetAgenda(ctx context.Context, userID uint, enabled bool) error
}

// Services bundles what the bot routes user actions to.
type Services struct {
	Sessions *service.SessionService
	Tasks    *service.TaskService
	Summary  *service.SummaryService
	Exports  *service.ExportService
	PDF      *service.PDFService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           telegramAPI
	users         userStore
	svc           Services
	config        *config.Config
	fetch         func(ctx context.Context, url string) ([]byte, error)
	now           func() time.Time
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	mu            sync.Mutex
}

func New(token string, users userStore, svc Services, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return newBot(api, users, svc, cfg), nil
}

func newBot(api telegramAPI, users userStore, svc Services, cfg *config.Config) *Bot {
	return &Bot{
		api:           api,
		users:         users,
		svc:           svc,
		config:        cfg,
		fetch:         download,
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}

	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("handle callback: %v", err)
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !b.allowed(msg.From.ID) {
		log.Printf("[info] ignored message from %d", msg.From.ID)
		return b.sendText(msg.Chat.ID, "🔒 This planner is private.")
	}

	if msg.Document != nil {
		return b.handleDocument(ctx, msg)
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.cancelDialog(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Try /add to plan a task or /help for all commands.")
}

// location is the zone the scheduler runs in, so "today" matches the cron clock.
func (b *Bot) location() *time.Location {
	if b.config != nil {
		if loc, err := b.config.Location(); err == nil {
			return loc
		}
	}
	return time.Local
}

func (b *Bot) allowed(userID int64) bool {
	return b.config == nil || b.config.OwnerID == 0 || b.config.OwnerID == userID
}

// withSession runs fn against the user's planner and turns planner errors into replies.
// It returns handled=false when fn failed with a user-facing error that was already reported.
func (b *Bot) withSession(chatID, userID int64, fn func(*planner.Session) error) (bool, error) {
	err := b.svc.Sessions.With(userID, fn)
	if err == nil {
		return true, nil
	}
	if isUserError(err) {
		return false, b.sendText(chatID, describeError(err))
	}
	return false, err
}

// SendDailyAgenda sends today's tasks to every subscribed user with a plan for today.
func (b *Bot) SendDailyAgenda(ctx context.Context) error {
	users, err := b.users.ListAgendaSubscribers(ctx)
	if err != nil {
		return err
	}
	today := service.Today(b.now().In(b.location()))
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		var text string
		_, err := b.svc.Sessions.WithExisting(user.TelegramID, func(s *planner.Session) error {
			if len(s.Week.Tasks(today)) > 0 {
				text = "☀️ Good morning! Here is your plan.\n\n" + b.svc.Summary.DayAgenda(s.Week, today)
			}
			return nil
		})
		if err != nil || text == "" {
			continue
		}
		if err := b.sendText(user.ChatID, text); err != nil {
			log.Printf("send agenda to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

// SendPlanningNudge reminds subscribers to plan the coming week.
func (b *Bot) SendPlanningNudge(ctx context.Context) error {
	users, err := b.users.ListAgendaSubscribers(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text := "🗓 Time to plan the coming week. Set focus hours with /hours, or /load a template."
		b.svc.Sessions.WithExisting(user.TelegramID, func(s *planner.Session) error {
			if names := s.Templates.Names(); len(names) > 0 {
				text += "\nTemplates: " + escape(strings.Join(names, ", "))
			}
			return nil
		})
		if err := b.sendText(user.ChatID, text); err != nil {
			log.Printf("send nudge to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User, chatID int64) (*model.User, error) {
	return b.users.UpsertFromTelegram(ctx, from.ID, chatID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := b.api.Send(doc)
	return err
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// cancelDialog drops any dialog or pending confirmation, and the edit target with it.
func (b *Bot) cancelDialog(userID int64) {
	b.clearConversation(userID)
	b.clearConfirmation(userID)
	b.svc.Sessions.With(userID, func(s *planner.Session) error {
		s.Week.CancelEdit()
		return nil
	})
}

func isUserError(err error) bool {
	return errors.Is(err, planner.ErrValidation) || errors.Is(err, planner.ErrNotFound) ||
		errors.Is(err, planner.ErrFormat) || errors.Is(err, service.ErrNoArchive)
}

// describeError renders a planner error as a reply, without its kind prefix.
func describeError(err error) string {
	text := err.Error()
	for _, kind := range []error{planner.ErrValidation, planner.ErrNotFound, planner.ErrFormat} {
		text = strings.TrimPrefix(text, kind.Error()+": ")
	}
	text = escape(text)
	switch {
	case errors.Is(err, planner.ErrFormat):
		return "📄 Could not read the file: " + text
	case errors.Is(err, planner.ErrNotFound):
		return "🔎 " + capitalize(text)
	case errors.Is(err, service.ErrNoArchive):
		return "📭 No exported templates yet. Use /export first."
	default:
		return "⚠️ " + capitalize(text)
	}
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(data) > maxImportSize {
		return nil, fmt.Errorf("%w: file is larger than %d KB", planner.ErrValidation, maxImportSize>>10)
	}
	return data, nil
}

func escape(s string) string {
	return html.EscapeString(s)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
