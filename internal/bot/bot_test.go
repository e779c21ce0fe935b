package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"weekly-planner/internal/config"
	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/service"
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.invalid/" + fileID, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if msg, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return msg.Text
		}
	}
	t.Fatal("no text message sent")
	return ""
}

func (f *fakeAPI) lastDocument(t *testing.T) tgbotapi.DocumentConfig {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if doc, ok := f.sent[i].(tgbotapi.DocumentConfig); ok {
			return doc
		}
	}
	t.Fatal("no document sent")
	return tgbotapi.DocumentConfig{}
}

type fakeUsers struct {
	users map[int64]*model.User
}

func (f *fakeUsers) UpsertFromTelegram(_ context.Context, telegramID, chatID int64, firstName, lastName, username string) (*model.User, error) {
	if user, ok := f.users[telegramID]; ok {
		user.ChatID = chatID
		return user, nil
	}
	user := &model.User{ID: uint(len(f.users) + 1), TelegramID: telegramID, ChatID: chatID, FirstName: firstName, AgendaEnabled: true}
	f.users[telegramID] = user
	return user, nil
}

func (f *fakeUsers) ListAgendaSubscribers(context.Context) ([]model.User, error) {
	var out []model.User
	for _, user := range f.users {
		if user.AgendaEnabled {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUsers) SetAgenda(_ context.Context, userID uint, enabled bool) error {
	for _, user := range f.users {
		if user.ID == userID {
			user.AgendaEnabled = enabled
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeArchive struct {
	items []model.ExportArchive
}

func (f *fakeArchive) Create(_ context.Context, a *model.ExportArchive) error {
	a.ID = uint(len(f.items) + 1)
	f.items = append(f.items, *a)
	return nil
}

func (f *fakeArchive) Latest(_ context.Context, userID uint) (*model.ExportArchive, error) {
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].UserID == userID {
			a := f.items[i]
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeArchive) Prune(context.Context, uint, int) error { return nil }

// monday is a Monday morning.
var monday = time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)

func newTestBot(t *testing.T) (*Bot, *fakeAPI, *fakeUsers) {
	t.Helper()
	api := &fakeAPI{}
	users := &fakeUsers{users: make(map[int64]*model.User)}
	cfg := config.Default()
	svc := Services{
		Sessions: service.NewSessionService(nil, 0),
		Tasks:    service.NewTaskService(),
		Summary:  service.NewSummaryService(),
		Exports:  service.NewExportService(&fakeArchive{}, 5),
		PDF:      service.NewPDFService(),
	}
	b := newBot(api, users, svc, &cfg)
	b.now = func() time.Time { return monday }
	return b, api, users
}

func command(userID int64, text string) tgbotapi.Update {
	cmd := strings.Fields(text)[0]
	msg := message(userID, text).Message
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	return tgbotapi.Update{Message: msg}
}

func message(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID, FirstName: "Ada"},
		Chat: &tgbotapi.Chat{ID: userID, Type: "private"},
		Text: text,
	}}
}

func send(b *Bot, updates ...tgbotapi.Update) {
	for _, update := range updates {
		b.handleUpdate(context.Background(), update)
	}
}

func tasksOf(t *testing.T, b *Bot, userID int64, day model.Day) []model.Task {
	t.Helper()
	var tasks []model.Task
	b.svc.Sessions.With(userID, func(s *planner.Session) error {
		tasks = s.Week.Tasks(day)
		return nil
	})
	return tasks
}

func TestQuickAddAndWeekChart(t *testing.T) {
	b, api, _ := newTestBot(t)

	send(b, command(1, "/add mon 2 Write thesis"))
	if got := api.lastText(t); !strings.Contains(got, "Added") || !strings.Contains(got, "Write thesis") {
		t.Fatalf("unexpected reply: %s", got)
	}

	send(b, command(1, "/add tue 1 Writing my Thesis!"))
	tue := tasksOf(t, b, 1, model.Tuesday)
	mon := tasksOf(t, b, 1, model.Monday)
	if len(tue) != 1 || tue[0].Color != mon[0].Color {
		t.Fatalf("expected same goal color, got %+v vs %+v", tue, mon)
	}

	send(b, command(1, "/week"))
	chart := api.lastText(t)
	if !strings.Contains(chart, "Weekly schedule") || !strings.Contains(chart, "Writing my Thesis!") {
		t.Errorf("unexpected chart: %s", chart)
	}
}

func TestAddDialog(t *testing.T) {
	b, api, _ := newTestBot(t)

	send(b, command(1, "/add"), message(1, "Monday"), message(1, "Gym"), message(1, "2"))
	if got := api.lastText(t); !strings.Contains(got, planner.DefaultPalette[0]) {
		t.Fatalf("expected suggested color in prompt, got %s", got)
	}
	send(b, message(1, suggestedLabel(planner.DefaultPalette[0])))

	tasks := tasksOf(t, b, 1, model.Monday)
	if len(tasks) != 1 || tasks[0].Name != "Gym" || tasks[0].Duration != 2 || tasks[0].Color != planner.DefaultPalette[0] {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
	if b.hasConversation(1) {
		t.Error("conversation should be finished")
	}
}

func TestAddDialogRejectsBadDuration(t *testing.T) {
	b, api, _ := newTestBot(t)

	send(b, command(1, "/add fri"), message(1, "Read"), message(1, "13"))
	if got := api.lastText(t); !strings.Contains(got, "whole number") {
		t.Fatalf("expected a retry prompt, got %s", got)
	}
	if state := b.getConversation(1); state == nil || state.stage != stageDuration {
		t.Fatal("expected to stay on the duration step")
	}

	send(b, message(1, btnCancelDialog))
	if b.hasConversation(1) {
		t.Error("expected the dialog to be cancelled")
	}
	if len(tasksOf(t, b, 1, model.Friday)) != 0 {
		t.Error("no task should be added")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	b, api, _ := newTestBot(t)
	send(b, command(1, "/add mon 2 Gym"), command(1, "/add mon 1 Read"))

	send(b, command(1, "/delete mon 1"))
	if got := api.lastText(t); !strings.Contains(got, "Delete") || !strings.Contains(got, "Gym") {
		t.Fatalf("expected a confirmation prompt, got %s", got)
	}
	if len(tasksOf(t, b, 1, model.Monday)) != 2 {
		t.Fatal("nothing should be deleted before confirming")
	}

	send(b, message(1, btnConfirm))
	tasks := tasksOf(t, b, 1, model.Monday)
	if len(tasks) != 1 || tasks[0].Name != "Read" {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}

	send(b, command(1, "/delete mon 5"))
	if got := api.lastText(t); !strings.HasPrefix(got, "🔎") {
		t.Errorf("expected not found reply, got %s", got)
	}
}

func TestHoursAndCopy(t *testing.T) {
	b, api, _ := newTestBot(t)
	send(b, command(1, "/add mon 3 Gym"), command(1, "/hours sun 6"), command(1, "/hours weekdays 2"))
	if got := api.lastText(t); !strings.Contains(got, "Monday is over by 1h") {
		t.Errorf("expected overbooking warning, got %s", got)
	}

	send(b, command(1, "/hours sun 0"))
	if got := api.lastText(t); !strings.Contains(got, "longer than the 2h scale") {
		t.Errorf("expected the scale to protect Gym, got %s", got)
	}

	send(b, command(1, "/hours all 25"))
	if got := api.lastText(t); !strings.HasPrefix(got, "⚠️ Focus hours must be between 0 and 24") {
		t.Errorf("unexpected reply: %s", got)
	}

	send(b, command(1, "/copy mon wed,tue,mon append"))
	if got := api.lastText(t); !strings.Contains(got, "Copied 1 tasks from Monday to Tue, Wed") {
		t.Fatalf("unexpected reply: %s", got)
	}
	var wed int
	b.svc.Sessions.With(1, func(s *planner.Session) error {
		wed = s.Week.AllocatedHours(model.Wednesday)
		return nil
	})
	if wed != 5 {
		t.Errorf("expected append to add copied hours, got %d", wed)
	}
}

func TestEditFromButton(t *testing.T) {
	b, api, _ := newTestBot(t)
	send(b, command(1, "/add thu 2 Piano"))
	id := tasksOf(t, b, 1, model.Thursday)[0].ID

	send(b, tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: 1},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1, Type: "private"}},
		Data:    cbEditPrefix + id,
	}})
	if api.requests != 1 {
		t.Errorf("expected the callback to be acknowledged")
	}
	send(b, message(1, btnSkip), message(1, "3"), message(1, "-"))

	tasks := tasksOf(t, b, 1, model.Thursday)
	if len(tasks) != 1 || tasks[0].ID != id || tasks[0].Name != "Piano" || tasks[0].Duration != 3 {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestTemplatesExportImport(t *testing.T) {
	b, api, _ := newTestBot(t)
	send(b, command(1, "/add mon 2 Gym"), command(1, "/save base"), command(1, "/export"))

	doc := api.lastDocument(t)
	file, ok := doc.File.(tgbotapi.FileBytes)
	if !ok || !strings.HasPrefix(file.Name, "weekly-templates-") {
		t.Fatalf("unexpected document: %+v", doc.File)
	}

	b.fetch = func(context.Context, string) ([]byte, error) { return file.Bytes, nil }
	upload := message(2, "")
	upload.Message.Document = &tgbotapi.Document{FileID: "f1", FileName: file.Name}
	send(b, command(2, "/import replace"), upload)
	if got := api.lastText(t); !strings.Contains(got, "Imported 1 templates (replace)") {
		t.Fatalf("unexpected reply: %s", got)
	}

	send(b, command(2, "/load base"))
	if tasks := tasksOf(t, b, 2, model.Monday); len(tasks) != 1 || tasks[0].Name != "Gym" {
		t.Fatalf("unexpected tasks after load: %+v", tasks)
	}

	b.fetch = func(context.Context, string) ([]byte, error) { return []byte("{"), nil }
	send(b, upload)
	if got := api.lastText(t); !strings.HasPrefix(got, "📄 Could not read the file") {
		t.Errorf("unexpected reply: %s", got)
	}
}

func TestRestoreWithoutExport(t *testing.T) {
	b, api, _ := newTestBot(t)
	send(b, command(1, "/restore"))
	if got := api.lastText(t); !strings.HasPrefix(got, "📭") {
		t.Errorf("unexpected reply: %s", got)
	}
}

func TestResetKeepsTemplates(t *testing.T) {
	b, _, _ := newTestBot(t)
	send(b, command(1, "/add mon 2 Gym"), command(1, "/save base"), command(1, "/reset"), message(1, btnConfirm))

	if len(tasksOf(t, b, 1, model.Monday)) != 0 {
		t.Error("expected an empty week")
	}
	b.svc.Sessions.With(1, func(s *planner.Session) error {
		if s.Templates.Len() != 1 || s.Colors.Len() != 0 {
			t.Errorf("unexpected state: %d templates, %d goals", s.Templates.Len(), s.Colors.Len())
		}
		return nil
	})
}

func TestOwnerOnly(t *testing.T) {
	b, api, _ := newTestBot(t)
	b.config.OwnerID = 99

	send(b, command(1, "/add mon 2 Gym"))
	if got := api.lastText(t); !strings.HasPrefix(got, "🔒") {
		t.Errorf("unexpected reply: %s", got)
	}
	if _, err := b.svc.Sessions.WithExisting(1, func(*planner.Session) error { return errors.New("exists") }); err != nil {
		t.Error("a session must not be created for a stranger")
	}
}

func TestDailyAgenda(t *testing.T) {
	b, api, users := newTestBot(t)
	send(b, command(1, "/start"), command(1, "/add mon 2 Gym"), command(2, "/start"), command(3, "/start"), command(3, "/add mon 1 Read"), command(3, "/agenda off"))
	if users.users[3].AgendaEnabled {
		t.Fatal("expected agenda to be disabled")
	}

	before := len(api.sent)
	if err := b.SendDailyAgenda(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := len(api.sent) - before; got != 1 {
		t.Fatalf("expected one agenda message, got %d", got)
	}
	msg := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	if msg.ChatID != 1 || !strings.Contains(msg.Text, "Good morning") || !strings.Contains(msg.Text, "Gym") {
		t.Errorf("unexpected agenda: %+v", msg)
	}
}

func TestPDFIsSent(t *testing.T) {
	b, api, _ := newTestBot(t)
	send(b, command(1, "/add mon 2 Gym"), command(1, "/pdf"))
	file := api.lastDocument(t).File.(tgbotapi.FileBytes)
	if file.Name != "weekly-schedule-20261012.pdf" || !strings.HasPrefix(string(file.Bytes), "%PDF") {
		t.Errorf("unexpected pdf %s", file.Name)
	}
}

func TestDescribeError(t *testing.T) {
	if got := describeError(fmt.Errorf("%w: hours missing", planner.ErrValidation)); got != "⚠️ Hours missing" {
		t.Errorf("unexpected text %s", got)
	}
	if got := describeError(fmt.Errorf("%w: bad <json>", planner.ErrFormat)); got != "📄 Could not read the file: bad &lt;json&gt;" {
		t.Errorf("unexpected text %s", got)
	}
	if got := describeError(service.ErrNoArchive); !strings.HasPrefix(got, "📭") {
		t.Errorf("unexpected text %s", got)
	}
}
