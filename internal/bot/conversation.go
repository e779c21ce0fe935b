package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/service"
)

type conversationStage int

const (
	stageDay conversationStage = iota
	stageName
	stageDuration
	stageColor
	stageEditName
	stageEditDuration
	stageEditColor
	stageImportFile
)

type conversationState struct {
	stage      conversationStage
	day        model.Day
	input      service.TaskInput
	importMode service.ImportMode
}

type confirmationAction int

const (
	actionDelete confirmationAction = iota
	actionReset
)

type confirmationRequest struct {
	taskID string
	action confirmationAction
}

func (b *Bot) startAddConversation(msg *tgbotapi.Message, day *model.Day) error {
	log.Printf("[info] start add conversation user=%d", msg.From.ID)
	if day == nil {
		b.setConversation(msg.From.ID, &conversationState{stage: stageDay})
		return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> which day?", daysKeyboard())
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stageName, day: *day})
	return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("🆕 New task on <b>%s</b>.\nWhat is it called?", *day), cancelKeyboard())
}

func (b *Bot) startEditConversation(chatID, userID int64, day model.Day, task model.Task) error {
	log.Printf("[info] start edit conversation user=%d task=%s", userID, task.ID)
	b.clearConfirmation(userID)
	b.setConversation(userID, &conversationState{stage: stageEditName, day: day})
	text := fmt.Sprintf("✏️ Editing <b>%s</b> on %s (%dh, <code>%s</code>).\nSend a new name or skip to keep it.",
		escape(task.Name), day, task.Duration, task.Color)
	return b.sendWithReplyMarkup(chatID, text, skipKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageDay:
		day, err := model.ParseDay(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Pick a day from the keyboard, e.g. <code>Monday</code>.", daysKeyboard())
		}
		state.day = day
		state.stage = stageName
		return b.sendWithReplyMarkup(msg.Chat.ID, "<b>Step 2:</b> what is the task called?", cancelKeyboard())
	case stageName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The name cannot be empty.", cancelKeyboard())
		}
		state.input.Name = text
		state.stage = stageDuration
		return b.askDuration(msg.Chat.ID, msg.From.ID, "<b>Step 3:</b> how many hours?", false)
	case stageDuration:
		hours, ok := b.readDuration(msg.From.ID, text)
		if !ok {
			return b.askDuration(msg.Chat.ID, msg.From.ID, "Send a whole number of hours.", false)
		}
		state.input.Duration = hours
		state.stage = stageColor
		return b.askColor(msg.Chat.ID, msg.From.ID, state.input.Name)
	case stageColor:
		if !isSkipInput(text) && !isSuggestedInput(text) {
			color, err := planner.ParseColor(text)
			if err != nil {
				return b.sendText(msg.Chat.ID, "Send a color like <code>#4682b4</code>, or press the suggested one.")
			}
			state.input.Color = color
		}
		b.clearConversation(msg.From.ID)
		return b.finishAdd(msg.Chat.ID, msg.From.ID, state.day, state.input)
	case stageEditName:
		if !isSkipInput(text) {
			state.input.Name = text
		}
		state.stage = stageEditDuration
		return b.askDuration(msg.Chat.ID, msg.From.ID, "How many hours? Skip to keep the duration.", true)
	case stageEditDuration:
		if !isSkipInput(text) {
			hours, ok := b.readDuration(msg.From.ID, text)
			if !ok {
				return b.askDuration(msg.Chat.ID, msg.From.ID, "Send a whole number of hours, or skip.", true)
			}
			state.input.Duration = hours
		}
		state.stage = stageEditColor
		return b.sendWithReplyMarkup(msg.Chat.ID, "Send a new color like <code>#2e8b57</code>, or skip to keep it.", skipKeyboard())
	case stageEditColor:
		if !isSkipInput(text) {
			color, err := planner.ParseColor(text)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Send a color like <code>#2e8b57</code>, or skip.", skipKeyboard())
			}
			state.input.Color = color
		}
		b.clearConversation(msg.From.ID)
		return b.finishEdit(msg.Chat.ID, msg.From.ID, state.input)
	case stageImportFile:
		return b.sendWithReplyMarkup(msg.Chat.ID, "📎 Send the exported <code>.json</code> file as a document.", cancelKeyboard())
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Try again with /add.")
	}
}

func (b *Bot) askDuration(chatID, userID int64, prompt string, skippable bool) error {
	scale := planner.DefaultScale
	b.svc.Sessions.With(userID, func(s *planner.Session) error {
		scale = s.Week.MaxScale()
		return nil
	})
	text := fmt.Sprintf("%s (1–%d)", prompt, scale)
	if skippable {
		return b.sendWithReplyMarkup(chatID, text, skipKeyboard())
	}
	return b.sendWithReplyMarkup(chatID, text, durationKeyboard(scale))
}

// readDuration accepts hours within the current scale.
func (b *Bot) readDuration(userID int64, text string) (int, bool) {
	hours, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(text), "h"))
	if err != nil || hours < 1 {
		return 0, false
	}
	scale := planner.DefaultScale
	b.svc.Sessions.With(userID, func(s *planner.Session) error {
		scale = s.Week.MaxScale()
		return nil
	})
	return hours, hours <= scale
}

func (b *Bot) askColor(chatID, userID int64, name string) error {
	var suggested string
	b.svc.Sessions.With(userID, func(s *planner.Session) error {
		suggested = b.svc.Tasks.SuggestColor(s, name)
		return nil
	})
	text := fmt.Sprintf("<b>Step 4:</b> color. Suggested for this goal: %s <code>%s</code>\nPress it or send your own hex color.",
		service.Swatch(suggested), suggested)
	return b.sendWithReplyMarkup(chatID, text, colorKeyboard(suggested))
}

func (b *Bot) finishAdd(chatID, userID int64, day model.Day, input service.TaskInput) error {
	var task model.Task
	var agenda string
	ok, err := b.withSession(chatID, userID, func(s *planner.Session) error {
		var err error
		task, err = b.svc.Tasks.AddTask(s, day, input)
		if err != nil {
			return err
		}
		agenda = b.svc.Summary.DayAgenda(s.Week, day)
		return nil
	})
	if !ok || err != nil {
		return err
	}
	log.Printf("[info] task added user=%d day=%s id=%s", userID, day, task.ID)
	return b.sendText(chatID, fmt.Sprintf("✅ Added %s <b>%s</b> (%dh)\n\n%s", service.Swatch(task.Color), escape(task.Name), task.Duration, agenda))
}

func (b *Bot) finishEdit(chatID, userID int64, input service.TaskInput) error {
	var task model.Task
	var agenda string
	ok, err := b.withSession(chatID, userID, func(s *planner.Session) error {
		var err error
		task, err = b.svc.Tasks.SubmitEdit(s, input)
		if err != nil {
			return err
		}
		day, _, _, _ := s.Week.Find(task.ID)
		agenda = b.svc.Summary.DayAgenda(s.Week, day)
		return nil
	})
	if !ok || err != nil {
		return err
	}
	log.Printf("[info] task updated user=%d id=%s", userID, task.ID)
	return b.sendText(chatID, fmt.Sprintf("✅ Updated %s <b>%s</b> (%dh)\n\n%s", service.Swatch(task.Color), escape(task.Name), task.Duration, agenda))
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) error {
	mode := service.ImportMerge
	if state := b.getConversation(msg.From.ID); state != nil && state.stage == stageImportFile {
		mode = state.importMode
	} else if caption := strings.TrimSpace(msg.Caption); caption != "" {
		parsed, err := parseImportMode(strings.TrimSpace(strings.TrimPrefix(caption, "/import")))
		if err != nil {
			return b.sendText(msg.Chat.ID, describeError(err))
		}
		mode = parsed
	}
	b.clearConversation(msg.From.ID)

	if msg.Document.FileSize > maxImportSize {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("⚠️ The file is larger than %d KB.", maxImportSize>>10))
	}
	url, err := b.api.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		return fmt.Errorf("get file url: %w", err)
	}
	data, err := b.fetch(ctx, url)
	if err != nil {
		if isUserError(err) {
			return b.sendText(msg.Chat.ID, describeError(err))
		}
		return err
	}

	var imported, total int
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		var err error
		imported, err = b.svc.Exports.Import(s, data, mode)
		total = s.Templates.Len()
		return err
	})
	if !ok || err != nil {
		return err
	}
	log.Printf("[info] templates imported user=%d count=%d mode=%s", msg.From.ID, imported, mode)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📥 Imported %d templates (%s). You now have %d. See /templates.", imported, mode, total))
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		if req.action == actionReset {
			return b.resetSchedule(msg.Chat.ID, msg.From.ID)
		}
		return b.deleteTask(msg.Chat.ID, msg.From.ID, req.taskID)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "↩️ Nothing changed.")
	default:
		prompt := "Confirm or cancel deleting the task."
		if req.action == actionReset {
			prompt = "Confirm or cancel clearing the week."
		}
		return b.sendWithReplyMarkup(msg.Chat.ID, prompt, confirmKeyboard())
	}
}

func (b *Bot) askDeleteConfirmation(chatID, userID int64, taskID string) error {
	var text string
	ok, err := b.withSession(chatID, userID, func(s *planner.Session) error {
		day, _, task, found := s.Week.Find(taskID)
		if !found {
			return fmt.Errorf("%w: task no longer exists", planner.ErrNotFound)
		}
		text = fmt.Sprintf("Delete %s <b>%s</b> (%dh) from %s?", service.Swatch(task.Color), escape(task.Name), task.Duration, day)
		return nil
	})
	if !ok || err != nil {
		return err
	}
	b.clearConversation(userID)
	b.setConfirmation(userID, confirmationRequest{taskID: taskID, action: actionDelete})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) deleteTask(chatID, userID int64, taskID string) error {
	var task model.Task
	var agenda string
	ok, err := b.withSession(chatID, userID, func(s *planner.Session) error {
		day, deleted, err := b.svc.Tasks.DeleteTaskByID(s, taskID)
		if err != nil {
			return err
		}
		task = deleted
		agenda = b.svc.Summary.DayAgenda(s.Week, day)
		return nil
	})
	if !ok || err != nil {
		return err
	}
	log.Printf("[info] task deleted user=%d id=%s", userID, taskID)
	return b.sendText(chatID, fmt.Sprintf("🗑 Deleted <b>%s</b>\n\n%s", escape(task.Name), agenda))
}

func (b *Bot) resetSchedule(chatID, userID int64) error {
	b.svc.Sessions.With(userID, func(s *planner.Session) error {
		s.Reset()
		return nil
	})
	log.Printf("[info] schedule reset user=%d", userID)
	return b.sendText(chatID, "🧹 The week is empty again. Templates were kept.")
}
