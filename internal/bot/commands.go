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
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "week":
		return b.handleWeek(msg)
	case "day":
		return b.handleDay(msg)
	case "add":
		return b.handleAdd(msg)
	case "edit":
		return b.handleEdit(msg)
	case "delete":
		return b.handleDelete(msg)
	case "hours":
		return b.handleHours(msg)
	case "copy":
		return b.handleCopy(msg)
	case "save":
		return b.handleSave(msg)
	case "load":
		return b.handleLoad(msg)
	case "templates":
		return b.handleTemplates(msg)
	case "deltemplate":
		return b.handleDeleteTemplate(msg)
	case "export":
		return b.handleExport(ctx, msg)
	case "import":
		return b.handleImport(msg)
	case "restore":
		return b.handleRestore(ctx, msg)
	case "pdf":
		return b.handlePDF(msg)
	case "colors":
		return b.handleColors(msg)
	case "reset":
		return b.handleReset(msg)
	case "agenda":
		return b.handleAgenda(ctx, msg)
	case "cancel":
		b.cancelDialog(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelWeek):
		b.cancelDialog(msg.From.ID)
		return true, b.handleWeek(msg)
	case strings.ToLower(menuLabelAdd):
		b.cancelDialog(msg.From.ID)
		return true, b.startAddConversation(msg, nil)
	case strings.ToLower(menuLabelSaved):
		b.cancelDialog(msg.From.ID)
		return true, b.handleTemplates(msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From, msg.Chat.ID); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep your weekly focus plan.</b>\n\n"+
			"Give each day a budget of focus hours, fill it with tasks, and I color tasks of the same goal alike.\n\n"+
			"Start with /hours weekdays 4, then /add. All commands are in /help.",
		escape(name),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /week: chart of the whole week\n" +
		"• /day &lt;day&gt;: tasks of one day with edit buttons\n" +
		"• /add [day]: add a task step by step\n" +
		"• /add &lt;day&gt; &lt;hours&gt; &lt;name&gt; [#color]: quick add, e.g. /add mon 2 Write thesis\n" +
		"• /edit &lt;day&gt; &lt;n&gt;: edit task number n\n" +
		"• /delete &lt;day&gt; &lt;n&gt;: delete task number n\n" +
		"• /hours &lt;days&gt; &lt;n&gt;: focus hours, days can be mon,wed or weekdays, weekend, all\n" +
		"• /copy &lt;from&gt; &lt;days&gt; [replace|append] [auto|keep|add] [1,2]: copy tasks to other days\n" +
		"• /save &lt;name&gt;, /load &lt;name&gt;, /templates, /deltemplate &lt;name&gt;\n" +
		"• /export, /import [merge|replace], /restore [merge|replace]: template files\n" +
		"• /pdf: the week as a PDF\n" +
		"• /colors: remembered goal colors\n" +
		"• /agenda on|off: morning agenda and weekly planning reminder\n" +
		"• /reset: clear the week\n" +
		"• /cancel: stop the current input"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleWeek(msg *tgbotapi.Message) error {
	var chart string
	b.svc.Sessions.With(msg.From.ID, func(s *planner.Session) error {
		chart = b.svc.Summary.WeekChart(s.Week)
		return nil
	})
	return b.sendWithReplyMarkup(msg.Chat.ID, chart, weekKeyboard())
}

func (b *Bot) handleDay(msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Give a day: /day monday")
	}
	day, err := parseDay(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	return b.sendDay(msg.Chat.ID, msg.From.ID, day)
}

func (b *Bot) sendDay(chatID, userID int64, day model.Day) error {
	var agenda string
	var tasks []model.Task
	b.svc.Sessions.With(userID, func(s *planner.Session) error {
		agenda = b.svc.Summary.DayAgenda(s.Week, day)
		tasks = s.Week.Tasks(day)
		return nil
	})
	if len(tasks) == 0 {
		return b.sendText(chatID, agenda)
	}
	return b.sendWithReplyMarkup(chatID, agenda, dayKeyboard(tasks))
}

func (b *Bot) handleAdd(msg *tgbotapi.Message) error {
	b.cancelDialog(msg.From.ID)
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.startAddConversation(msg, nil)
	}
	if len(strings.Fields(args)) == 1 {
		day, err := parseDay(args)
		if err != nil {
			return b.sendText(msg.Chat.ID, describeError(err))
		}
		return b.startAddConversation(msg, &day)
	}
	day, input, err := parseQuickTask(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	return b.finishAdd(msg.Chat.ID, msg.From.ID, day, input)
}

func (b *Bot) handleEdit(msg *tgbotapi.Message) error {
	day, index, err := parseDayPosition(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	b.cancelDialog(msg.From.ID)

	var task model.Task
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		var err error
		task, err = b.svc.Tasks.BeginEdit(s, day, index)
		return err
	})
	if !ok || err != nil {
		return err
	}
	return b.startEditConversation(msg.Chat.ID, msg.From.ID, day, task)
}

func (b *Bot) handleDelete(msg *tgbotapi.Message) error {
	day, index, err := parseDayPosition(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}

	var taskID string
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		tasks := s.Week.Tasks(day)
		if index >= len(tasks) {
			return fmt.Errorf("%w: %s has no task number %d", planner.ErrNotFound, day, index+1)
		}
		taskID = tasks[index].ID
		return nil
	})
	if !ok || err != nil {
		return err
	}
	return b.askDeleteConfirmation(msg.Chat.ID, msg.From.ID, taskID)
}

func (b *Bot) handleHours(msg *tgbotapi.Message) error {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		return b.sendText(msg.Chat.ID, "Give days and hours: /hours weekdays 4 or /hours sat 2")
	}
	days, err := parseDays(fields[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	hours, err := strconv.Atoi(fields[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, "Hours must be a whole number.")
	}

	var warnings []string
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		if err := b.svc.Tasks.SetHours(s, days, hours); err != nil {
			return err
		}
		for _, day := range days {
			if s.Week.Overbooked(day) {
				warnings = append(warnings, fmt.Sprintf("🔴 %s is over by %dh", day, -s.Week.Remaining(day)))
			}
		}
		return nil
	})
	if !ok || err != nil {
		return err
	}

	text := fmt.Sprintf("🎯 Focus hours set to %dh on %s.", hours, dayList(days))
	if len(warnings) > 0 {
		text += "\n" + strings.Join(warnings, "\n")
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleCopy(msg *tgbotapi.Message) error {
	input, err := parseCopyArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}

	var result planner.CopyResult
	var chart string
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		var err error
		result, err = b.svc.Tasks.Copy(s, input)
		if err != nil {
			return err
		}
		chart = b.svc.Summary.WeekChart(s.Week)
		return nil
	})
	if !ok || err != nil {
		return err
	}
	log.Printf("[info] copied user=%d from=%s to=%v mode=%s hours=%s", msg.From.ID, input.Source, result.Targets, input.Mode, input.Hours)
	text := fmt.Sprintf("📋 Copied %d tasks from %s to %s (%s, hours %s).\n\n%s",
		result.Copied, input.Source, dayList(result.Targets), input.Mode, input.Hours, chart)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleSave(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Give the template a name: /save Exam week")
	}

	var tpl planner.Template
	var replaced bool
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		_, replaced = s.Templates.Get(name)
		var err error
		tpl, err = s.SaveTemplate(name, b.now())
		return err
	})
	if !ok || err != nil {
		return err
	}
	verb := "Saved"
	if replaced {
		verb = "Replaced"
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("💾 %s template <b>%s</b>: %d tasks, %dh focus.", verb, escape(tpl.Name), tpl.TotalTasks, tpl.TotalHours))
}

func (b *Bot) handleLoad(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.handleTemplates(msg)
	}
	b.cancelDialog(msg.From.ID)

	var tpl planner.Template
	var chart string
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		var err error
		tpl, err = s.LoadTemplate(name)
		if err != nil {
			return err
		}
		chart = b.svc.Summary.WeekChart(s.Week)
		return nil
	})
	if !ok || err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📂 Loaded <b>%s</b>.\n\n%s", escape(tpl.Name), chart))
}

func (b *Bot) handleTemplates(msg *tgbotapi.Message) error {
	var text string
	b.svc.Sessions.With(msg.From.ID, func(s *planner.Session) error {
		var list []planner.Template
		for _, name := range s.Templates.Names() {
			if tpl, ok := s.Templates.Get(name); ok {
				list = append(list, tpl)
			}
		}
		text = b.svc.Summary.Templates(list)
		return nil
	})
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleDeleteTemplate(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Give the template name: /deltemplate Exam week")
	}
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		return s.Templates.Delete(name)
	})
	if !ok || err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Template <b>%s</b> deleted.", escape(name)))
}

func (b *Bot) handleExport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}

	var name string
	var data []byte
	var count int
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		count = s.Templates.Len()
		if count == 0 {
			return fmt.Errorf("%w: no templates to export, /save one first", planner.ErrValidation)
		}
		var err error
		name, data, err = b.svc.Exports.Export(ctx, user, s, b.now())
		return err
	})
	if !ok || err != nil {
		return err
	}
	log.Printf("[info] templates exported user=%d count=%d", user.ID, count)
	return b.sendDocument(msg.Chat.ID, name, data, fmt.Sprintf("%d templates. Send this file back with /import to restore them.", count))
}

func (b *Bot) handleImport(msg *tgbotapi.Message) error {
	mode, err := parseImportMode(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	b.cancelDialog(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageImportFile, importMode: mode})
	text := fmt.Sprintf("📎 Send the exported <code>.json</code> file. Templates will be imported in %s mode.", mode)
	return b.sendWithReplyMarkup(msg.Chat.ID, text, cancelKeyboard())
}

func (b *Bot) handleRestore(ctx context.Context, msg *tgbotapi.Message) error {
	mode, err := parseImportMode(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, describeError(err))
	}
	user, err := b.ensureUser(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}

	var archive *model.ExportArchive
	var imported int
	ok, err := b.withSession(msg.Chat.ID, msg.From.ID, func(s *planner.Session) error {
		var err error
		archive, imported, err = b.svc.Exports.Restore(ctx, user, s, mode)
		return err
	})
	if !ok || err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📥 Restored %d templates from <code>%s</code> (%s).",
		imported, escape(archive.FileName), mode))
}

func (b *Bot) handlePDF(msg *tgbotapi.Message) error {
	now := b.now()
	var data []byte
	err := b.svc.Sessions.With(msg.From.ID, func(s *planner.Session) error {
		var err error
		data, err = b.svc.PDF.Render(s.Week, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return b.sendDocument(msg.Chat.ID, fmt.Sprintf("weekly-schedule-%s.pdf", now.Format("20060102")), data, "📄 Your week")
}

func (b *Bot) handleColors(msg *tgbotapi.Message) error {
	var text string
	b.svc.Sessions.With(msg.From.ID, func(s *planner.Session) error {
		text = b.svc.Summary.Goals(s.Colors.Goals())
		return nil
	})
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReset(msg *tgbotapi.Message) error {
	b.clearConversation(msg.From.ID)
	b.setConfirmation(msg.From.ID, confirmationRequest{action: actionReset})
	return b.sendWithReplyMarkup(msg.Chat.ID, "Clear all tasks, focus hours and goal colors of this week?", confirmKeyboard())
}

func (b *Bot) handleAgenda(ctx context.Context, msg *tgbotapi.Message) error {
	var enabled bool
	switch strings.ToLower(strings.TrimSpace(msg.CommandArguments())) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return b.sendText(msg.Chat.ID, "Use /agenda on or /agenda off")
	}
	user, err := b.ensureUser(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	if err := b.users.SetAgenda(ctx, user.ID, enabled); err != nil {
		return err
	}
	if enabled {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("☀️ Morning agenda on, at %s.", b.agendaTime()))
	}
	return b.sendText(msg.Chat.ID, "🔕 Morning agenda off.")
}

func (b *Bot) agendaTime() string {
	if b.config == nil || b.config.AgendaTime == "" {
		return "the configured time"
	}
	return b.config.AgendaTime
}

func dayList(days []model.Day) string {
	names := make([]string, 0, len(days))
	for _, day := range days {
		names = append(names, day.Short())
	}
	return strings.Join(names, ", ")
}
