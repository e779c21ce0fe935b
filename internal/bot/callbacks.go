package bot

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"weekly-planner/internal/model"
	"weekly-planner/internal/planner"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}
	if !b.allowed(cb.From.ID) {
		return nil
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbEditPrefix):
		id := strings.TrimPrefix(data, cbEditPrefix)
		log.Printf("[info] callback edit user=%d task=%s", cb.From.ID, id)
		b.cancelDialog(cb.From.ID)
		var day model.Day
		var task model.Task
		ok, err := b.withSession(chatID, cb.From.ID, func(s *planner.Session) error {
			var err error
			day, task, err = b.svc.Tasks.BeginEditByID(s, id)
			return err
		})
		if !ok || err != nil {
			return err
		}
		return b.startEditConversation(chatID, cb.From.ID, day, task)
	case strings.HasPrefix(data, cbDeletePrefix):
		id := strings.TrimPrefix(data, cbDeletePrefix)
		log.Printf("[info] callback delete request user=%d task=%s", cb.From.ID, id)
		return b.askDeleteConfirmation(chatID, cb.From.ID, id)
	case strings.HasPrefix(data, cbDayPrefix):
		day, err := model.ParseDay(strings.TrimPrefix(data, cbDayPrefix))
		if err != nil {
			return nil
		}
		return b.sendDay(chatID, cb.From.ID, day)
	default:
		return nil
	}
}
