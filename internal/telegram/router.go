// Package telegram is the bot front end: photo messages are the capture
// source, inline buttons drive the workflow actions, and plain messages carry
// notifications and rendered results.
package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"snapmath/internal/workflow"
)

type Router struct {
	Bot *tgbotapi.BotAPI
	Orc *workflow.Orchestrator

	sessions sync.Map // chatID -> *workflow.Session
}

// session returns the chat's workflow session, creating one in question mode
// on first use.
func (r *Router) session(chatID int64) *workflow.Session {
	if v, ok := r.sessions.Load(chatID); ok {
		return v.(*workflow.Session)
	}
	s := workflow.NewSession(workflow.ModeQuestion, &chatNotifier{bot: r.Bot, chatID: chatID})
	v, _ := r.sessions.LoadOrStore(chatID, s)
	return v.(*workflow.Session)
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	cid := upd.Message.Chat.ID

	if upd.Message.IsCommand() {
		r.handleCommand(ctx, cid, *upd.Message)
		return
	}
	if len(upd.Message.Photo) > 0 {
		r.acceptPhoto(ctx, *upd.Message)
		return
	}
	if upd.Message.Text != "" {
		r.send(cid, "Send a photo of a question or an answer. Commands: /mode, /reset, /health")
	}
}

func (r *Router) handleCommand(ctx context.Context, cid int64, msg tgbotapi.Message) {
	s := r.session(cid)
	switch msg.Command() {
	case "start":
		r.send(cid, "Send a photo of a math question and I will solve it step by step.\n"+
			"Switch to answer checking with /mode answer. Commands: /mode, /edit, /final, /reset, /health")
	case "health":
		r.send(cid, "OK")
	case "mode":
		arg := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
		switch arg {
		case "question":
			r.setMode(cid, s, workflow.ModeQuestion)
		case "answer":
			r.setMode(cid, s, workflow.ModeAnswer)
		default:
			r.send(cid, "Current mode: "+string(s.Mode())+"\nUsage: /mode question | /mode answer")
		}
	case "reset":
		if err := s.Reset(); err != nil {
			r.send(cid, "Still working on the previous request, try again in a moment.")
			return
		}
		r.send(cid, "Session cleared. Send a new photo.")
	case "edit":
		r.applyStepEdit(cid, s, msg.CommandArguments())
	case "final":
		r.applyFinalEdit(cid, s, msg.CommandArguments())
	default:
		r.send(cid, "Unknown command")
	}
}

func (r *Router) setMode(cid int64, s *workflow.Session, m workflow.Mode) {
	if err := s.SetMode(m); err != nil {
		r.send(cid, "Still working on the previous request, try again in a moment.")
		return
	}
	r.send(cid, "Mode set to "+string(m)+". Send a photo.")
}

// applyStepEdit handles "/edit <n> <latex>" with 1-based step numbers.
func (r *Router) applyStepEdit(cid int64, s *workflow.Session, args string) {
	if !s.Editing() {
		r.send(cid, "Press EDIT first.")
		return
	}
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(parts) != 2 {
		r.send(cid, "Usage: /edit <step number> <new content>")
		return
	}
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		r.send(cid, "Usage: /edit <step number> <new content>")
		return
	}
	if err := s.EditStep(n-1, parts[1]); err != nil {
		r.send(cid, "No such step.")
		return
	}
	r.send(cid, "Step "+parts[0]+" updated.")
}

func (r *Router) applyFinalEdit(cid int64, s *workflow.Session, args string) {
	if !s.Editing() {
		r.send(cid, "Press EDIT first.")
		return
	}
	text := strings.TrimSpace(args)
	if text == "" {
		r.send(cid, "Usage: /final <new final answer>")
		return
	}
	if err := s.EditFinalAnswer(text); err != nil {
		r.send(cid, "Nothing to edit yet, send a photo first.")
		return
	}
	r.send(cid, "Final answer updated.")
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) sendWithActions(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = makeActionKeyboard()
	_, _ = r.Bot.Send(msg)
}

// chatNotifier routes workflow failure notifications to the chat.
type chatNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func (n *chatNotifier) Notify(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	_, _ = n.bot.Send(msg)
}
