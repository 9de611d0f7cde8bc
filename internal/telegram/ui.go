package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"snapmath/internal/workflow"
)

const (
	cbSubmit   = "act_submit"
	cbEdit     = "act_edit"
	cbGenerate = "act_generate"
)

// The original action bar: EDIT toggles edit mode, SUBMIT solves or
// evaluates depending on the mode, GENERATE asks for a similar question.
func makeActionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("EDIT", cbEdit),
			tgbotapi.NewInlineKeyboardButtonData("SUBMIT", cbSubmit),
			tgbotapi.NewInlineKeyboardButtonData("GENERATE QUESTION", cbGenerate),
		),
	)
}

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	cid := cb.Message.Chat.ID
	s := r.session(cid)

	// Acknowledge the button press so the client stops its spinner.
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	switch cb.Data {
	case cbEdit:
		on := !s.Editing()
		s.SetEditing(on)
		if on {
			r.send(cid, "Edit mode on. Use /edit <n> <content> and /final <content>, then press EDIT again.")
		} else {
			// Leaving edit mode does not submit; SUBMIT is always explicit.
			r.send(cid, "Edit mode off.")
			r.sendWithActions(cid, renderSession(s))
		}
	case cbSubmit:
		var err error
		if s.Mode() == workflow.ModeAnswer {
			err = r.Orc.Evaluate(ctx, s)
		} else {
			err = r.Orc.Solve(ctx, s)
		}
		if err != nil {
			r.reportActionError(cid, err)
			return
		}
		r.sendWithActions(cid, renderSession(s))
	case cbGenerate:
		if err := r.Orc.GenerateSimilar(ctx, s); err != nil {
			r.reportActionError(cid, err)
			return
		}
		r.sendWithActions(cid, renderSession(s))
	}
}

func (r *Router) reportActionError(cid int64, err error) {
	switch err {
	case workflow.ErrBusy:
		r.send(cid, "Still working on the previous request, try again in a moment.")
	case workflow.ErrNoQuestion:
		r.send(cid, "Send a photo of a question first.")
	case workflow.ErrNoAnswer:
		r.send(cid, "Send a photo of an answer first.")
	case workflow.ErrNoBaseQuestion:
		r.send(cid, "Nothing to generate from yet, solve a question first.")
	}
	// Remote failures were already surfaced through the notifier.
}
