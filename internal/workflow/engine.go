package workflow

import (
	"context"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"insurance-bot/internal/extract"
	"insurance-bot/internal/session"
)

// Extractor produces a rendered document summary for an image.
type Extractor interface {
	Extract(ctx context.Context, image []byte, class extract.DocumentClass) (string, error)
}

// Advisor runs the AI side-channel: one question in, one reply out,
// history handled internally.
type Advisor interface {
	Ask(ctx context.Context, userID int64, message string) (string, error)
}

// Engine is the intake state machine. Handle mutates exactly one user's
// session per call and emits replies through the outbox; external-service
// failures never advance state, so the user can always retry the
// triggering event. Events for a single user must arrive sequentially
// (the Dispatcher guarantees this).
type Engine struct {
	store     *session.Store
	extractor Extractor
	advisor   Advisor
	outbox    Outbox
	price     string
}

// NewEngine wires the state machine to its collaborators.
func NewEngine(store *session.Store, extractor Extractor, advisor Advisor, outbox Outbox, price string) *Engine {
	return &Engine{
		store:     store,
		extractor: extractor,
		advisor:   advisor,
		outbox:    outbox,
		price:     price,
	}
}

// Handle processes one inbound event for userID, replying into chatID.
func (e *Engine) Handle(ctx context.Context, userID, chatID int64, ev Event) {
	switch ev := ev.(type) {
	case CommandEvent:
		e.handleCommand(userID, chatID, ev.Name)
	case ButtonEvent:
		e.handleButton(ctx, userID, chatID, ev.Data)
	case PhotoEvent:
		e.handlePhoto(ctx, userID, chatID, ev.Image)
	case TextEvent:
		e.handleText(ctx, userID, chatID, ev.Text)
	}
}

func (e *Engine) handleCommand(userID, chatID int64, name string) {
	switch name {
	case cmdStart:
		e.store.Reset(userID)
		e.send(chatID, Reply{
			Text:     welcomeMessage(e.price),
			Markdown: true,
			Buttons:  welcomeKeyboard(),
		})
	case cmdAI:
		e.store.Get(userID).EnterAI()
		e.send(chatID, Reply{Text: msgAskPrompt})
	}
}

func (e *Engine) handleButton(ctx context.Context, userID, chatID int64, data string) {
	sess := e.store.Get(userID)

	switch data {
	case btnStartInsurance:
		sess.State = session.StateWaitingPassport
		e.send(chatID, Reply{Text: msgPassportStep, Markdown: true})

	case btnConfirmPassport:
		// A passport summary must exist before the vehicle step opens.
		if sess.Passport == "" {
			sess.State = session.StateWaitingPassport
			e.send(chatID, Reply{Text: msgPassportStep, Markdown: true})
			return
		}
		sess.State = session.StateWaitingVehicle
		e.send(chatID, Reply{Text: msgVehicleStep, Markdown: true})

	case btnPassportRetake:
		sess.State = session.StateWaitingPassport
		e.send(chatID, Reply{Text: msgPassportAgain, Markdown: true})

	case btnConfirmVehicle:
		if sess.Vehicle == "" {
			sess.State = session.StateWaitingVehicle
			e.send(chatID, Reply{Text: msgVehicleStep, Markdown: true})
			return
		}
		sess.State = session.StatePriceQuotation
		e.send(chatID, Reply{
			Text:     quotationMessage(e.price),
			Markdown: true,
			Buttons:  quotationKeyboard(),
		})

	case btnVehicleRetake:
		sess.State = session.StateWaitingVehicle
		e.send(chatID, Reply{Text: msgVehicleAgain, Markdown: true})

	case btnPriceAgree:
		// A stale agreement without collected documents cannot issue a
		// policy; send the user back to the missing step.
		if sess.Passport == "" {
			sess.State = session.StateWaitingPassport
			e.send(chatID, Reply{Text: msgPassportStep, Markdown: true})
			return
		}
		if sess.Vehicle == "" {
			sess.State = session.StateWaitingVehicle
			e.send(chatID, Reply{Text: msgVehicleStep, Markdown: true})
			return
		}
		sess.State = session.StatePolicyIssued
		e.send(chatID, Reply{Text: msgPaymentConfirmed})

		policy, err := e.advisor.Ask(ctx, userID, policyPrompt(sess, e.price, time.Now()))
		if err != nil {
			log.Printf("policy generation failed for user %d: %v", userID, err)
			e.send(chatID, Reply{Text: msgPolicyFailed})
			return
		}
		e.send(chatID, Reply{Text: policy})

	case btnPriceDisagree:
		e.send(chatID, Reply{
			Text:    priceOnlyMessage(e.price),
			Buttons: disagreeKeyboard(),
		})

	case btnAIQuestion:
		sess.EnterAI()
		e.send(chatID, Reply{Text: msgAskPrompt})

	case btnContinue:
		prev := sess.Resume()
		e.send(chatID, Reply{Text: msgContinuing})
		e.sendResumePrompt(chatID, prev)

	case btnCancel:
		e.send(chatID, Reply{Text: msgCanceled})
	}
}

// sendResumePrompt re-emits the prompt for the state the user returned to
// after the AI side-channel.
func (e *Engine) sendResumePrompt(chatID int64, st session.State) {
	switch st {
	case session.StateWaitingPassport:
		e.send(chatID, Reply{Text: msgPassportAgain, Markdown: true})
	case session.StateWaitingVehicle:
		e.send(chatID, Reply{Text: msgVehicleAgain, Markdown: true})
	case session.StatePriceQuotation:
		e.send(chatID, Reply{
			Text:     resumeQuotationMessage(e.price),
			Markdown: true,
			Buttons:  resumeQuotationKeyboard(),
		})
	default:
		e.send(chatID, Reply{Text: msgStartOver})
	}
}

func (e *Engine) handlePhoto(ctx context.Context, userID, chatID int64, image []byte) {
	sess := e.store.Get(userID)

	switch sess.State {
	case session.StateWaitingPassport:
		e.send(chatID, Reply{Text: msgProcessingPassport})
		summary, err := e.extractor.Extract(ctx, image, extract.ClassIdentity)
		if err != nil {
			log.Printf("passport extraction failed for user %d: %v", userID, err)
			e.send(chatID, Reply{Text: MsgPhotoFailed})
			return
		}
		sess.Passport = summary
		e.send(chatID, Reply{Text: summary, Markdown: true})
		e.send(chatID, Reply{
			Text:    msgConfirmData,
			Buttons: confirmKeyboard(btnConfirmPassport, btnPassportRetake),
		})

	case session.StateWaitingVehicle:
		e.send(chatID, Reply{Text: msgProcessingVehicle})
		summary, err := e.extractor.Extract(ctx, image, extract.ClassVehicle)
		if err != nil {
			log.Printf("vehicle extraction failed for user %d: %v", userID, err)
			e.send(chatID, Reply{Text: MsgPhotoFailed})
			return
		}
		sess.Vehicle = summary
		e.send(chatID, Reply{Text: summary, Markdown: true})
		e.send(chatID, Reply{
			Text:    msgConfirmData,
			Buttons: confirmKeyboard(btnConfirmVehicle, btnVehicleRetake),
		})
	}
	// Photos in any other state are ignored.
}

func (e *Engine) handleText(ctx context.Context, userID, chatID int64, text string) {
	sess := e.store.Get(userID)

	if sess.State == session.StateAIConversation {
		reply, err := e.advisor.Ask(ctx, userID, text)
		if err != nil {
			log.Printf("ai question failed for user %d: %v", userID, err)
			// The apology keeps the follow-up keyboard so the user can
			// retry or continue the flow.
			e.send(chatID, Reply{Text: msgAIFailed, Buttons: aiFollowupKeyboard()})
			return
		}
		e.send(chatID, Reply{Text: reply, Buttons: aiFollowupKeyboard()})
		return
	}

	if !implicitAIQuestion(sess.State, text) {
		return
	}

	// The text is treated as an AI question without leaving the current
	// state; the structured flow picks up where it was.
	reply, err := e.advisor.Ask(ctx, userID, text)
	if err != nil {
		log.Printf("implicit ai question failed for user %d: %v", userID, err)
		e.send(chatID, Reply{Text: msgAIFailed})
		return
	}
	e.send(chatID, Reply{Text: reply})
}

// implicitAIQuestion reports whether free text outside the AI side-channel
// should still be routed to the assistant. Document-waiting states accept
// photos only, and very short messages are skipped so incidental chat does
// not trigger the assistant.
func implicitAIQuestion(st session.State, text string) bool {
	if st == session.StateWaitingPassport || st == session.StateWaitingVehicle {
		return false
	}
	return utf8.RuneCountInString(text) > 3
}

// policyPrompt synthesizes the policy-generation request from the
// collected document summaries.
func policyPrompt(sess *session.Session, price string, now time.Time) string {
	holder := sess.Passport
	if holder == "" {
		holder = "Unknown"
	}
	vehicle := sess.Vehicle
	if vehicle == "" {
		vehicle = "Unknown"
	}

	return fmt.Sprintf(`Generate a simple car insurance policy confirmation.
Policy holder: %s
Vehicle: %s
Coverage: Full
Premium Paid: %s
Valid From: %s
Valid Until: %s`,
		holder, vehicle, price,
		now.Format("02.01.2006"),
		now.AddDate(1, 0, 0).Format("02.01.2006"))
}

func (e *Engine) send(chatID int64, r Reply) {
	if err := e.outbox.Send(chatID, r); err != nil {
		log.Printf("failed to send reply to chat %d: %v", chatID, err)
	}
}
