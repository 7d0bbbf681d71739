// Package bot implements the conversational front-end: it turns one incoming
// chat Update (a text message or a button press) into one Reply with text and
// an inline keyboard.
//
// Multi-step flows (adding an occupant, picking a breeding partner) keep their
// progress in a per-user session.Session. Every destructive action asks for
// confirmation first. Store failures are logged and answered with a generic
// apology; validation rejections are explained to the user.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/message"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/services"
	"github.com/tbourn/go-rabbitry/internal/session"
	"github.com/tbourn/go-rabbitry/internal/utils"
)

// Update is one inbound event from a chat.
type Update struct {
	ChatID    int64  `json:"chat_id"    binding:"required"`
	ChatTitle string `json:"chat_title"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Callback  string `json:"callback"`
}

// Button is one inline keyboard key. Data is sent back as Update.Callback.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Reply is the bot's answer. Notice is a short toast for button presses; when
// Text is empty the previous message is left as-is.
type Reply struct {
	Text     string     `json:"text,omitempty"`
	Keyboard [][]Button `json:"keyboard,omitempty"`
	Notice   string     `json:"notice,omitempty"`
}

// RabbitService is the subset of services.RabbitService the bot uses.
type RabbitService interface {
	Load(ctx context.Context, cageID int) (domain.Rabbit, error)
	Describe(ctx context.Context, p *message.Printer, cageID int) (string, domain.Rabbit, error)
	Register(ctx context.Context, cageID int, gender domain.Gender, name string, fatherID *int) (*domain.Rabbit, error)
	Delete(ctx context.Context, cageID int) error
	ResetBreeding(ctx context.Context, cageID int) (bool, error)
	ListOccupied(ctx context.Context) ([]domain.Rabbit, error)
	Partners(ctx context.Context, cageID int) ([]domain.Rabbit, error)
}

// BreedingService is the subset of services.BreedingService the bot uses.
type BreedingService interface {
	Preview(ctx context.Context, a, b int) (*services.BreedPreview, error)
	AttemptBreed(ctx context.Context, a, b int) (*services.BreedOutcome, error)
}

// ChatService registers notification destinations.
type ChatService interface {
	Register(ctx context.Context, chatID int64, name string) (*domain.ChatRegistration, error)
}

// Bot dispatches updates to flows.
type Bot struct {
	Rabbits  RabbitService
	Breeding BreedingService
	Chats    ChatService
	Sessions session.Store
	Printer  *message.Printer

	// Now is used to filter ready partners; defaults to time.Now.
	Now func() time.Time
}

func (b *Bot) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// Handle processes one update.
func (b *Bot) Handle(ctx context.Context, u Update) Reply {
	lg := log.With().
		Int64("chat_id", u.ChatID).
		Int64("user_id", u.UserID).
		Str("callback", u.Callback).
		Logger()
	ctx = lg.WithContext(ctx)

	if u.Callback != "" {
		return b.handleCallback(ctx, u)
	}
	return b.handleText(ctx, u)
}

func (b *Bot) handleText(ctx context.Context, u Update) Reply {
	text := strings.TrimSpace(u.Text)
	if cmd, ok := command(text); ok {
		switch cmd {
		case "start", "menu":
			return b.start(ctx, u)
		case "cancel":
			return b.cancel(ctx, u)
		}
	}

	s, err := b.Sessions.Get(ctx, u.UserID)
	if err != nil {
		return b.fail(ctx, err)
	}
	switch s.State {
	case session.StateAwaitingCageID:
		return b.addCageEntered(ctx, u, s, text)
	case session.StateAwaitingName:
		return b.addNameEntered(ctx, u, s, text)
	case session.StateAwaitingGender:
		return Reply{Text: b.Printer.Sprintf("Choose the rabbit's gender:"), Keyboard: b.genderKeyboard()}
	}
	return b.menu()
}

func (b *Bot) handleCallback(ctx context.Context, u Update) Reply {
	action, args := parseCallback(u.Callback)
	switch action {
	case "menu":
		return b.start(ctx, u)
	case "cancel":
		return b.cancel(ctx, u)
	case "list":
		return b.list(ctx)
	case "add":
		return b.addStart(ctx, u)
	case "gender":
		if len(args) == 1 {
			return b.addGenderChosen(ctx, u, args[0])
		}
	case "view", "delete", "delete_confirm", "breed", "reset", "reset_confirm":
		if ids, ok := cageArgs(args, 1); ok {
			return b.cageAction(ctx, u, action, ids[0])
		}
	case "breed_pick", "breed_confirm":
		if ids, ok := cageArgs(args, 2); ok {
			if action == "breed_pick" {
				return b.breedPick(ctx, u, ids[0], ids[1])
			}
			return b.breedConfirm(ctx, ids[0], ids[1])
		}
	}
	return Reply{Notice: b.Printer.Sprintf("Unknown action")}
}

func (b *Bot) cageAction(ctx context.Context, u Update, action string, cageID int) Reply {
	switch action {
	case "view":
		return b.view(ctx, cageID)
	case "delete":
		return b.deleteAsk(ctx, cageID)
	case "delete_confirm":
		return b.deleteConfirm(ctx, cageID)
	case "breed":
		return b.breedSelect(ctx, u, cageID)
	case "reset":
		return b.resetAsk(ctx, cageID)
	default:
		return b.resetConfirm(ctx, cageID)
	}
}

// fail logs err with the request-scoped logger and returns the apology.
func (b *Bot) fail(ctx context.Context, err error) Reply {
	lg := log.Ctx(ctx)
	lg.Error().Err(err).Msg("bot action failed")
	return Reply{
		Text:     b.Printer.Sprintf("⚠️ Something went wrong, please try again."),
		Keyboard: rows(b.btn("🔙 Menu", "menu")),
	}
}

// command extracts "start" from "/start" or "/start@MyBot args".
func command(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	word := strings.Fields(text[1:])
	if len(word) == 0 {
		return "", false
	}
	name, _, _ := strings.Cut(word[0], "@")
	return strings.ToLower(name), true
}

func parseCallback(data string) (string, []string) {
	parts := strings.Split(strings.TrimSpace(data), ":")
	return parts[0], parts[1:]
}

func cageArgs(args []string, n int) ([]int, bool) {
	if len(args) != n {
		return nil, false
	}
	out := make([]int, n)
	for i, a := range args {
		v, ok := utils.ParseCageID(a)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}
