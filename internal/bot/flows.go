package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/services"
	"github.com/tbourn/go-rabbitry/internal/session"
	"github.com/tbourn/go-rabbitry/internal/utils"
)

// ----- Menu and session control -----

func (b *Bot) menu() Reply {
	return Reply{
		Text:     b.Printer.Sprintf("🐰 Rabbit keeping bot\nChoose an action:"),
		Keyboard: b.menuKeyboard(),
	}
}

// start registers the chat for notifications, clears the session and shows
// the main menu.
func (b *Bot) start(ctx context.Context, u Update) Reply {
	name := strings.TrimSpace(u.ChatTitle)
	if name == "" && u.Username != "" {
		name = "@" + strings.TrimPrefix(u.Username, "@")
	}
	if name == "" {
		name = b.Printer.Sprintf("Private chat")
	}
	if _, err := b.Chats.Register(ctx, u.ChatID, name); err != nil {
		return b.fail(ctx, err)
	}
	if err := b.Sessions.Delete(ctx, u.UserID); err != nil {
		return b.fail(ctx, err)
	}
	return b.menu()
}

func (b *Bot) cancel(ctx context.Context, u Update) Reply {
	s, err := b.Sessions.Get(ctx, u.UserID)
	if err != nil {
		return b.fail(ctx, err)
	}
	if err := b.endFlow(ctx, u.UserID, s, session.EventCancel); err != nil {
		return b.fail(ctx, err)
	}
	return Reply{
		Text:     b.Printer.Sprintf("Action cancelled"),
		Keyboard: rows(b.btn("🔙 Menu", "menu")),
	}
}

// endFlow applies e to s and stores the result. A session that lands in
// idle is removed.
func (b *Bot) endFlow(ctx context.Context, userID int64, s *session.Session, e session.Event) error {
	if s.State == "" {
		s.State = session.StateIdle
	}
	if err := s.Apply(e); err != nil {
		return err
	}
	if s.Idle() {
		return b.Sessions.Delete(ctx, userID)
	}
	return b.Sessions.Put(ctx, userID, s)
}

func (b *Bot) expired() Reply {
	r := b.menu()
	r.Notice = b.Printer.Sprintf("Session expired, please start again")
	return r
}

// ----- Listing and viewing -----

func (b *Bot) list(ctx context.Context) Reply {
	rabbits, err := b.Rabbits.ListOccupied(ctx)
	if err != nil {
		return b.fail(ctx, err)
	}
	if len(rabbits) == 0 {
		return Reply{
			Text: b.Printer.Sprintf("📋 The rabbit list is empty!"),
			Keyboard: rows(
				b.btn("➕ Add rabbit", "add"),
				b.btn("🔙 Menu", "menu"),
			),
		}
	}
	kb := make([][]Button, 0, len(rabbits)+1)
	for _, r := range rabbits {
		kb = append(kb, []Button{b.rabbitButton(r, cageData("view", r.CageID))})
	}
	kb = append(kb, []Button{b.btn("🔙 Menu", "menu")})
	return Reply{Text: b.Printer.Sprintf("📋 Rabbit list:"), Keyboard: kb}
}

func (b *Bot) view(ctx context.Context, cageID int) Reply {
	text, r, err := b.Rabbits.Describe(ctx, b.Printer, cageID)
	if err != nil {
		return b.fail(ctx, err)
	}
	var kb []Button
	if !r.IsEmpty {
		kb = append(kb, b.btn("💞 Breed", cageData("breed", cageID)))
		if r.IsFemale() && r.LastBreedingDate != nil {
			kb = append(kb, b.btn("🔄 Reset breeding", cageData("reset", cageID)))
		}
		kb = append(kb, b.btn("🗑️ Delete", cageData("delete", cageID)))
	}
	kb = append(kb, b.btn("🔙 Back", "list"))
	return Reply{Text: text, Keyboard: rows(kb...)}
}

// ----- Add flow: cage -> gender -> name -----

func (b *Bot) addStart(ctx context.Context, u Update) Reply {
	s := session.New()
	if err := s.Apply(session.EventStartAdd); err != nil {
		return b.fail(ctx, err)
	}
	if err := b.Sessions.Put(ctx, u.UserID, s); err != nil {
		return b.fail(ctx, err)
	}
	return Reply{
		Text:     b.Printer.Sprintf("Enter the cage number for the new rabbit:"),
		Keyboard: b.cancelKeyboard(),
	}
}

func (b *Bot) addCageEntered(ctx context.Context, u Update, s *session.Session, text string) Reply {
	cageID, ok := utils.ParseCageID(text)
	if !ok {
		return Reply{
			Text:     b.Printer.Sprintf("Please enter a valid cage number (a positive integer)."),
			Keyboard: b.cancelKeyboard(),
		}
	}
	s.CageID = cageID
	if err := s.Apply(session.EventCageEntered); err != nil {
		return b.fail(ctx, err)
	}
	if err := b.Sessions.Put(ctx, u.UserID, s); err != nil {
		return b.fail(ctx, err)
	}
	return Reply{Text: b.Printer.Sprintf("Choose the rabbit's gender:"), Keyboard: b.genderKeyboard()}
}

func (b *Bot) addGenderChosen(ctx context.Context, u Update, raw string) Reply {
	g, ok := domain.ParseGender(raw)
	if !ok {
		return Reply{Notice: b.Printer.Sprintf("Unknown action")}
	}
	s, err := b.Sessions.Get(ctx, u.UserID)
	if err != nil {
		return b.fail(ctx, err)
	}
	if s.State != session.StateAwaitingGender {
		return b.expired()
	}
	s.Gender = g
	if err := s.Apply(session.EventGenderChosen); err != nil {
		return b.fail(ctx, err)
	}
	if err := b.Sessions.Put(ctx, u.UserID, s); err != nil {
		return b.fail(ctx, err)
	}
	return Reply{Text: b.Printer.Sprintf("Enter the rabbit's name:"), Keyboard: b.cancelKeyboard()}
}

func (b *Bot) addNameEntered(ctx context.Context, u Update, s *session.Session, name string) Reply {
	r, err := b.Rabbits.Register(ctx, s.CageID, s.Gender, name, nil)
	switch {
	case errors.Is(err, services.ErrEmptyName):
		return Reply{Text: b.Printer.Sprintf("The name cannot be empty. Enter the rabbit's name:"), Keyboard: b.cancelKeyboard()}
	case err != nil:
		return b.fail(ctx, err)
	}
	if err := b.endFlow(ctx, u.UserID, s, session.EventNameEntered); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("session cleanup failed")
	}
	log.Ctx(ctx).Info().Int("cage_id", r.CageID).Str("gender", string(r.Gender)).Msg("rabbit registered")
	return Reply{
		Text:     b.Printer.Sprintf("✅ Rabbit %s added to cage %s!", r.Name, domain.CageNumber(r.CageID)),
		Keyboard: rows(b.btn("🔙 Menu", "menu")),
	}
}

// ----- Delete flow -----

func (b *Bot) deleteAsk(ctx context.Context, cageID int) Reply {
	r, err := b.Rabbits.Load(ctx, cageID)
	if err != nil {
		return b.fail(ctx, err)
	}
	if r.IsEmpty {
		return Reply{Notice: b.Printer.Sprintf("The cage is already empty!")}
	}
	return Reply{
		Text: b.Printer.Sprintf("Are you sure you want to clear cage %s?\nRabbit %s will be removed.", domain.CageNumber(cageID), r.Name),
		Keyboard: rows(
			b.btn("✅ Yes, clear the cage", cageData("delete_confirm", cageID)),
			b.btn("❌ No, keep it", cageData("view", cageID)),
		),
	}
}

func (b *Bot) deleteConfirm(ctx context.Context, cageID int) Reply {
	err := b.Rabbits.Delete(ctx, cageID)
	switch {
	case errors.Is(err, services.ErrCageEmpty):
		return Reply{Notice: b.Printer.Sprintf("The cage is already empty!")}
	case err != nil:
		return b.fail(ctx, err)
	}
	log.Ctx(ctx).Info().Int("cage_id", cageID).Msg("cage emptied")
	return Reply{
		Text: b.Printer.Sprintf("✅ Cage %s cleared!", domain.CageNumber(cageID)),
		Keyboard: rows(
			b.btn("🔙 To rabbit list", "list"),
			b.btn("🏠 Menu", "menu"),
		),
	}
}

// ----- Breed flow: pick partner -> confirm -----

func (b *Bot) breedSelect(ctx context.Context, u Update, cageID int) Reply {
	current, err := b.Rabbits.Load(ctx, cageID)
	if err != nil {
		return b.fail(ctx, err)
	}
	if current.IsEmpty {
		return Reply{Notice: b.Printer.Sprintf("Cage is empty!")}
	}
	partners, err := b.Rabbits.Partners(ctx, cageID)
	if err != nil {
		return b.fail(ctx, err)
	}

	s := session.New()
	if err := s.Apply(session.EventStartBreed); err != nil {
		return b.fail(ctx, err)
	}
	s.CageID = cageID
	if err := b.Sessions.Put(ctx, u.UserID, s); err != nil {
		return b.fail(ctx, err)
	}

	now := b.now()
	var kb [][]Button
	for _, p := range partners {
		if p.CageID == cageID || (p.IsFemale() && !p.IsReadyToBreed(now)) {
			continue
		}
		kb = append(kb, []Button{b.rabbitButton(p, cageData("breed_pick", cageID, p.CageID))})
	}
	back := []Button{b.btn("🔙 Back", cageData("view", cageID))}
	if len(kb) == 0 {
		return Reply{
			Text: b.Printer.Sprintf("❌ No suitable partners!\nMake sure that:\n- there are rabbits of the opposite gender\n- the does are ready (30 days have passed)"),
			Keyboard: [][]Button{back},
		}
	}
	return Reply{
		Text:     b.Printer.Sprintf("Choose a partner for %s (%s):", current.Name, current.Gender.Label(b.Printer)),
		Keyboard: append(kb, back),
	}
}

func (b *Bot) breedPick(ctx context.Context, u Update, cageID, partnerID int) Reply {
	s, err := b.Sessions.Get(ctx, u.UserID)
	if err != nil {
		return b.fail(ctx, err)
	}
	if s.State != session.StateAwaitingBreedSelection || s.CageID != cageID {
		return b.expired()
	}
	if err := b.endFlow(ctx, u.UserID, s, session.EventPartnerPicked); err != nil {
		return b.fail(ctx, err)
	}

	pv, err := b.Breeding.Preview(ctx, cageID, partnerID)
	if err != nil {
		return b.breedRejected(ctx, err)
	}
	text := b.Printer.Sprintf("Are you sure you want to breed these rabbits?") + "\n\n" +
		b.pairLine(pv.Female) + "\n" +
		b.pairLine(pv.Male) + "\n\n"
	if pv.Ready {
		text += b.Printer.Sprintf("The doe is ready to breed ✅")
	} else {
		text += b.Printer.Sprintf("The doe is not ready! Only %d of %d days have passed ❌", pv.DaysPassed, domain.BreedingCooldownDays)
	}
	return Reply{
		Text: text,
		Keyboard: rows(
			b.btn("✅ Confirm breeding", cageData("breed_confirm", cageID, partnerID)),
			b.btn("❌ Cancel", cageData("view", cageID)),
		),
	}
}

func (b *Bot) pairLine(r domain.Rabbit) string {
	return b.Printer.Sprintf("🐰 %s (%s, cage %s)", r.Name, r.Gender.Label(b.Printer), domain.CageNumber(r.CageID))
}

func (b *Bot) breedConfirm(ctx context.Context, a, c int) Reply {
	out, err := b.Breeding.AttemptBreed(ctx, a, c)
	if err != nil {
		return b.breedRejected(ctx, err)
	}
	log.Ctx(ctx).Info().
		Int("female_cage", out.Female.CageID).
		Int("male_cage", out.Male.CageID).
		Time("bred_at", out.BredAt).
		Msg("breeding recorded")
	return Reply{
		Text: b.Printer.Sprintf("✅ Breeding recorded!\nDoe %s will not be ready for another breeding for %d days.", out.Female.Name, domain.BreedingCooldownDays),
		Keyboard: rows(
			b.btn("🔙 To rabbit list", "list"),
			b.btn("🐰 View the doe", cageData("view", out.Female.CageID)),
		),
	}
}

func (b *Bot) breedRejected(ctx context.Context, err error) Reply {
	var nr *services.NotReadyError
	var text string
	switch {
	case errors.As(err, &nr):
		text = b.Printer.Sprintf("❌ Breeding failed: the doe is not ready, %d day(s) remaining.", nr.DaysRemaining)
	case errors.Is(err, services.ErrSameGender):
		text = b.Printer.Sprintf("❌ Breeding failed: the rabbits are the same gender.")
	case errors.Is(err, services.ErrCageEmpty):
		text = b.Printer.Sprintf("❌ Breeding failed: one of the cages is empty.")
	case errors.Is(err, services.ErrConcurrentUpdate):
		text = b.Printer.Sprintf("❌ The cage was changed by someone else. Please try again.")
	default:
		return b.fail(ctx, err)
	}
	return Reply{Text: text, Keyboard: rows(b.btn("🔙 To rabbit list", "list"))}
}

// ----- Reset flow -----

func (b *Bot) resetAsk(ctx context.Context, cageID int) Reply {
	r, err := b.Rabbits.Load(ctx, cageID)
	if err != nil {
		return b.fail(ctx, err)
	}
	if r.IsEmpty || !r.IsFemale() {
		return Reply{Notice: b.Printer.Sprintf("Breeding can only be reset for does.")}
	}
	last := b.Printer.Sprintf("none")
	if r.LastBreedingDate != nil {
		last = r.LastBreedingDate.Format(time.DateOnly)
	}
	return Reply{
		Text: b.Printer.Sprintf("Are you sure you want to reset the breeding date for %s?\nCurrent last breeding date: %s\nAfter the reset the doe will be considered ready to breed.", r.Name, last),
		Keyboard: rows(
			b.btn("✅ Yes, reset", cageData("reset_confirm", cageID)),
			b.btn("❌ No, keep it", cageData("view", cageID)),
		),
	}
}

func (b *Bot) resetConfirm(ctx context.Context, cageID int) Reply {
	r, err := b.Rabbits.Load(ctx, cageID)
	if err != nil {
		return b.fail(ctx, err)
	}
	ok, err := b.Rabbits.ResetBreeding(ctx, cageID)
	switch {
	case errors.Is(err, services.ErrConcurrentUpdate):
		return Reply{Text: b.Printer.Sprintf("❌ The cage was changed by someone else. Please try again."), Keyboard: rows(b.btn("🔙 Back", cageData("view", cageID)))}
	case err != nil:
		return b.fail(ctx, err)
	}
	text := b.Printer.Sprintf("❌ Error! Breeding can only be reset for does.")
	if ok {
		text = b.Printer.Sprintf("✅ Breeding date for %s has been reset!\nShe is now ready to breed again.", r.Name)
	}
	return Reply{
		Text: text,
		Keyboard: rows(
			b.btn("🔙 To rabbit card", cageData("view", cageID)),
			b.btn("📋 To rabbit list", "list"),
		),
	}
}
