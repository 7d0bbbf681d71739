package bot

import (
	"fmt"

	"github.com/tbourn/go-rabbitry/internal/domain"
)

// btn builds a localized button.
func (b *Bot) btn(label, data string) Button {
	return Button{Text: b.Printer.Sprintf(label), Data: data}
}

// rows lays buttons out one per row.
func rows(btns ...Button) [][]Button {
	out := make([][]Button, 0, len(btns))
	for _, bt := range btns {
		out = append(out, []Button{bt})
	}
	return out
}

func cageData(action string, ids ...int) string {
	s := action
	for _, id := range ids {
		s += fmt.Sprintf(":%d", id)
	}
	return s
}

func (b *Bot) rabbitButton(r domain.Rabbit, data string) Button {
	return Button{
		Text: b.Printer.Sprintf("%s %s (cage %s)", r.Name, r.Gender.Symbol(), domain.CageNumber(r.CageID)),
		Data: data,
	}
}

func (b *Bot) menuKeyboard() [][]Button {
	return rows(
		b.btn("📋 Rabbit list", "list"),
		b.btn("➕ Add rabbit", "add"),
	)
}

func (b *Bot) genderKeyboard() [][]Button {
	return [][]Button{
		{
			b.btn("♂️ Male", "gender:"+string(domain.GenderMale)),
			b.btn("♀️ Female", "gender:"+string(domain.GenderFemale)),
		},
		{b.btn("🔙 Cancel", "cancel")},
	}
}

func (b *Bot) cancelKeyboard() [][]Button {
	return rows(b.btn("🔙 Cancel", "cancel"))
}
