// Package i18n registers the user-facing text catalog. English format
// strings are the message keys; Russian translations are registered in the
// default x/text catalog at init. NewPrinter picks the closest supported
// language for a locale string.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported lists the catalog languages; the first is the fallback.
var Supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(Supported)

// russian maps each English key to its Russian text.
var russian = map[string]string{
	// rabbit card
	"Cage is empty!":                  "Клетка пуста!",
	"🐰 Rabbit info %s:":               "🐰 Информация о кролике %s:",
	"Name: %s":                        "Имя: %s",
	"Gender: %s":                      "Пол: %s",
	"Cage: %s":                        "Клетка: %s",
	"Last breeding: %s (%s)":          "Последняя случка: %s (%s)",
	"ready":                           "готова",
	"not ready (%d day(s) remaining)": "не готова (осталось дней: %d)",
	"Father: %s (cage %s)":            "Отец: %s (клетка %s)",
	"male":                            "самец",
	"female":                          "самка",

	// pregnancy digest
	"🐇 Pregnant does update:": "🐇 Уведомление о беременных самках:",
	"⚠️ Doe %s (cage %s) should kindle in the coming days! (last breeding %s)": "⚠️ Самка %s (клетка %s) должна окролиться в ближайшие дни! (последняя случка %s)",
	"ℹ️ Doe %s (cage %s) is preparing to kindle. About %d day(s) until birth.":  "ℹ️ Самка %s (клетка %s) готовится к окролу. До родов осталось ~%d дн.",

	// menu and navigation
	"🐰 Rabbit keeping bot\nChoose an action:": "🐰 Бот для учета кроликов\nВыберите действие:",
	"Private chat":                        "Личный чат",
	"📋 Rabbit list":                       "📋 Список кроликов",
	"➕ Add rabbit":                        "➕ Добавить кролика",
	"🔙 Menu":                              "🔙 В меню",
	"🏠 Menu":                              "🏠 В меню",
	"🔙 Back":                              "🔙 Назад",
	"🔙 Cancel":                            "🔙 Отмена",
	"❌ Cancel":                            "❌ Отменить",
	"🔙 To rabbit list":                    "🔙 К списку кроликов",
	"📋 To rabbit list":                    "📋 К списку кроликов",
	"🔙 To rabbit card":                    "🔙 К карточке кролика",
	"Action cancelled":                    "Действие отменено",
	"Session expired, please start again": "Сессия истекла, начните заново",
	"Unknown action":                      "Неизвестное действие",
	"⚠️ Something went wrong, please try again.": "⚠️ Произошла ошибка, попробуйте еще раз.",

	// listing and card buttons
	"📋 The rabbit list is empty!": "📋 Список кроликов пуст!",
	"📋 Rabbit list:":              "📋 Список кроликов:",
	"%s %s (cage %s)":             "%s %s (клетка %s)",
	"💞 Breed":                     "💞 Случить",
	"🔄 Reset breeding":            "🔄 Сбросить случку",
	"🗑️ Delete":                   "🗑️ Удалить",

	// add flow
	"Enter the cage number for the new rabbit:":              "Введите номер клетки для нового кролика:",
	"Please enter a valid cage number (a positive integer).": "Пожалуйста, введите корректный номер клетки (число)",
	"Choose the rabbit's gender:":                            "Выберите пол кролика:",
	"♂️ Male":                                                "♂️ Самец",
	"♀️ Female":                                              "♀️ Самка",
	"Enter the rabbit's name:":                               "Введите имя кролика:",
	"The name cannot be empty. Enter the rabbit's name:":     "Имя не может быть пустым. Введите имя кролика:",
	"✅ Rabbit %s added to cage %s!":                          "✅ Кролик %s успешно добавлен в клетку %s!",

	// delete flow
	"The cage is already empty!": "Клетка уже пуста!",
	"Are you sure you want to clear cage %s?\nRabbit %s will be removed.": "Вы уверены, что хотите очистить клетку %s?\nКролик %s будет удален.",
	"✅ Yes, clear the cage": "✅ Да, очистить клетку",
	"❌ No, keep it":         "❌ Нет, оставить",
	"✅ Cage %s cleared!":    "✅ Клетка %s успешно очищена!",

	// breed flow
	"Choose a partner for %s (%s):": "Выберите партнера для %s (%s):",
	"❌ No suitable partners!\nMake sure that:\n- there are rabbits of the opposite gender\n- the does are ready (30 days have passed)": "❌ Нет подходящих кроликов для случки!\nУбедитесь, что:\n- Есть кролики противоположного пола\n- Самки готовы к случке (прошло 30 дней)",
	"Are you sure you want to breed these rabbits?":           "Вы уверены, что хотите случить кроликов?",
	"🐰 %s (%s, cage %s)":                                      "🐰 %s (%s, клетка %s)",
	"The doe is ready to breed ✅":                             "Самка готова к случке ✅",
	"The doe is not ready! Only %d of %d days have passed ❌":  "Самка не готова! Прошло только %d из %d дней ❌",
	"✅ Confirm breeding":                                      "✅ Подтвердить случку",
	"✅ Breeding recorded!\nDoe %s will not be ready for another breeding for %d days.": "✅ Случка успешно проведена!\nСамка %s теперь не готова к новой случке в течение %d дней.",
	"🐰 View the doe": "🐰 Посмотреть самку",
	"❌ Breeding failed: the doe is not ready, %d day(s) remaining.": "❌ Не удалось провести случку: самка не готова, осталось дней: %d.",
	"❌ Breeding failed: the rabbits are the same gender.":           "❌ Не удалось провести случку: кролики одного пола.",
	"❌ Breeding failed: one of the cages is empty.":                 "❌ Не удалось провести случку: одна из клеток пуста.",
	"❌ The cage was changed by someone else. Please try again.":     "❌ Клетку кто-то изменил. Попробуйте еще раз.",

	// reset flow
	"Breeding can only be reset for does.": "Сбрасывать случку можно только для самок.",
	"none":                                 "не было",
	"Are you sure you want to reset the breeding date for %s?\nCurrent last breeding date: %s\nAfter the reset the doe will be considered ready to breed.": "Вы уверены, что хотите сбросить дату случки для %s?\nТекущая дата последней случки: %s\nПосле сброса самка будет считаться готовой к случке.",
	"✅ Yes, reset": "✅ Да, сбросить",
	"✅ Breeding date for %s has been reset!\nShe is now ready to breed again.": "✅ Дата случки для %s сброшена!\nТеперь она готова к новой случке.",
	"❌ Error! Breeding can only be reset for does.":                           "❌ Ошибка! Можно сбрасывать только для самок.",
}

func init() {
	for key, msg := range russian {
		if err := message.SetString(language.Russian, key, msg); err != nil {
			panic("i18n: " + err.Error())
		}
	}
}

// Tag resolves a locale such as "ru", "ru-RU" or "en_US" to a supported tag.
// Unknown or empty locales fall back to English.
func Tag(locale string) language.Tag {
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" {
		return language.English
	}
	_, idx, conf := matcher.Match(language.Make(locale))
	if conf == language.No {
		return language.English
	}
	return Supported[idx]
}

// NewPrinter returns a printer for locale.
func NewPrinter(locale string) *message.Printer {
	return message.NewPrinter(Tag(locale))
}

// Keys returns every translated message key.
func Keys() []string {
	out := make([]string, 0, len(russian))
	for k := range russian {
		out = append(out, k)
	}
	return out
}
