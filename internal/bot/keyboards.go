package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tadbirbot/internal/i18n"
	"tadbirbot/internal/models"
)

func languageKeyboard(prefix string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇺🇿 O'zbek tili", prefix+models.LangUz),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇷🇺 Русский язык", prefix+models.LangRu),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", prefix+models.LangEn),
		),
	)
}

func mainMenuKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(i18n.T(lang, "btn_events")),
			tgbotapi.NewKeyboardButton(i18n.T(lang, "btn_my_info")),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(i18n.T(lang, "btn_contact")),
			tgbotapi.NewKeyboardButton(i18n.T(lang, "btn_change_language")),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func contactKeyboard(lang string) tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(i18n.T(lang, "btn_share_phone")),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

// subscribeKeyboard строит кнопки-ссылки на обязательные каналы.
// Каналы без выводимой ссылки пропускаются.
func subscribeKeyboard(lang string, channels []models.Channel) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(channels)+1)
	for _, ch := range channels {
		url := channelURL(ch)
		if url == "" {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 "+channelDisplayName(ch), url),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_check_subscription"), "check_subscription"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// channelURL выводит ссылку на канал из username, chat_id или имени.
func channelURL(ch models.Channel) string {
	username := strings.TrimPrefix(strings.TrimSpace(ch.Username), "@")
	if username != "" && username != "none" {
		return "https://t.me/" + username
	}

	chatID := strings.TrimSpace(ch.ChatID)
	switch {
	case strings.HasPrefix(chatID, "@"):
		if u := chatID[1:]; u != "" && u != "none" {
			return "https://t.me/" + u
		}
	case strings.HasPrefix(chatID, "-100"):
		return fmt.Sprintf("https://t.me/c/%s/1", chatID[4:])
	case isNumeric(chatID):
		return fmt.Sprintf("https://t.me/c/%s/1", strings.TrimPrefix(chatID, "-"))
	}

	name := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(ch.Name, "@", ""), "https://t.me/", ""))
	if name != "" && name != "none" {
		return "https://t.me/" + name
	}
	return ""
}

func channelDisplayName(ch models.Channel) string {
	if ch.Name != "" && ch.Name != "none" {
		return ch.Name
	}
	if u := strings.TrimPrefix(ch.Username, "@"); u != "" {
		return "@" + u
	}
	if len(ch.ChatID) > 10 {
		return "Channel " + ch.ChatID[:10]
	}
	return "Channel " + ch.ChatID
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func eventKeyboard(lang string, eventID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_pay"), fmt.Sprintf("pay_event_%d", eventID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_cancel"), "cancel_payment"),
		),
	)
}

func termsKeyboard(lang string, eventID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_agree"), fmt.Sprintf("confirm_terms_%d", eventID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_cancel"), "cancel_payment"),
		),
	)
}

func paymentKeyboard(lang string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_cancel"), "cancel_payment"),
		),
	)
}

func profileKeyboard(lang string, userID int64, approved bool) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, 3)
	if approved {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_my_qr"), fmt.Sprintf("my_qr_%d", userID)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_payment_status"), fmt.Sprintf("payment_status_%d", userID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(i18n.T(lang, "btn_back_to_main"), "back_to_main"),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func adjudicationKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Tasdiqlash", fmt.Sprintf("approve_%d", userID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Rad etish", fmt.Sprintf("reject_%d", userID)),
		),
	)
}

func pendingListKeyboard(users []models.User) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(users))
	for _, u := range users {
		label := fmt.Sprintf("%s (%d)", u.FullName, u.TelegramID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("review_payment_%d", u.TelegramID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
