package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tadbirbot/internal/i18n"
	"tadbirbot/internal/models"
	"tadbirbot/internal/service"
)

// Подписи админской клавиатуры. Панель одноязычная, как у операторов.
const (
	adminBtnStats    = "📊 Statistika"
	adminBtnPending  = "⏳ Kutilayotgan to'lovlar"
	adminBtnChannels = "📢 Kanallar"
	adminBtnEvents   = "🎪 Tadbirlar boshqaruvi"
	adminBtnExport   = "📁 Export"
	adminBtnResync   = "🔄 Reestr sync"
)

func adminMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(adminBtnStats),
			tgbotapi.NewKeyboardButton(adminBtnPending),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(adminBtnChannels),
			tgbotapi.NewKeyboardButton(adminBtnEvents),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(adminBtnExport),
			tgbotapi.NewKeyboardButton(adminBtnResync),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	switch {
	case cmd == "admin":
		if _, err := b.tgService.SendWithKeyboard(msg.Chat.ID, "🔧 Admin panel", adminMenuKeyboard()); err != nil {
			b.logError(ctx, err, msg.From.ID, "send admin panel")
		}
	case strings.HasPrefix(cmd, "approve_"):
		b.adjudicate(ctx, msg.Chat.ID, msg.From.ID, strings.TrimPrefix(cmd, "approve_"), true)
	case strings.HasPrefix(cmd, "reject_"):
		b.adjudicate(ctx, msg.Chat.ID, msg.From.ID, strings.TrimPrefix(cmd, "reject_"), false)
	case cmd == "checkin":
		b.adminCheckin(ctx, msg)
	case cmd == "add_channel":
		b.adminAddChannel(ctx, msg)
	case cmd == "del_channel":
		b.adminDeleteChannel(ctx, msg)
	case cmd == "add_event":
		b.adminAddEvent(ctx, msg)
	case strings.HasPrefix(cmd, "event_on_"):
		b.adminToggleEvent(ctx, msg, strings.TrimPrefix(cmd, "event_on_"), true)
	case strings.HasPrefix(cmd, "event_off_"):
		b.adminToggleEvent(ctx, msg, strings.TrimPrefix(cmd, "event_off_"), false)
	}
}

// handleAdminText обрабатывает кнопки админской клавиатуры.
// Возвращает false, если текст панели не касается.
func (b *Bot) handleAdminText(ctx context.Context, msg *tgbotapi.Message) bool {
	switch msg.Text {
	case adminBtnStats:
		b.adminShowStats(ctx, msg.Chat.ID)
	case adminBtnPending:
		b.adminShowPending(ctx, msg.Chat.ID)
	case adminBtnChannels:
		b.adminShowChannels(ctx, msg.Chat.ID)
	case adminBtnEvents:
		b.adminShowEvents(ctx, msg.Chat.ID)
	case adminBtnExport:
		b.adminExport(ctx, msg.Chat.ID)
	case adminBtnResync:
		b.adminResync(ctx, msg.Chat.ID)
	default:
		return false
	}
	return true
}

func (b *Bot) adminShowStats(ctx context.Context, chatID int64) {
	stats, err := b.repo.UserStats(ctx)
	if err != nil {
		b.logError(ctx, err, chatID, "user stats")
		b.sendText(chatID, "❌ Statistika olinmadi")
		return
	}

	var sb strings.Builder
	sb.WriteString("📊 <b>STATISTIKA</b>\n\n")
	sb.WriteString(fmt.Sprintf("👥 Jami: %d\n", stats["total"]))
	sb.WriteString(fmt.Sprintf("✅ Tasdiqlangan: %d\n", stats[models.StatusApproved]))
	sb.WriteString(fmt.Sprintf("⏳ Tekshiruvda: %d\n", stats[models.StatusPendingApproval]))
	sb.WriteString(fmt.Sprintf("💳 To'lov kutilmoqda: %d\n", stats[models.StatusPending]))
	sb.WriteString(fmt.Sprintf("❌ Rad etilgan: %d\n", stats[models.StatusRejected]))

	if event, err := b.eventsSvc.Latest(ctx, models.DefaultLanguage); err == nil && event != nil {
		if es, err := b.eventsSvc.Stats(ctx, event.ID); err == nil {
			sb.WriteString(fmt.Sprintf("\n🎪 <b>%s</b>\n", event.Name))
			sb.WriteString(fmt.Sprintf("👥 Qatnashchilar: %d, ✅ %d, ⏳ %d, ❌ %d\n",
				es.Total, es.Approved, es.PendingApproval, es.Rejected))
		}
	}

	b.sendHTML(chatID, sb.String())
}

func (b *Bot) adminShowPending(ctx context.Context, chatID int64) {
	users, err := b.repo.ListPendingApproval(ctx)
	if err != nil {
		b.logError(ctx, err, chatID, "list pending")
		b.sendText(chatID, "❌ Ro'yxat olinmadi")
		return
	}
	if len(users) == 0 {
		b.sendText(chatID, "✅ Kutilayotgan to'lovlar yo'q")
		return
	}

	text := fmt.Sprintf("⏳ Kutilayotgan to'lovlar: %d ta", len(users))
	if _, err := b.tgService.SendWithInlineKeyboard(chatID, text, pendingListKeyboard(users)); err != nil {
		b.logError(ctx, err, chatID, "send pending list")
	}
}

func (b *Bot) handleReviewPayment(ctx context.Context, cb *tgbotapi.CallbackQuery, rawUserID string) {
	if !b.isAdmin(cb.From.ID) {
		b.answerCallback(cb.ID, "")
		return
	}

	targetID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		b.answerCallback(cb.ID, "")
		return
	}

	user, err := b.repo.GetUser(ctx, targetID)
	if err != nil || user == nil {
		b.alertCallback(cb.ID, "❌ Foydalanuvchi topilmadi")
		return
	}

	eventName := "—"
	if user.EventID.Valid {
		if event, err := b.eventsSvc.Get(ctx, user.EventID.Int64, models.DefaultLanguage); err == nil && event != nil {
			eventName = event.Name
		}
	}

	text := fmt.Sprintf(`
💳 <b>TO'LOV TEKSHIRUVI</b>

👤 <b>Ism:</b> %s
📱 <b>Telefon:</b> %s
🎪 <b>Tadbir:</b> %s
📊 <b>Holat:</b> %s
🆔 <b>User ID:</b> <code>%d</code>
`, user.FullName, user.Phone, eventName,
		i18n.StatusText(user.RegistrationStatus(), models.DefaultLanguage), user.TelegramID)

	msg := tgbotapi.NewMessage(cb.Message.Chat.ID, text)
	msg.ParseMode = models.ParseModeHTML
	msg.ReplyMarkup = adjudicationKeyboard(targetID)
	if _, err := b.tgService.Send(msg); err != nil {
		b.logError(ctx, err, cb.From.ID, "send review card")
	}
	b.answerCallback(cb.ID, "")
}

func (b *Bot) handleAdjudication(ctx context.Context, cb *tgbotapi.CallbackQuery, rawUserID string, approve bool) {
	if !b.isAdmin(cb.From.ID) {
		b.answerCallback(cb.ID, "")
		return
	}
	b.adjudicate(ctx, cb.Message.Chat.ID, cb.From.ID, rawUserID, approve)
	b.answerCallback(cb.ID, "")
}

// adjudicate проводит решение админа и уведомляет участника.
func (b *Bot) adjudicate(ctx context.Context, adminChatID, adminID int64, rawUserID string, approve bool) {
	targetID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		b.sendText(adminChatID, "❌ Noto'g'ri foydalanuvchi ID")
		return
	}

	var user *models.User
	if approve {
		user, err = b.payments.Approve(ctx, targetID, adminID)
	} else {
		user, err = b.payments.Reject(ctx, targetID, adminID)
	}
	if err != nil {
		if errors.Is(err, service.ErrNotAwaitingApproval) {
			status := "-"
			if user != nil {
				status = user.PaymentStatus
			}
			b.sendText(adminChatID, fmt.Sprintf("⚠️ Foydalanuvchi %d tekshiruvda emas (holat: %s)", targetID, status))
			return
		}
		b.logError(ctx, err, adminID, "adjudicate")
		b.sendText(adminChatID, "❌ Xatolik yuz berdi")
		return
	}

	if b.metrics != nil {
		decision := "approved"
		if !approve {
			decision = "rejected"
		}
		b.metrics.PaymentsAdjudicated.WithLabelValues(decision).Inc()
	}

	if approve {
		b.sendText(adminChatID, fmt.Sprintf("✅ Foydalanuvchi %d tasdiqlandi (chipta: %s)", targetID, user.TicketID))
		b.sendTicket(ctx, user)
	} else {
		b.sendText(adminChatID, fmt.Sprintf("❌ Foydalanuvchi %d rad etildi", targetID))
		lang := user.Lang()
		b.sendWithMainMenu(user.TelegramID, lang, i18n.T(lang, "payment_rejected_notice"))
	}
}

// sendTicket отправляет участнику QR-билет после одобрения.
func (b *Bot) sendTicket(ctx context.Context, user *models.User) {
	lang := user.Lang()
	b.sendText(user.TelegramID, i18n.T(lang, "payment_approved_notice"))

	png, err := b.renderer.Render(user.TicketID)
	if err != nil {
		b.logError(ctx, err, user.TelegramID, "render ticket")
		return
	}

	eventName := "—"
	if user.EventID.Valid {
		if event, err := b.eventsSvc.Get(ctx, user.EventID.Int64, lang); err == nil && event != nil {
			eventName = event.Name
		}
	}

	caption := i18n.Tf(lang, "ticket_caption", user.FullName, user.Phone, eventName, user.TicketID)
	if _, err := b.tgService.SendPhotoBytes(user.TelegramID, user.TicketID+".png", png, caption); err != nil {
		b.logError(ctx, err, user.TelegramID, "send ticket photo")
	}
}

// adminCheckin отмечает прибытие по идентификатору с отсканированного билета.
func (b *Bot) adminCheckin(ctx context.Context, msg *tgbotapi.Message) {
	ticketID := strings.TrimSpace(msg.CommandArguments())
	if ticketID == "" {
		b.sendText(msg.Chat.ID, "Foydalanish: /checkin <chipta_id>")
		return
	}
	if b.attendance == nil {
		b.sendText(msg.Chat.ID, "⚠️ Reestr ulanmagan, keldi belgisi qo'yilmadi")
		return
	}

	scanner := msg.From.UserName
	if scanner == "" {
		scanner = strconv.FormatInt(msg.From.ID, 10)
	}

	name, err := b.attendance.MarkArrived(ctx, ticketID, scanner)
	if err != nil {
		b.logError(ctx, err, msg.From.ID, "mark arrived")
		b.sendText(msg.Chat.ID, fmt.Sprintf("❌ Chipta topilmadi: %s", ticketID))
		return
	}
	b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Keldi: %s (%s)", name, ticketID))
}

func (b *Bot) adminShowChannels(ctx context.Context, chatID int64) {
	channels, err := b.repo.ListChannels(ctx)
	if err != nil {
		b.logError(ctx, err, chatID, "list channels")
		b.sendText(chatID, "❌ Kanallar olinmadi")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📢 <b>Kanallar:</b> %d ta\n\n", len(channels)))
	for _, ch := range channels {
		sb.WriteString(fmt.Sprintf("• %s — <code>%s</code>\n", channelDisplayName(ch), ch.ChatID))
	}
	sb.WriteString("\nQo'shish: /add_channel <chat_id> <nom> [username]\nO'chirish: /del_channel <chat_id>")
	b.sendHTML(chatID, sb.String())
}

func (b *Bot) adminAddChannel(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		b.sendText(msg.Chat.ID, "Foydalanish: /add_channel <chat_id> <nom> [username]")
		return
	}

	channel := &models.Channel{
		ChatID: args[0],
		Name:   args[1],
		Type:   "channel",
	}
	if len(args) > 2 {
		channel.Username = args[2]
	}

	if err := b.repo.AddChannel(ctx, channel); err != nil {
		b.logError(ctx, err, msg.From.ID, "add channel")
		b.sendText(msg.Chat.ID, "❌ Kanal qo'shilmadi")
		return
	}
	b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Kanal qo'shildi: %s", channel.Name))
}

func (b *Bot) adminDeleteChannel(ctx context.Context, msg *tgbotapi.Message) {
	chatID := strings.TrimSpace(msg.CommandArguments())
	if chatID == "" {
		b.sendText(msg.Chat.ID, "Foydalanish: /del_channel <chat_id>")
		return
	}

	if err := b.repo.DeleteChannel(ctx, chatID); err != nil {
		b.logError(ctx, err, msg.From.ID, "delete channel")
		b.sendText(msg.Chat.ID, "❌ Kanal o'chirilmadi")
		return
	}
	b.sendText(msg.Chat.ID, "✅ Kanal o'chirildi")
}

func (b *Bot) adminShowEvents(ctx context.Context, chatID int64) {
	events, err := b.eventsSvc.ListActive(ctx, models.DefaultLanguage)
	if err != nil {
		b.logError(ctx, err, chatID, "list events")
		b.sendText(chatID, "❌ Tadbirlar olinmadi")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎪 <b>Faol tadbirlar:</b> %d ta\n\n", len(events)))
	for _, e := range events {
		sb.WriteString(fmt.Sprintf("• [%d] %s — %s %s, %s so'm\n   O'chirish: /event_off_%d\n",
			e.ID, e.Name, e.Date, e.Time, i18n.FormatAmount(e.PaymentAmount), e.ID))
	}
	sb.WriteString("\nYangi tadbir: /add_event keyin 5 qator:\n")
	sb.WriteString("nom uz|ru|en\nmanzil uz|ru|en\nsana\nvaqt\nsumma\n")
	sb.WriteString("Yoqish: /event_on_<id>")
	b.sendHTML(chatID, sb.String())
}

func (b *Bot) adminAddEvent(ctx context.Context, msg *tgbotapi.Message) {
	event, names, addresses, ok := service.ParseEventForm(msg.CommandArguments())
	if !ok {
		b.sendText(msg.Chat.ID, "❌ Forma noto'g'ri. 5 qator kerak: nom, manzil, sana, vaqt, summa")
		return
	}

	if err := b.eventsSvc.Create(ctx, event, names, addresses); err != nil {
		b.logError(ctx, err, msg.From.ID, "create event")
		b.sendText(msg.Chat.ID, "❌ Tadbir qo'shilmadi")
		return
	}
	b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Tadbir qo'shildi: %s [%d]", names[models.LangUz], event.ID))
}

func (b *Bot) adminToggleEvent(ctx context.Context, msg *tgbotapi.Message, rawID string, active bool) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		b.sendText(msg.Chat.ID, "❌ Noto'g'ri tadbir ID")
		return
	}

	if err := b.eventsSvc.SetActive(ctx, id, active); err != nil {
		b.logError(ctx, err, msg.From.ID, "toggle event")
		b.sendText(msg.Chat.ID, "❌ O'zgartirilmadi")
		return
	}
	state := "yoqildi"
	if !active {
		state = "o'chirildi"
	}
	b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Tadbir %d %s", id, state))
}

func (b *Bot) adminResync(ctx context.Context, chatID int64) {
	n, err := b.payments.Resync(ctx)
	if err != nil {
		b.logError(ctx, err, chatID, "ledger resync")
		b.sendText(chatID, fmt.Sprintf("⚠️ Sync to'xtadi: %d ta yozildi, xato: %v", n, err))
		return
	}
	b.sendText(chatID, fmt.Sprintf("✅ Reestr sync tugadi: %d ta yozuv", n))
}
