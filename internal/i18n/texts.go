// Package i18n хранит тексты бота на трех языках.
// Тексты перенесены из продакшен-версии без изменений,
// неизвестный язык падает на узбекский.
package i18n

import (
	"fmt"

	"tadbirbot/internal/models"
)

// ChooseLanguage показывается до того, как язык известен.
const ChooseLanguage = "🌐 Tilni tanlang / Выберите язык / Select language:"

var langNames = map[string]string{
	models.LangUz: "O'zbek tili",
	models.LangRu: "Русский язык",
	models.LangEn: "English",
}

// LanguageName возвращает самоназвание языка.
func LanguageName(lang string) string {
	if name, ok := langNames[lang]; ok {
		return name
	}
	return lang
}

var texts = map[string]map[string]string{
	"subscribe_prompt": {
		models.LangUz: "📢 Botdan foydalanish uchun quyidagi kanallarga obuna bo'ling:",
		models.LangRu: "📢 Подпишитесь на следующие каналы для использования бота:",
		models.LangEn: "📢 Subscribe to the following channels to use the bot:",
	},
	"subscription_confirmed": {
		models.LangUz: "✅ Obuna tasdiqlandi!",
		models.LangRu: "✅ Подписка подтверждена!",
		models.LangEn: "✅ Subscription confirmed!",
	},
	"not_subscribed": {
		models.LangUz: "❌ Barcha kanallarga obuna bo'lmagansiz!\nIltimos, avval barcha kanallarga obuna bo'ling.",
		models.LangRu: "❌ Вы не подписаны на все каналы!\nПожалуйста, сначала подпишитесь на все каналы.",
		models.LangEn: "❌ You are not subscribed to all channels!\nPlease subscribe to all channels first.",
	},
	"welcome": {
		models.LangUz: "👋 Assalomu alaykum, %s!",
		models.LangRu: "👋 Здравствуйте, %s!",
		models.LangEn: "👋 Hello, %s!",
	},
	"welcome_back": {
		models.LangUz: "👋 Xush kelibsiz, %s!",
		models.LangRu: "👋 Добро пожаловать, %s!",
		models.LangEn: "👋 Welcome, %s!",
	},
	"language_changed": {
		models.LangUz: "✅ Til o'zgartirildi: %s",
		models.LangRu: "✅ Язык изменен: %s",
		models.LangEn: "✅ Language changed: %s",
	},
	"change_language_prompt": {
		models.LangUz: "🌐 Yangi tilni tanlang:",
		models.LangRu: "🌐 Выберите новый язык:",
		models.LangEn: "🌐 Select new language:",
	},
	"enter_full_name": {
		models.LangUz: "📝 Ism va familiyangizni kiriting (masalan: Aziz Azizov):",
		models.LangRu: "📝 Введите ваше имя и фамилию (например: Aziz Azizov):",
		models.LangEn: "📝 Enter your first and last name (e.g., Aziz Azizov):",
	},
	"continue_full_name": {
		models.LangUz: "📝 Ro'yxatdan o'tishni davom ettirish uchun ism va familiyangizni kiriting (masalan: Aziz Azizov):",
		models.LangRu: "📝 Для продолжения регистрации введите ваше имя и фамилию (например: Aziz Azizov):",
		models.LangEn: "📝 To continue registration, enter your first and last name (e.g., Aziz Azizov):",
	},
	"continue_phone": {
		models.LangUz: "📱 Ro'yxatdan o'tishni davom ettirish uchun telefon raqamingizni yuboring:",
		models.LangRu: "📱 Для продолжения регистрации отправьте ваш номер телефона:",
		models.LangEn: "📱 To continue registration, send your phone number:",
	},
	"err_full_name_format": {
		models.LangUz: "❌ Iltimos, ism va familiyangizni to‘liq kiriting (masalan: Aziz Azizov):",
		models.LangRu: "❌ Пожалуйста, введите имя и фамилию полностью (например: Aziz Azizov):",
		models.LangEn: "❌ Please enter your full name (e.g., Aziz Azizov):",
	},
	"err_first_name_short": {
		models.LangUz: "❌ Ism juda qisqa. Kamida 2 ta harf kiriting:",
		models.LangRu: "❌ Имя слишком короткое. Введите минимум 2 буквы:",
		models.LangEn: "❌ First name is too short. Enter at least 2 letters:",
	},
	"err_first_name_long": {
		models.LangUz: "❌ Ism juda uzun. Qisqartiring:",
		models.LangRu: "❌ Имя слишком длинное. Сократите:",
		models.LangEn: "❌ First name is too long. Shorten it:",
	},
	"err_last_name_short": {
		models.LangUz: "❌ Familiya juda qisqa. Kamida 2 ta harf kiriting:",
		models.LangRu: "❌ Фамилия слишком короткая. Введите минимум 2 буквы:",
		models.LangEn: "❌ Last name is too short. Enter at least 2 letters:",
	},
	"err_last_name_long": {
		models.LangUz: "❌ Familiya juda uzun. Qisqartiring:",
		models.LangRu: "❌ Фамилия слишком длинная. Сократите:",
		models.LangEn: "❌ Last name is too long. Shorten it:",
	},
	"send_phone": {
		models.LangUz: "📱 Telefon raqamingizni yuboring:",
		models.LangRu: "📱 Отправьте ваш номер телефона:",
		models.LangEn: "📱 Send your phone number:",
	},
	"err_phone_format": {
		models.LangUz: "❌ Noto'g'ri telefon raqam formati!\nMisol: +998901234567",
		models.LangRu: "❌ Неверный формат номера телефона!\nПример: +998901234567",
		models.LangEn: "❌ Invalid phone number format!\nExample: +998901234567",
	},
	"err_phone_required": {
		models.LangUz: "❌ Telefon raqam yuboring yoki 'Kontaktni ulashish' tugmasini bosing!",
		models.LangRu: "❌ Отправьте номер телефона или нажмите кнопку 'Поделиться контактом'!",
		models.LangEn: "❌ Send phone number or press 'Share contact' button!",
	},
	"registered_success": {
		models.LangUz: "✅ Ro'yxatdan muvaffaqiyatli o'tdingiz!\n\n👤 Ism: %s\n📱 Telefon: %s",
		models.LangRu: "✅ Вы успешно зарегистрированы!\n\n👤 Имя: %s\n📱 Телефон: %s",
		models.LangEn: "✅ You are successfully registered!\n\n👤 Name: %s\n📱 Phone: %s",
	},
	"not_registered_yet": {
		models.LangUz: "❌ Avval ro'yxatdan o'tishingiz kerak!\nIltimos /start bosing",
		models.LangRu: "❌ Сначала нужно зарегистрироваться!\nПожалуйста нажмите /start",
		models.LangEn: "❌ You need to register first!\nPlease press /start",
	},
	"no_active_events": {
		models.LangUz: "📅 Hozirda faol tadbirlar mavjud emas",
		models.LangRu: "📅 В настоящее время нет активных мероприятий",
		models.LangEn: "📅 No active events available at the moment",
	},
	"already_approved_event": {
		models.LangUz: "✅ Siz ushbu tadbir uchun allaqachon tasdiqlangansiz: %s",
		models.LangRu: "✅ Вы уже подтверждены для этого мероприятия: %s",
		models.LangEn: "✅ You are already approved for this event: %s",
	},
	"already_approved": {
		models.LangUz: "✅ Siz ushbu tadbir uchun allaqachon tasdiqlangansiz!",
		models.LangRu: "✅ Вы уже подтверждены для этого мероприятия!",
		models.LangEn: "✅ You are already approved for this event!",
	},
	"event_details": {
		models.LangUz: "\n🎪 <b>Tadbir:</b> %s\n📅 <b>Sana:</b> %s\n🕐 <b>Vaqt:</b> %s\n📍 <b>Manzil:</b> %s\n💰 <b>To'lov miqdori:</b> %s so'm\n\nTanlang:\n",
		models.LangRu: "\n🎪 <b>Мероприятие:</b> %s\n📅 <b>Дата:</b> %s\n🕐 <b>Время:</b> %s\n📍 <b>Адрес:</b> %s\n💰 <b>Сумма оплаты:</b> %s сум\n\nВыберите:\n",
		models.LangEn: "\n🎪 <b>Event:</b> %s\n📅 <b>Date:</b> %s\n🕐 <b>Time:</b> %s\n📍 <b>Address:</b> %s\n💰 <b>Payment amount:</b> %s UZS\n\nSelect:\n",
	},
	"event_terms": {
		models.LangUz: "\n📜 <b>Tadbir shartlari:</b>\n- Tadbir ma'lumotlarini sir saqlash;\n- Telefonlarni mas'ul xodimlarga topshirish;\n- Ruxsatsiz video yoki rasmga olmaslik;\n- Tartib va intizomga rioya qilish;\n- Tadbirga o‘z vaqtida yetib kelish;\n- To‘lov miqdorini to‘liq amalga oshirish majburiy;\n- To‘lovdan keyin qaytarish mumkin emas.\n\n✅ Shartlarga rozimisiz? Rozilik bering:\n",
		models.LangRu: "\n📜 <b>Условия мероприятия:</b>\n- Соблюдать конфиденциальность информации о мероприятии;\n- Передавать телефоны ответственному персоналу;\n- Не производить фото- и видеосъемку без разрешения;\n- Соблюдать порядок и дисциплину;\n- Прибывать на мероприятие вовремя;\n- Полная оплата обязательна;\n- Возврат средств после оплаты невозможен.\n\n✅ Согласны с условиями? Подтвердите согласие:\n",
		models.LangEn: "\n📜 <b>Event Terms:</b>\n- Keep event information confidential;\n- Hand over phones to responsible personnel;\n- Do not take photos/videos without permission;\n- Maintain order and discipline;\n- Arrive at the event on time;\n- Full payment is mandatory;\n- No refunds after payment.\n\n✅ Agree with the terms? Confirm your consent:\n",
	},
	"payment_requisites": {
		models.LangUz: "\n🎪 <b>Tadbir:</b> %s\n📅 <b>Sana:</b> %s\n🕐 <b>Vaqt:</b> %s\n📍 <b>Manzil:</b> %s\n💰 <b>To'lov miqdori:</b> %s so'm\n\n💳 <b>Karta raqami:</b> <code>%s</code>\n👤 <b>Karta egasi:</b> %s\n\n📸 To'lovdan so'ng chek rasmini yuboring:\n",
		models.LangRu: "\n🎪 <b>Мероприятие:</b> %s\n📅 <b>Дата:</b> %s\n🕐 <b>Время:</b> %s\n📍 <b>Адрес:</b> %s\n💰 <b>Сумма оплаты:</b> %s сум\n\n💳 <b>Номер карты:</b> <code>%s</code>\n👤 <b>Владелец карты:</b> %s\n\n📸 После оплаты отправьте чек:\n",
		models.LangEn: "\n🎪 <b>Event:</b> %s\n📅 <b>Date:</b> %s\n🕐 <b>Time:</b> %s\n📍 <b>Address:</b> %s\n💰 <b>Payment amount:</b> %s UZS\n\n💳 <b>Card number:</b> <code>%s</code>\n👤 <b>Card owner:</b> %s\n\n📸 After payment, send receipt:\n",
	},
	"payment_cancelled": {
		models.LangUz: "❌ To'lov bekor qilindi",
		models.LangRu: "❌ Платеж отменен",
		models.LangEn: "❌ Payment cancelled",
	},
	"err_receipt_photo": {
		models.LangUz: "❌ Iltimos, chekni rasm sifatida yuboring!",
		models.LangRu: "❌ Пожалуйста, отправьте чек как изображение!",
		models.LangEn: "❌ Please send receipt as image!",
	},
	"receipt_sent": {
		models.LangUz: "✅ Chek muvaffaqiyatli yuborildi!\n⏳ Admin tekshiruvi kutilmoqda...",
		models.LangRu: "✅ Чек успешно отправлен!\n⏳ Ожидается проверка администратора...",
		models.LangEn: "✅ Receipt successfully sent!\n⏳ Waiting for admin review...",
	},
	"my_info": {
		models.LangUz: "\n📋 <b>MENING MA'LUMOTLARIM</b>\n\n👤 <b>To'liq ism:</b> %s\n📱 <b>Telefon:</b> %s\n🎪 <b>Tanlangan tadbir:</b> %s\n📊 <b>Holat:</b> %s\n🆔 <b>ID:</b> <code>%s</code>\n🌐 <b>Til:</b> %s\n",
		models.LangRu: "\n📋 <b>МОИ ДАННЫЕ</b>\n\n👤 <b>Полное имя:</b> %s\n📱 <b>Телефон:</b> %s\n🎪 <b>Выбранное мероприятие:</b> %s\n📊 <b>Статус:</b> %s\n🆔 <b>ID:</b> <code>%s</code>\n🌐 <b>Язык:</b> %s\n",
		models.LangEn: "\n📋 <b>MY INFORMATION</b>\n\n👤 <b>Full name:</b> %s\n📱 <b>Phone:</b> %s\n🎪 <b>Selected event:</b> %s\n📊 <b>Status:</b> %s\n🆔 <b>ID:</b> <code>%s</code>\n🌐 <b>Language:</b> %s\n",
	},
	"ticket_caption": {
		models.LangUz: "✅ <b>Tabriklaymiz!</b> To'lovingiz tasdiqlandi.\nBu QR sizning elektron chiptangiz.\n\n🎟 <b>Ishtirokchi:</b> %s\n📱 <b>Telefon:</b> %s\n🎪 <b>Tadbir:</b> %s\n🆔 <b>Chipta raqami:</b> <code>%s</code>\n\n<b>Eslatma!</b>\nBoshqa ishtirokchi tomonidan chiptangiz o'zlashtirilmasligi uchun, ushbu chipta ma'lumotlaringizni sir saqlash tavsiya etiladi!!!\n",
		models.LangRu: "✅ <b>Поздравляем!</b> Ваша оплата подтверждена.\nЭтот QR — ваш электронный билет.\n\n🎟 <b>Участник:</b> %s\n📱 <b>Телефон:</b> %s\n🎪 <b>Мероприятие:</b> %s\n🆔 <b>Номер билета:</b> <code>%s</code>\n\n<b>Важно!</b>\nЧтобы ваш билет не был использован другим участником, храните данные билета в секрете!!!\n",
		models.LangEn: "✅ <b>Congratulations!</b> Your payment has been confirmed.\nThis QR is your e-ticket.\n\n🎟 <b>Participant:</b> %s\n📱 <b>Phone:</b> %s\n🎪 <b>Event:</b> %s\n🆔 <b>Ticket number:</b> <code>%s</code>\n\n<b>Note!</b>\nTo prevent your ticket from being misused by others, keep your ticket information confidential!!!\n",
	},
	"qr_caption": {
		models.LangUz: "🎫 Sizning QR kodingiz\n🆔 <b>ID:</b> <code>%s</code>",
		models.LangRu: "🎫 Ваш QR код\n🆔 <b>ID:</b> <code>%s</code>",
		models.LangEn: "🎫 Your QR code\n🆔 <b>ID:</b> <code>%s</code>",
	},
	"qr_after_approval_only": {
		models.LangUz: "❌ QR kod faqat tasdiqlangan to'lovdan so'ng mavjud!",
		models.LangRu: "❌ QR код доступен только после подтверждения платежа!",
		models.LangEn: "❌ QR code is available only after payment approval!",
	},
	"qr_not_found": {
		models.LangUz: "❌ QR kod topilmadi!",
		models.LangRu: "❌ QR код не найден!",
		models.LangEn: "❌ QR code not found!",
	},
	"payment_status_line": {
		models.LangUz: "💳 To'lov holati: %s\n🎪 Tadbir: %s",
		models.LangRu: "💳 Статус платежа: %s\n🎪 Мероприятие: %s",
		models.LangEn: "💳 Payment status: %s\n🎪 Event: %s",
	},
	"contact_info": {
		models.LangUz: "📞 Aloqa uchun: %s\n\n💬 Savollaringiz bo'lsa, yuqoridagi admin bilan bog'laning.",
		models.LangRu: "📞 Для связи: %s\n\n💬 Если у вас есть вопросы, свяжитесь с администратором выше.",
		models.LangEn: "📞 For contact: %s\n\n💬 If you have questions, contact the admin above.",
	},
	"payment_approved_notice": {
		models.LangUz: "✅ To'lovingiz tasdiqlandi!\nQR chiptangiz quyida:",
		models.LangRu: "✅ Ваша оплата подтверждена!\nВаш QR билет ниже:",
		models.LangEn: "✅ Your payment has been approved!\nYour QR ticket is below:",
	},
	"payment_rejected_notice": {
		models.LangUz: "❌ To'lovingiz rad etildi.\nMa'lumot uchun admin bilan bog'laning.",
		models.LangRu: "❌ Ваша оплата отклонена.\nДля уточнения свяжитесь с администратором.",
		models.LangEn: "❌ Your payment has been rejected.\nContact the admin for details.",
	},
	"error_generic": {
		models.LangUz: "❌ Xatolik yuz berdi!",
		models.LangRu: "❌ Произошла ошибка!",
		models.LangEn: "❌ An error occurred!",
	},
	"rate_limited": {
		models.LangUz: "⏳ Juda ko'p so'rov. Biroz kuting.",
		models.LangRu: "⏳ Слишком много запросов. Подождите немного.",
		models.LangEn: "⏳ Too many requests. Please wait a moment.",
	},

	// Статусы регистрации
	"status_" + models.StatusPending: {
		models.LangUz: "💳 To'lov kutilmoqda",
		models.LangRu: "💳 Ожидается оплата",
		models.LangEn: "💳 Payment pending",
	},
	"status_" + models.StatusPendingApproval: {
		models.LangUz: "⏳ Admin tekshiruvi kutilmoqda",
		models.LangRu: "⏳ Ожидается проверка админа",
		models.LangEn: "⏳ Waiting for admin approval",
	},
	"status_" + models.StatusApproved: {
		models.LangUz: "✅ Tasdiqlangan",
		models.LangRu: "✅ Подтверждено",
		models.LangEn: "✅ Approved",
	},
	"status_" + models.StatusRejected: {
		models.LangUz: "❌ Rad etilgan",
		models.LangRu: "❌ Отклонено",
		models.LangEn: "❌ Rejected",
	},
	"status_" + models.StatusNotRegistered: {
		models.LangUz: "📝 Ro'yxatdan o'tmagan",
		models.LangRu: "📝 Не зарегистрирован",
		models.LangEn: "📝 Not registered",
	},

	// Кнопки
	"btn_events": {
		models.LangUz: "🎪 Tadbirlar",
		models.LangRu: "🎪 Мероприятия",
		models.LangEn: "🎪 Events",
	},
	"btn_my_info": {
		models.LangUz: "ℹ️ Mening ma'lumotlarim",
		models.LangRu: "ℹ️ Мои данные",
		models.LangEn: "ℹ️ My info",
	},
	"btn_contact": {
		models.LangUz: "📞 Aloqa",
		models.LangRu: "📞 Контакт",
		models.LangEn: "📞 Contact",
	},
	"btn_change_language": {
		models.LangUz: "🌐 Tilni o'zgartirish",
		models.LangRu: "🌐 Сменить язык",
		models.LangEn: "🌐 Change language",
	},
	"btn_share_phone": {
		models.LangUz: "📱 Telefon raqamni yuborish",
		models.LangRu: "📱 Отправить номер телефона",
		models.LangEn: "📱 Send phone number",
	},
	"btn_check_subscription": {
		models.LangUz: "✅ Obunani tekshirish",
		models.LangRu: "✅ Проверить подписку",
		models.LangEn: "✅ Check subscription",
	},
	"btn_pay": {
		models.LangUz: "💳 To'lov qilish",
		models.LangRu: "💳 Оплатить",
		models.LangEn: "💳 Pay",
	},
	"btn_cancel": {
		models.LangUz: "❌ Bekor qilish",
		models.LangRu: "❌ Отменить",
		models.LangEn: "❌ Cancel",
	},
	"btn_agree": {
		models.LangUz: "✅ Roziman",
		models.LangRu: "✅ Согласен",
		models.LangEn: "✅ Agree",
	},
	"btn_back_to_main": {
		models.LangUz: "⬅️ Asosiy menyuga qaytish",
		models.LangRu: "⬅️ Вернуться в главное меню",
		models.LangEn: "⬅️ Back to main menu",
	},
	"btn_my_qr": {
		models.LangUz: "🎫 QR kodimni ko'rish",
		models.LangRu: "🎫 Посмотреть мой QR код",
		models.LangEn: "🎫 View my QR code",
	},
	"btn_payment_status": {
		models.LangUz: "💳 To'lov holati",
		models.LangRu: "💳 Статус платежа",
		models.LangEn: "💳 Payment status",
	},
	"btn_approve": {
		models.LangUz: "✅ Tasdiqlash",
		models.LangRu: "✅ Одобрить",
		models.LangEn: "✅ Approve",
	},
	"btn_reject": {
		models.LangUz: "❌ Rad etish",
		models.LangRu: "❌ Отклонить",
		models.LangEn: "❌ Reject",
	},
}

// T возвращает текст по ключу для языка пользователя.
func T(lang, key string) string {
	byLang, ok := texts[key]
	if !ok {
		return key
	}
	if text, ok := byLang[lang]; ok {
		return text
	}
	return byLang[models.DefaultLanguage]
}

// Tf — T с подстановкой аргументов.
func Tf(lang, key string, args ...interface{}) string {
	return fmt.Sprintf(T(lang, key), args...)
}

// StatusText возвращает человекочитаемый статус регистрации.
func StatusText(status, lang string) string {
	key := "status_" + status
	if _, ok := texts[key]; !ok {
		return fmt.Sprintf("Status: %s", status)
	}
	return T(lang, key)
}

// FormatAmount выводит сумму с разделителями тысяч, как в исходных текстах.
func FormatAmount(amount float64) string {
	n := int64(amount)
	if n < 0 {
		return "-" + FormatAmount(-amount)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
