package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"

	"tadbirbot/internal/models"
)

// adminExport собирает Excel по тасдикланган участникам свежего мероприятия
// и отправляет его админу документом.
func (b *Bot) adminExport(ctx context.Context, chatID int64) {
	event, err := b.eventsSvc.Latest(ctx, models.DefaultLanguage)
	if err != nil {
		b.logError(ctx, err, chatID, "latest event")
		b.sendText(chatID, "❌ Tadbir topilmadi")
		return
	}
	if event == nil {
		b.sendText(chatID, "📅 Faol tadbir yo'q")
		return
	}

	users, err := b.repo.ListApprovedByEvent(ctx, event.ID)
	if err != nil {
		b.logError(ctx, err, chatID, "list approved")
		b.sendText(chatID, "❌ Ro'yxat olinmadi")
		return
	}

	data, err := buildAttendeesWorkbook(event, users)
	if err != nil {
		b.logError(ctx, err, chatID, "build workbook")
		b.sendText(chatID, "❌ Fayl tayyorlanmadi")
		return
	}

	fileName := fmt.Sprintf("attendees_%d_%s.xlsx", event.ID, time.Now().Format("2006-01-02"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = fmt.Sprintf("🎪 %s — %d ishtirokchi", event.Name, len(users))
	if _, err := b.tgService.Send(doc); err != nil {
		b.logError(ctx, err, chatID, "send export")
	}
}

func buildAttendeesWorkbook(event *models.Event, users []models.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ishtirokchilar"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — %s %s", event.Name, event.Date, event.Time))
	_ = f.MergeCell(sheetName, "A1", "F1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"№", "ISM FAMILIYA", "TELEFON RAQAM", "CHIPTA ID", "TELEGRAM ID", "HOLAT"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, user := range users {
		row := i + 3
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), user.FullName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), user.Phone)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), user.TicketID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), user.TelegramID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), user.PaymentStatus)
	}

	_ = f.SetColWidth(sheetName, "A", "A", 6)
	_ = f.SetColWidth(sheetName, "B", "B", 28)
	_ = f.SetColWidth(sheetName, "C", "C", 18)
	_ = f.SetColWidth(sheetName, "D", "D", 18)
	_ = f.SetColWidth(sheetName, "E", "E", 14)
	_ = f.SetColWidth(sheetName, "F", "F", 14)

	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %v", err)
	}
	return buf.Bytes(), nil
}
