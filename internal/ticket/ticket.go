// Package ticket выдает идентификаторы билетов и рисует QR-коды.
package ticket

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// NewID возвращает новый идентификатор билета.
// Идентификатор стабилен на весь жизненный цикл билета,
// содержимое QR совпадает с ним один в один.
func NewID() string {
	return fmt.Sprintf("TCK-%s", strings.ToUpper(uuid.New().String()[:8]))
}

// Renderer генерирует PNG с QR-кодом билета.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(ticketID string) ([]byte, error) {
	if ticketID == "" {
		return nil, fmt.Errorf("ticket id is empty")
	}

	png, err := qrcode.Encode(ticketID, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}
	return png, nil
}
