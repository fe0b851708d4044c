package models

import "time"

// Payment представляет платёж абонента. Записи не изменяются и не удаляются;
// флаг Verified выставляет внешний сервис проверки платежей.
type Payment struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Amount    float64   `json:"amount"`
	Reference string    `json:"reference"` // Внешний референс платежа (uuid)
	Date      time.Time `json:"date"`
	Verified  bool      `json:"verified"`
}

// DummyPayment используется для приёма данных из JSON-запроса на регистрацию платежа.
type DummyPayment struct {
	UserID int64   `json:"user_id" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"` // Сумма (>0)
}
