package models

import "time"

// SyncReport — итог одного прохода синхронизации базы с роутером.
type SyncReport struct {
	Removed         []string `json:"removed"`          // Удалённые из базы логины
	UnmatchedRouter []string `json:"unmatched_router"` // Логины на роутере без записи в базе
	DatabaseTotal   int      `json:"database_total"`
	RouterTotal     int      `json:"router_total"`
}

// Stats — агрегированная статистика по базе биллинга.
// Считается по запросу, не хранится. ExpiredUsers определяется
// по expiry < now независимо от флага is_active.
type Stats struct {
	TotalUsers    int `json:"total_users"`
	ActiveUsers   int `json:"active_users"`
	ExpiredUsers  int `json:"expired_users"`
	TotalPayments int `json:"total_payments"`
}

// Event — запись журнала операций биллинга.
type Event struct {
	ID        int64     `json:"id"`
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
}

// ExpiryNotice — уведомление об отключении абонента с истёкшим периодом,
// публикуется в очередь нотификаций.
type ExpiryNotice struct {
	Username string    `json:"username"`
	PlanID   string    `json:"plan_id"`
	Expiry   time.Time `json:"expiry"`
}
