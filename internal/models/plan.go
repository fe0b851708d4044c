package models

import "time"

// Plan описывает тариф доступа: длительность оплаченного периода и цену.
// Тарифы неизменяемы и загружаются при старте из каталога.
type Plan struct {
	ID          string        `json:"id"`
	Duration    time.Duration `json:"duration"`     // Длительность оплаченного периода
	Price       int           `json:"price"`        // Цена тарифа
	UptimeLimit string        `json:"uptime_limit"` // limit-uptime для профиля хотспота, формат RouterOS ("1d", "30d")
}
