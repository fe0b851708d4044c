// Package models содержит доменные структуры биллинга хотспота:
// абонентов, платежи, тарифы и снимки активных сессий роутера,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// User представляет абонента хотспота.
// Запись принадлежит базе биллинга; роутер хранит только учётные данные.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"` // Логин хотспота (уникальный)
	PasswordHash string    `json:"-"`        // bcrypt-хэш пароля
	PlanID       string    `json:"plan_id"`  // Идентификатор тарифа
	Expiry       time.Time `json:"expiry"`   // Дата окончания оплаченного периода
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Expired сообщает, истёк ли оплаченный период на момент now.
// Статус вычисляется по времени при чтении и не кешируется во флаге IsActive.
func (u *User) Expired(now time.Time) bool {
	return u.Expiry.Before(now)
}

// DummyUser используется для приёма данных из JSON-запроса на создание абонента.
type DummyUser struct {
	Username string `json:"username" validate:"required,alphanum"` // Логин хотспота
	Password string `json:"password" validate:"required,min=4"`    // Пароль, хэшируется перед сохранением
	PlanID   string `json:"plan_id" validate:"required"`           // Идентификатор тарифа
}

// DummyExtend — данные запроса на продление подписки.
type DummyExtend struct {
	Days int `json:"days" validate:"required,gt=0"` // Количество дней продления
}
