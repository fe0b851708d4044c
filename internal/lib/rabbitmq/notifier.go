package rabbitmq

import (
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/hotspot-billing/internal/models"
)

// Notifier публикует уведомления биллинга в обменник notifications.
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier создает Notifier поверх открытого канала.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// NotifyExpired публикует уведомление об отключении абонента с истёкшим периодом.
func (n *Notifier) NotifyExpired(notice models.ExpiryNotice) error {
	return PublishMessage(n.ch, "notifications", "expired", notice)
}
