package notify

import (
	"context"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

// SubscriptionRepository интерфейс репозитория push-подписок
type SubscriptionRepository interface {
	ListByUserID(ctx context.Context, userID int64) ([]*domain.DeviceSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// PushSender отправка одного web push уведомления
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender реальная отправка через библиотеку webpush
type WebPushSender struct{}

// Send отправляет уведомление через webpush
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// EmailSender best-effort отправка письма
type EmailSender interface {
	SendEmailWithGracefulDegradation(ctx context.Context, userID int64, subject, body string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
