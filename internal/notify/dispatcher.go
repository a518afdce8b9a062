package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
)

// Message одно уведомление пользователю
type Message struct {
	UserID int64
	Title  string
	Body   string
}

// Dispatcher fire-and-forget доставка уведомлений через пул воркеров.
// Notify никогда не блокирует вызывающего: при переполненной очереди
// сообщение отбрасывается с предупреждением в лог.
type Dispatcher struct {
	subs    SubscriptionRepository
	sender  PushSender
	mail    EmailSender
	options *webpush.Options
	logger  Logger

	workers int
	jobs    chan Message

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewDispatcher создает новый диспетчер уведомлений.
// mail может быть nil, если почтовый канал выключен.
func NewDispatcher(
	subs SubscriptionRepository,
	mail EmailSender,
	options *webpush.Options,
	logger Logger,
	workers, queueSize int,
) *Dispatcher {
	return &Dispatcher{
		subs:    subs,
		sender:  &WebPushSender{},
		mail:    mail,
		options: options,
		logger:  logger,
		workers: workers,
		jobs:    make(chan Message, queueSize),
	}
}

// WithPushSender заменяет отправителя push-уведомлений (для тестирования)
func (d *Dispatcher) WithPushSender(sender PushSender) *Dispatcher {
	d.sender = sender
	return d
}

// Start запускает воркеры доставки
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	d.started = true
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx, i)
	}
	d.logger.Info("Dispatcher: started %d notification workers, queue=%d", d.workers, cap(d.jobs))
	if d.options == nil {
		d.logger.Info("Dispatcher: push delivery disabled, notifications go to mail channel only")
	}
}

// Stop останавливает воркеры и дожидается обработки текущих сообщений
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.started = false
	cancel := d.cancel
	d.mu.Unlock()

	cancel()
	d.wg.Wait()
	d.logger.Info("Dispatcher: stopped")
}

// Notify ставит уведомление в очередь доставки. Не блокирует: при
// заполненной очереди сообщение отбрасывается.
func (d *Dispatcher) Notify(userID int64, title, body string) {
	select {
	case d.jobs <- Message{UserID: userID, Title: title, Body: body}:
	default:
		d.logger.Warn("Dispatcher: queue full, dropping notification for user=%d title=%q", userID, title)
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.jobs:
			d.deliver(ctx, msg)
		}
	}
}

// deliver рассылает одно сообщение по всем каналам: web push на каждое
// устройство пользователя и best-effort письмо
func (d *Dispatcher) deliver(ctx context.Context, msg Message) {
	d.deliverPush(ctx, msg)

	if d.mail != nil {
		// Ошибки почтового канала уже залогированы клиентом
		_ = d.mail.SendEmailWithGracefulDegradation(ctx, msg.UserID, msg.Title, msg.Body)
	}
}

func (d *Dispatcher) deliverPush(ctx context.Context, msg Message) {
	// Push-канал выключен: подписки могут быть сохранены, но доставки нет
	if d.options == nil {
		return
	}

	subscriptions, err := d.subs.ListByUserID(ctx, msg.UserID)
	if err != nil {
		d.logger.Error("Dispatcher: failed to list subscriptions for user=%d: %v", msg.UserID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(map[string]string{
		"title": msg.Title,
		"body":  msg.Body,
	})
	if err != nil {
		d.logger.Error("Dispatcher: failed to marshal payload: %v", err)
		return
	}

	for _, sub := range subscriptions {
		wpSub := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256DH,
				Auth:   sub.Auth,
			},
		}

		resp, err := d.sender.Send(payload, wpSub, d.options)
		if err != nil {
			d.logger.Error("Dispatcher: failed to send push to %s: %v", sub.Endpoint, err)
			continue
		}
		resp.Body.Close()

		// 410 Gone — подписка отозвана браузером, удаляем
		if resp.StatusCode == http.StatusGone {
			d.logger.Info("Dispatcher: subscription expired, deleting endpoint=%s", sub.Endpoint)
			if err := d.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				d.logger.Error("Dispatcher: failed to delete expired subscription: %v", err)
			}
		}
	}
}
