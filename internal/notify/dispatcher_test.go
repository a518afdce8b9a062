package notify

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StationBookingService/internal/domain"
)

type fakeSubsRepo struct {
	mu      sync.Mutex
	subs    map[int64][]*domain.DeviceSubscription
	deleted []string
}

func newFakeSubsRepo() *fakeSubsRepo {
	return &fakeSubsRepo{subs: make(map[int64][]*domain.DeviceSubscription)}
}

func (f *fakeSubsRepo) ListByUserID(_ context.Context, userID int64) ([]*domain.DeviceSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[userID], nil
}

func (f *fakeSubsRepo) DeleteByEndpoint(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	return nil
}

type mockSender struct {
	mu    sync.Mutex
	sent  []string // endpoints
	code  int
	codes map[string]int
}

func (m *mockSender) Send(_ []byte, sub *webpush.Subscription, _ *webpush.Options) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sub.Endpoint)

	code := m.code
	if c, ok := m.codes[sub.Endpoint]; ok {
		code = c
	}
	if code == 0 {
		code = http.StatusCreated
	}
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func (m *mockSender) sentEndpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcher_DeliversToAllDevices(t *testing.T) {
	repo := newFakeSubsRepo()
	repo.subs[7] = []*domain.DeviceSubscription{
		{UserID: 7, Endpoint: "https://push/one", P256DH: "p1", Auth: "a1"},
		{UserID: 7, Endpoint: "https://push/two", P256DH: "p2", Auth: "a2"},
	}
	sender := &mockSender{}

	d := NewDispatcher(repo, nil, &webpush.Options{}, nopLogger{}, 1, 8).WithPushSender(sender)
	d.Start(context.Background())
	defer d.Stop()

	d.Notify(7, "Slot Available", "You have been promoted")

	waitFor(t, func() bool { return len(sender.sentEndpoints()) == 2 })
	assert.ElementsMatch(t, []string{"https://push/one", "https://push/two"}, sender.sentEndpoints())
}

func TestDispatcher_DeletesGoneSubscriptions(t *testing.T) {
	repo := newFakeSubsRepo()
	repo.subs[7] = []*domain.DeviceSubscription{
		{UserID: 7, Endpoint: "https://push/stale", P256DH: "p", Auth: "a"},
		{UserID: 7, Endpoint: "https://push/live", P256DH: "p", Auth: "a"},
	}
	sender := &mockSender{codes: map[string]int{"https://push/stale": http.StatusGone}}

	d := NewDispatcher(repo, nil, &webpush.Options{}, nopLogger{}, 1, 8).WithPushSender(sender)
	d.Start(context.Background())
	defer d.Stop()

	d.Notify(7, "Upcoming Booking", "starts soon")

	waitFor(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.deleted) == 1
	})
	assert.Equal(t, []string{"https://push/stale"}, repo.deleted)
}

func TestDispatcher_NotifyDoesNotBlockWhenQueueFull(t *testing.T) {
	repo := newFakeSubsRepo()
	sender := &mockSender{}

	// Воркеры не запущены — очередь размером 1 переполняется сразу
	d := NewDispatcher(repo, nil, &webpush.Options{}, nopLogger{}, 1, 1).WithPushSender(sender)

	done := make(chan struct{})
	go func() {
		d.Notify(1, "a", "b")
		d.Notify(1, "c", "d")
		d.Notify(1, "e", "f")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on full queue")
	}

	require.Len(t, d.jobs, 1)
}

type recordingMail struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMail) SendEmailWithGracefulDegradation(_ context.Context, _ int64, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, subject)
	return nil
}

func (m *recordingMail) sentSubjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

func TestDispatcher_PushDisabledSkipsSubscriptions(t *testing.T) {
	repo := newFakeSubsRepo()
	repo.subs[7] = []*domain.DeviceSubscription{
		{UserID: 7, Endpoint: "https://push/one", P256DH: "p1", Auth: "a1"},
	}
	sender := &mockSender{}
	mail := &recordingMail{}

	// options == nil — push выключен в конфиге, подписки в базе остаются
	d := NewDispatcher(repo, mail, nil, nopLogger{}, 1, 8).WithPushSender(sender)
	d.Start(context.Background())
	defer d.Stop()

	d.Notify(7, "Booking Confirmed", "see you soon")

	waitFor(t, func() bool { return len(mail.sentSubjects()) == 1 })
	assert.Equal(t, []string{"Booking Confirmed"}, mail.sentSubjects())
	assert.Empty(t, sender.sentEndpoints())
}

func TestDispatcher_NoSubscriptionsIsNoop(t *testing.T) {
	repo := newFakeSubsRepo()
	sender := &mockSender{}

	d := NewDispatcher(repo, nil, &webpush.Options{}, nopLogger{}, 1, 8).WithPushSender(sender)
	d.Start(context.Background())

	d.Notify(42, "title", "body")

	// Stop дожидается воркеров, после него отправок быть не должно
	d.Stop()
	assert.Empty(t, sender.sentEndpoints())
}
