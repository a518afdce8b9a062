package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-StationBookingService/internal/api/handlers"
)

// TTL лимитера с момента последнего запроса с его IP; истёкшие записи
// вычищаются фоновым сборщиком go-cache
const limiterTTL = 10 * time.Minute

// IPRateLimiter хранит отдельный token-bucket лимитер на каждый IP адрес.
// Лимитеры неактивных IP истекают по TTL, так что карта не растёт
// неограниченно на долгоживущем процессе.
type IPRateLimiter struct {
	ips *gocache.Cache
	mu  sync.Mutex
	r   rate.Limit
	b   int
}

// NewIPRateLimiter создает новый per-IP лимитер: r запросов в секунду,
// burst b
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return newIPRateLimiter(r, b, limiterTTL)
}

func newIPRateLimiter(r rate.Limit, b int, ttl time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		ips: gocache.New(ttl, 2*ttl),
		r:   r,
		b:   b,
	}
}

// GetLimiter возвращает лимитер для IP, создавая его при первом обращении.
// Каждое обращение продлевает TTL записи.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	if cached, ok := i.ips.Get(ip); ok {
		limiter := cached.(*rate.Limiter)
		i.ips.SetDefault(ip, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(i.r, i.b)
	i.ips.SetDefault(ip, limiter)
	return limiter
}

// RateLimit middleware отклоняет запросы сверх лимита с 429 Too Many Requests
func RateLimit(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.GetLimiter(ip).Allow() {
				handlers.RespondError(w, http.StatusTooManyRequests, "превышен лимит запросов")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
