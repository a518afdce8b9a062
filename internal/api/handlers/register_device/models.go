package register_device

import "github.com/m04kA/SMC-StationBookingService/internal/domain"

// RegisterDeviceRequest HTTP request model: web push подписка браузера
type RegisterDeviceRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256DH string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// RegisterDeviceResponse результат регистрации устройства
type RegisterDeviceResponse struct {
	ID int64 `json:"id"`
}

// Valid проверяет обязательные поля подписки
func (r *RegisterDeviceRequest) Valid() bool {
	return r.Endpoint != "" && r.Keys.P256DH != "" && r.Keys.Auth != ""
}

// ToDomainSubscription конвертирует запрос в domain-модель
func (r *RegisterDeviceRequest) ToDomainSubscription(userID int64) *domain.DeviceSubscription {
	return &domain.DeviceSubscription{
		UserID:   userID,
		Endpoint: r.Endpoint,
		P256DH:   r.Keys.P256DH,
		Auth:     r.Keys.Auth,
	}
}
