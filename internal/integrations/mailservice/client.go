package mailservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client клиент для работы с почтовым сервисом
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента почтового сервиса
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendEmail отправляет запрос на рассылку письма пользователю
func (c *Client) SendEmail(ctx context.Context, userID int64, subject, body string) error {
	url := fmt.Sprintf("%s/internal/emails", c.baseURL)

	payload, err := json.Marshal(EmailRequest{
		UserID:  userID,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}

// SendEmailWithGracefulDegradation отправляет письмо с graceful degradation.
// Почтовый канал best-effort: при недоступности сервиса возвращается
// ErrServiceDegraded, уведомление уходит только через push
func (c *Client) SendEmailWithGracefulDegradation(ctx context.Context, userID int64, subject, body string) error {
	if err := c.SendEmail(ctx, userID, subject, body); err != nil {
		c.log.Error("MailService unavailable, applying graceful degradation for user_id=%d: %v", userID, err)
		return fmt.Errorf("%w: user_id=%d, error=%v", ErrServiceDegraded, userID, err)
	}

	c.log.Info("Successfully triggered email for user_id=%d, subject=%q", userID, subject)
	return nil
}
