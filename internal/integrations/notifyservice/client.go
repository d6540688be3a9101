package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с NotifyService
// Доставка fire-and-forget: отказ доставки никогда не влияет на принятое
// решение планировщика, вызывающая сторона только логирует ошибку
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента NotifyService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Notify отправляет уведомление
// MessageID проставляется автоматически и служит ключом идемпотентности на стороне сервиса
func (c *Client) Notify(ctx context.Context, recipient RecipientSelector, event, message string) error {
	notification := Notification{
		MessageID: uuid.NewString(),
		Recipient: recipient,
		Event:     event,
		Message:   message,
	}

	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal notification: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/notifications", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Message-ID", notification.MessageID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusCreated:
		c.log.Info("Notify: message_id=%s event=%s delivered", notification.MessageID, event)
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}
