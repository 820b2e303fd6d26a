package services

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// NotifyErrorKind classifies why an alert failed to send.
type NotifyErrorKind string

const (
	NotifyTimeout          NotifyErrorKind = "timeout"
	NotifyConnectionError  NotifyErrorKind = "connection_error"
	NotifyNonSuccessStatus NotifyErrorKind = "non_success_status"
	NotifyUnexpectedError  NotifyErrorKind = "unexpected_error"
)

// NotifyError is the failure result of a single alert send attempt. It is
// logged by the dispatcher and never surfaced to the sensor device.
type NotifyError struct {
	Kind       NotifyErrorKind
	StatusCode int
	Body       string
	Err        error
}

func (e *NotifyError) Error() string {
	switch e.Kind {
	case NotifyNonSuccessStatus:
		return fmt.Sprintf("notification failed with status %d: %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("notification failed (%s): %v", e.Kind, e.Err)
	}
}

func (e *NotifyError) Unwrap() error {
	return e.Err
}

// Notifier sends an external alert for a low water level reading.
type Notifier interface {
	Notify(waterLevel float64, timestamp time.Time) error
	Configured() bool
}

// TelegramNotifier delivers alerts through the Telegram bot sendMessage API.
type TelegramNotifier struct {
	client    *resty.Client
	apiBase   string
	botToken  string
	chatID    string
	threshold float64
}

const telegramAPIBase = "https://api.telegram.org"

func NewTelegramNotifier(botToken, chatID string, threshold float64, timeout time.Duration) *TelegramNotifier {
	client := resty.New().SetTimeout(timeout)
	return &TelegramNotifier{
		client:    client,
		apiBase:   telegramAPIBase,
		botToken:  botToken,
		chatID:    chatID,
		threshold: threshold,
	}
}

// Configured reports whether bot credentials are present. An unconfigured
// notifier treats every send as a successful no-op.
func (n *TelegramNotifier) Configured() bool {
	return n.botToken != "" && n.chatID != ""
}

// Notify sends one alert message and classifies any failure. It never retries
// and never panics past this boundary.
func (n *TelegramNotifier) Notify(waterLevel float64, timestamp time.Time) (err error) {
	if !n.Configured() {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = &NotifyError{Kind: NotifyUnexpectedError, Err: fmt.Errorf("panic during notification: %v", r)}
		}
	}()

	message := fmt.Sprintf(
		"🚨 *Water Level Alert*\n\nWater level is at %g (threshold: %g)\nTime: %s",
		waterLevel, n.threshold, timestamp.Format("2006-01-02 15:04:05"),
	)

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	resp, restErr := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"chat_id":    n.chatID,
			"text":       message,
			"parse_mode": "Markdown",
		}).
		Post(url)

	if restErr != nil {
		if isTimeout(restErr) {
			return &NotifyError{Kind: NotifyTimeout, Err: restErr}
		}
		return &NotifyError{Kind: NotifyConnectionError, Err: restErr}
	}

	if resp.IsError() {
		return &NotifyError{
			Kind:       NotifyNonSuccessStatus,
			StatusCode: resp.StatusCode(),
			Body:       string(resp.Body()),
		}
	}

	log.Println("✅ Water level alert sent successfully")
	return nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
