package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	errs "workshop-booking/pkg/errors"
)

// MailGatewayConfig configures the HTTP mail gateway notifier.
type MailGatewayConfig struct {
	URL        string
	APIKey     string
	FromEmail  string
	FromName   string
	AdminEmail string
	Timeout    time.Duration
}

// MailGatewayNotifier posts intents as JSON mail requests to an external
// mail gateway. Sentence content stays with the gateway's templates; the
// core only supplies the structured intent data.
type MailGatewayNotifier struct {
	config     MailGatewayConfig
	httpClient *http.Client
}

var _ Notifier = (*MailGatewayNotifier)(nil)

func NewMailGatewayNotifier(config MailGatewayConfig) *MailGatewayNotifier {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &MailGatewayNotifier{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type mailRequest struct {
	To       string          `json:"to"`
	ToName   string          `json:"to_name,omitempty"`
	From     string          `json:"from"`
	FromName string          `json:"from_name,omitempty"`
	Template string          `json:"template"`
	Data     json.RawMessage `json:"data"`
}

func (n *MailGatewayNotifier) Notify(intent Intent) error {
	to, toName := intent.Guardian.Email, intent.Guardian.Name
	if intent.Kind == KindAdminNotice {
		to, toName = n.config.AdminEmail, ""
	}
	if to == "" {
		return errs.NewValidation("notify.Notify", "intent has no recipient", nil)
	}

	data, err := intent.MarshalData()
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}
	body, err := json.Marshal(mailRequest{
		To:       to,
		ToName:   toName,
		From:     n.config.FromEmail,
		FromName: n.config.FromName,
		Template: string(intent.Kind),
		Data:     data,
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.config.APIKey)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send mail request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail gateway returned status %d", resp.StatusCode)
	}
	return nil
}
