package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/simplexsales/backend/config"
)

// gatewaySMSSender posts to a Twilio-style REST gateway.
type gatewaySMSSender struct {
	client     *http.Client
	gatewayURL string
	accountSID string
	authToken  string
	from       string
}

func newGatewaySMSSender(cfg *config.Config) *gatewaySMSSender {
	return &gatewaySMSSender{
		client:     &http.Client{Timeout: 30 * time.Second},
		gatewayURL: cfg.SMSGatewayURL,
		accountSID: cfg.SMSAccountSID,
		authToken:  cfg.SMSAuthToken,
		from:       cfg.SMSFrom,
	}
}

func (s *gatewaySMSSender) send(ctx context.Context, phone, message string) error {
	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", s.from)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", strings.TrimRight(s.gatewayURL, "/"), s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.accountSID, s.authToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned %s", resp.Status)
	}
	return nil
}
