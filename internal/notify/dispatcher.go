package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Message kinds, matching the channel a message travels over.
const (
	KindEmail = "email"
	KindSMS   = "sms"
)

// Message is a transactional notification waiting to be delivered.
type Message struct {
	To      string
	Kind    string
	Subject string
	Body    string
}

// Dispatcher delivers a single message. Implementations return errors as
// values and never panic; delivery failure must not fail the write that
// produced the message.
type Dispatcher interface {
	Send(ctx context.Context, msg Message) error
}

// EmailSender posts messages to an HTTP transactional-email provider.
type EmailSender struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

// NewEmailSender creates an EmailSender for the given provider endpoint.
func NewEmailSender(apiURL, apiKey, from string) *EmailSender {
	return &EmailSender{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send posts the message to the provider API.
func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if s.apiURL == "" {
		logrus.WithField("to", msg.To).Warn("email provider not configured, dropping message")
		return nil
	}

	body, err := json.Marshal(emailPayload{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}

	return nil
}

// SMSSender delivers messages through Twilio.
type SMSSender struct {
	client *twilio.RestClient
	from   string
}

// NewSMSSender creates an SMSSender with Twilio credentials.
func NewSMSSender(accountSID, authToken, from string) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSSender{client: client, from: from}
}

// Send delivers the message body as an SMS.
func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	if s.from == "" {
		logrus.WithField("to", msg.To).Warn("sms provider not configured, dropping message")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.To)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)

	_, err := s.client.Api.CreateMessage(params)
	return err
}

// Router picks a channel-specific dispatcher by message kind.
type Router struct {
	Email Dispatcher
	SMS   Dispatcher
}

// Send routes the message to the dispatcher for its kind.
func (r *Router) Send(ctx context.Context, msg Message) error {
	switch msg.Kind {
	case KindEmail:
		return r.Email.Send(ctx, msg)
	case KindSMS:
		return r.SMS.Send(ctx, msg)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}
