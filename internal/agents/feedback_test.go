package agents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driveline-ai/fleetguard/internal/notify"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

type recordingEmailSender struct {
	sent []notify.EmailMessage
	err  error
}

func (s *recordingEmailSender) Send(_ context.Context, msg notify.EmailMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestSurveyFeedbackAgentSMSOnly(t *testing.T) {
	a := NewSurveyFeedbackAgent(logging.New("error"))

	ack, err := a.RequestFeedback(context.Background(), "BK-VH-1-1234", "VH-1")
	require.NoError(t, err)

	assert.Equal(t, "BK-VH-1-1234", ack.BookingID)
	assert.Equal(t, "VH-1", ack.VehicleID)
	assert.Equal(t, "requested", ack.Status)
	assert.Equal(t, "sms", ack.DeliveryMethod)
	assert.Equal(t, "10% discount on next service", ack.Incentive)
	assert.False(t, ack.Timestamp.IsZero())
}

func TestSurveyFeedbackAgentEmailsWhenConfigured(t *testing.T) {
	sender := &recordingEmailSender{}
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := NewSurveyFeedbackAgent(logging.New("error"),
		WithEmailDelivery(sender, "owner@example.com"),
		WithFeedbackClock(func() time.Time { return at }))

	ack, err := a.RequestFeedback(context.Background(), "BK-VH-2-2000", "VH-2")
	require.NoError(t, err)

	assert.Equal(t, "sms+email", ack.DeliveryMethod)
	assert.Equal(t, at, ack.Timestamp)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "owner@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Body, "BK-VH-2-2000")
}

func TestSurveyFeedbackAgentEmailFailureFallsBackToSMS(t *testing.T) {
	sender := &recordingEmailSender{err: errors.New("smtp down")}
	a := NewSurveyFeedbackAgent(logging.New("error"),
		WithEmailDelivery(sender, "owner@example.com"))

	ack, err := a.RequestFeedback(context.Background(), "BK-VH-3-3000", "VH-3")
	require.NoError(t, err)
	assert.Equal(t, "sms", ack.DeliveryMethod)
}
