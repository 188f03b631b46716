package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/driveline-ai/fleetguard/internal/notify"
	"github.com/driveline-ai/fleetguard/internal/orchestrator"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

const feedbackIncentive = "10% discount on next service"

// SurveyFeedbackAgent requests post-booking surveys. SMS delivery is
// simulated; when an email sender and owner address are configured the
// survey is also emailed, best-effort.
type SurveyFeedbackAgent struct {
	logger     *logging.Logger
	email      notify.EmailSender
	ownerEmail string
	now        func() time.Time
}

// FeedbackOption customizes the feedback agent.
type FeedbackOption func(*SurveyFeedbackAgent)

// WithEmailDelivery adds email delivery alongside the simulated SMS.
func WithEmailDelivery(sender notify.EmailSender, ownerEmail string) FeedbackOption {
	return func(a *SurveyFeedbackAgent) {
		a.email = sender
		a.ownerEmail = ownerEmail
	}
}

// WithFeedbackClock injects the ack timestamp source.
func WithFeedbackClock(now func() time.Time) FeedbackOption {
	return func(a *SurveyFeedbackAgent) { a.now = now }
}

func NewSurveyFeedbackAgent(logger *logging.Logger, opts ...FeedbackOption) *SurveyFeedbackAgent {
	a := &SurveyFeedbackAgent{
		logger: logger.Component("feedback"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *SurveyFeedbackAgent) RequestFeedback(ctx context.Context, bookingID, vehicleID string) (*orchestrator.FeedbackAck, error) {
	method := "sms"
	if a.email != nil && a.ownerEmail != "" {
		if err := a.email.Send(ctx, notify.EmailMessage{
			To:      a.ownerEmail,
			Subject: "How was your service booking?",
			Body: fmt.Sprintf(
				"Thank you for booking %s for vehicle %s. Reply with your feedback and enjoy a %s.",
				bookingID, vehicleID, feedbackIncentive),
		}); err != nil {
			a.logger.Error("feedback email failed", "booking_id", bookingID, "error", err)
		} else {
			method = "sms+email"
		}
	}

	ack := &orchestrator.FeedbackAck{
		BookingID:      bookingID,
		VehicleID:      vehicleID,
		Status:         "requested",
		DeliveryMethod: method,
		Incentive:      feedbackIncentive,
		Timestamp:      a.now().UTC(),
	}
	a.logger.Info("feedback requested",
		"booking_id", bookingID, "vehicle_id", vehicleID, "delivery", method)
	return ack, nil
}
