package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"distress-server/internal/config"
	"distress-server/internal/metrics"
	"distress-server/internal/models"
	"distress-server/internal/utils"
	"distress-server/pkg/email"
	"distress-server/pkg/logger"
	"distress-server/pkg/maps"
	"distress-server/pkg/sms"
)

// An alert text that reaches a contact hours late points them at a stale position.
const alertValidity = 4 * time.Hour

// NotificationService tells a user's emergency contacts about a new alert.
type NotificationService interface {
	// Notify sends one message per contact concurrently and returns when every send has settled.
	// Delivery failures are recorded in the result and never returned as errors.
	Notify(ctx context.Context, alert *models.Distress, user *models.User) *models.FanOutResult
}

type notificationService struct {
	sms      sms.SMSProvider
	email    email.EmailProvider
	geocoder maps.Geocoder
	config   *config.NotificationConfig
	lookup   time.Duration
	logger   *logger.Logger
}

// NewNotificationService wires the delivery channels. geocoder may be nil, in which case messages carry
// no street address.
func NewNotificationService(
	smsProvider sms.SMSProvider,
	emailProvider email.EmailProvider,
	geocoder maps.Geocoder,
	cfg *config.NotificationConfig,
	lookupTimeout time.Duration,
	log *logger.Logger,
) NotificationService {
	if lookupTimeout <= 0 {
		lookupTimeout = 3 * time.Second
	}
	return &notificationService{
		sms:      smsProvider,
		email:    emailProvider,
		geocoder: geocoder,
		config:   cfg,
		lookup:   lookupTimeout,
		logger:   log,
	}
}

func (s *notificationService) Notify(ctx context.Context, alert *models.Distress, user *models.User) *models.FanOutResult {
	started := time.Now()
	result := &models.FanOutResult{
		DistressID: alert.ID,
		Total:      len(user.EmergencyContacts),
		Outcomes:   make([]models.NotificationOutcome, len(user.EmergencyContacts)),
	}
	if result.Total == 0 {
		return result
	}

	message := s.composeMessage(ctx, alert, user)
	subject := strings.TrimSpace(s.config.EmailSubject + " " + user.FullName)

	var wg sync.WaitGroup
	for i, contact := range user.EmergencyContacts {
		wg.Add(1)
		go func(i int, contact models.EmergencyContact) {
			defer wg.Done()
			result.Outcomes[i] = s.notifyContact(ctx, contact, subject, message)
		}(i, contact)
	}
	wg.Wait()

	for _, outcome := range result.Outcomes {
		switch outcome.Status {
		case models.NotificationStatusSent:
			result.Sent++
		case models.NotificationStatusFailed:
			result.Failed++
		case models.NotificationStatusSkipped:
			result.Skipped++
		}
		metrics.RecordNotification(string(outcome.Channel), string(outcome.Status))
	}
	metrics.RecordFanOut(time.Since(started))

	s.logger.WithContext(ctx).WithDistressID(alert.ID).WithFields(logger.Fields{
		"total":   result.Total,
		"sent":    result.Sent,
		"failed":  result.Failed,
		"skipped": result.Skipped,
	}).Info("Emergency contact fan-out settled")

	return result
}

func (s *notificationService) notifyContact(ctx context.Context, contact models.EmergencyContact, subject, message string) models.NotificationOutcome {
	outcome := models.NotificationOutcome{Contact: contact.DisplayName()}

	if phone := firstDialable(contact.PhoneNumbers); phone != "" {
		outcome.Channel = models.NotificationChannelSMS
		outcome.Recipient = utils.MaskPhone(phone)

		_, err := s.sms.SendSMS(ctx, &sms.SMSRequest{
			To:       phone,
			Message:  message,
			Category: sms.CategoryAlert,
			ValidFor: alertValidity,
		})
		return s.settle(ctx, outcome, err)
	}

	if address := firstEmail(contact.Emails); address != "" {
		outcome.Channel = models.NotificationChannelEmail
		outcome.Recipient = utils.MaskEmail(address)

		err := s.email.SendEmail(ctx, &email.EmailRequest{
			To:       address,
			Subject:  subject,
			BodyText: message,
		})
		return s.settle(ctx, outcome, err)
	}

	outcome.Channel = models.NotificationChannelNone
	outcome.Status = models.NotificationStatusSkipped
	s.logger.WithContext(ctx).WithField("contact", outcome.Contact).Warn("Emergency contact has no phone number or email, skipping")
	return outcome
}

func (s *notificationService) settle(ctx context.Context, outcome models.NotificationOutcome, err error) models.NotificationOutcome {
	if err != nil {
		outcome.Status = models.NotificationStatusFailed
		outcome.Error = err.Error()
		s.logger.WithContext(ctx).WithError(err).WithFields(logger.Fields{
			"contact":   outcome.Contact,
			"channel":   outcome.Channel,
			"recipient": outcome.Recipient,
		}).Error("Failed to notify emergency contact")
		return outcome
	}

	outcome.Status = models.NotificationStatusSent
	return outcome
}

func (s *notificationService) composeMessage(ctx context.Context, alert *models.Distress, user *models.User) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔴 Distress Signal Sent by your contact %s\n", user.FullName)

	if location, ok := alert.LatestLocation(); ok {
		lat, lng := location.Coords.Latitude, location.Coords.Longitude
		fmt.Fprintf(&b, "📍 Current Location: %s%s,%s\n", utils.MapsLinkBase, formatCoord(lat), formatCoord(lng))
		if address := s.nearestAddress(ctx, lat, lng); address != "" {
			fmt.Fprintf(&b, "Near: %s\n", address)
		}
	}

	b.WriteString("🔗 Additional Details:\n")
	if details, ok := alert.LatestDetails(); ok {
		fmt.Fprintf(&b, "Time Sent: %s\n", details.TimeAdded.Local().Format(utils.NotificationTime))
		fmt.Fprintf(&b, "Battery Level: %s%%\n", FormatBatteryLevel(details.BatteryLevel))
		if details.PhoneStatus != "" {
			fmt.Fprintf(&b, "Phone Status: %s\n", details.PhoneStatus)
		}
	}

	b.WriteString("If you are nearby or can assist, please contact them or the authorities immediately! 🚑🚓\n")
	b.WriteString("Stay safe and act quickly.\n")
	fmt.Fprintf(&b, "Escalate distress to admin: %s", EscalationLink(s.config.EscalationBaseURL, alert.ID.Hex()))

	return b.String()
}

func (s *notificationService) nearestAddress(ctx context.Context, lat, lng float64) string {
	if s.geocoder == nil {
		return ""
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.lookup)
	defer cancel()

	resp, err := s.geocoder.ReverseGeocode(lookupCtx, lat, lng)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Warn("Reverse geocoding failed, sending coordinates only")
		return ""
	}
	return resp.FirstAddress()
}

// FormatBatteryLevel rounds a numeric level to a whole percent. Non-numeric input is returned as is.
func FormatBatteryLevel(level string) string {
	value, err := strconv.ParseFloat(strings.TrimSpace(level), 64)
	if err != nil {
		return level
	}
	return strconv.FormatFloat(math.Round(value), 'f', 0, 64)
}

func EscalationLink(baseURL, distressID string) string {
	separator := "?"
	if strings.Contains(baseURL, "?") {
		separator = "&"
	}
	return baseURL + separator + "id=" + distressID
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstDialable(phones []models.PhoneNumber) string {
	for _, phone := range phones {
		if dialable := utils.NormalizePhone(phone.Dialable(), phone.CountryCode); dialable != "" {
			return dialable
		}
	}
	return ""
}

func firstEmail(emails []string) string {
	for _, address := range emails {
		if trimmed := strings.TrimSpace(address); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
