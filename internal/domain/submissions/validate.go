package submissions

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MalavS298/basiscpk/internal/apperr"
)

func parseHours(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Validation("hours is required")
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return 0, apperr.Validation("hours must be a non-negative number")
	}
	return roundHours(hours), nil
}

func parseServiceType(raw string) (ServiceType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ServiceSynchronous, nil
	}
	serviceType := ServiceType(raw)
	if !serviceType.Valid() {
		return "", apperr.Validation("service_type must be synchronous or asynchronous")
	}
	return serviceType, nil
}

// parseServiceDate accepts YYYY-MM-DD. An empty value means today; a date after
// today is rejected.
func parseServiceDate(raw string, now time.Time) (time.Time, error) {
	today := truncateDay(now)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return today, nil
	}
	date, err := time.ParseInLocation(DateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, apperr.Validation("service_date must be formatted as YYYY-MM-DD")
	}
	if date.After(today) {
		return time.Time{}, apperr.Validation("service_date cannot be in the future")
	}
	return date, nil
}

func (s *Service) buildSubmission(userID string, input CreateInput) (*Submission, error) {
	hours, err := parseHours(input.Hours)
	if err != nil {
		return nil, err
	}
	serviceType, err := parseServiceType(input.ServiceType)
	if err != nil {
		return nil, err
	}
	now := s.now()
	serviceDate, err := parseServiceDate(input.ServiceDate, now)
	if err != nil {
		return nil, err
	}

	imageURL := optionalString(input.ImageURL)
	if serviceType == ServiceAsynchronous && imageURL == nil {
		return nil, apperr.Validation("asynchronous submissions require an image")
	}

	return &Submission{
		UserID:      userID,
		Hours:       hours,
		Description: optionalString(input.Description),
		ImageURL:    imageURL,
		ServiceDate: serviceDate,
		ServiceType: serviceType,
		Status:      StatusPending,
		SubmittedAt: now,
	}, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func roundHours(hours float64) float64 {
	return math.Round(hours*100) / 100
}

func toHundredths(hours float64) int64 {
	return int64(math.Round(hours * 100))
}

func fromHundredths(hundredths int64) float64 {
	return float64(hundredths) / 100
}
