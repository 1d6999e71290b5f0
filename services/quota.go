package services

import (
	"fmt"
	"log"
	"math"
	"time"

	"sensegrid-server/repositories"
)

// DefaultQuotaDPM is the default quota in data points per month.
const DefaultQuotaDPM = 25000

// QuotaStats is an observational usage snapshot. Nothing here deletes
// data; quota evaluation is advice, the retention sweep is the only
// physical remover.
type QuotaStats struct {
	TotalDataPoints  int64      `json:"total_data_points"`
	QuotaLimit       int        `json:"quota_limit"`
	QuotaExceeded    bool       `json:"quota_exceeded"`
	UsagePercent     float64    `json:"usage_percent"`
	RemainingQuota   int64      `json:"remaining_quota"`
	OldestTimestamp  *time.Time `json:"oldest_timestamp"`
	NewestTimestamp  *time.Time `json:"newest_timestamp"`
	DateRangeApplied bool       `json:"date_range_applied"`
	StartDate        string     `json:"start_date,omitempty"`
	EndDate          string     `json:"end_date,omitempty"`
}

// RangeCheck is the advisory verdict on whether a date range exceeds
// the quota. The caller (a graphing client) decides whether to request
// a coarser view; the manager never truncates.
type RangeCheck struct {
	WouldExceed       bool   `json:"would_exceed"`
	DataPointsInRange int64  `json:"data_points_in_range"`
	QuotaLimit        int    `json:"quota_limit"`
	SuggestedQuota    int    `json:"suggested_quota"`
	ShouldLimit       bool   `json:"should_limit"`
	LimitTo           int64  `json:"limit_to"`
	Message           string `json:"message"`
}

type QuotaService struct {
	readings repositories.SensorReadingRepository
}

func NewQuotaService(readings repositories.SensorReadingRepository) *QuotaService {
	return &QuotaService{readings: readings}
}

// Stats computes quota usage over all data, or over [startDate,
// endDate] when both are given.
func (s *QuotaService) Stats(quotaLimit int, startDate, endDate string) (*QuotaStats, error) {
	if quotaLimit < 1 {
		return nil, fmt.Errorf("%w: quota_limit must be >= 1", ErrInvalidParameter)
	}

	var (
		total          int64
		oldest, newest *time.Time
		err            error
		ranged         = startDate != "" && endDate != ""
	)

	if ranged {
		window, werr := WindowFromRange(startDate, endDate)
		if werr != nil {
			return nil, werr
		}
		if total, err = s.readings.CountInRange(window.Start, window.End); err != nil {
			return nil, err
		}
		if oldest, newest, err = s.readings.BoundsInRange(window.Start, window.End); err != nil {
			return nil, err
		}
	} else {
		if total, err = s.readings.Count(); err != nil {
			return nil, err
		}
		if oldest, newest, err = s.readings.Bounds(); err != nil {
			return nil, err
		}
	}

	usage := float64(total) / float64(quotaLimit) * 100
	remaining := int64(quotaLimit) - total
	if remaining < 0 {
		remaining = 0
	}

	return &QuotaStats{
		TotalDataPoints:  total,
		QuotaLimit:       quotaLimit,
		QuotaExceeded:    total > int64(quotaLimit),
		UsagePercent:     math.Round(usage*100) / 100,
		RemainingQuota:   remaining,
		OldestTimestamp:  oldest,
		NewestTimestamp:  newest,
		DateRangeApplied: ranged,
		StartDate:        startDate,
		EndDate:          endDate,
	}, nil
}

// CheckDateRange reports whether [startDate, endDate] would exceed
// quotaLimit, with a suggested quota carrying 20% headroom when it
// does.
func (s *QuotaService) CheckDateRange(startDate, endDate string, quotaLimit int) (*RangeCheck, error) {
	if quotaLimit < 1 {
		return nil, fmt.Errorf("%w: quota_limit must be >= 1", ErrInvalidParameter)
	}
	window, err := WindowFromRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	count, err := s.readings.CountInRange(window.Start, window.End)
	if err != nil {
		return nil, err
	}

	wouldExceed := count > int64(quotaLimit)

	suggested := quotaLimit
	limitTo := count
	if wouldExceed {
		suggested = int(math.Ceil(float64(count) * 1.2))
		limitTo = int64(quotaLimit)
		log.Printf("[Quota] Range %s..%s holds %d points, exceeds limit %d", startDate, endDate, count, quotaLimit)
	}

	return &RangeCheck{
		WouldExceed:       wouldExceed,
		DataPointsInRange: count,
		QuotaLimit:        quotaLimit,
		SuggestedQuota:    suggested,
		ShouldLimit:       wouldExceed,
		LimitTo:           limitTo,
		Message:           fmt.Sprintf("Date range contains %d data points. Quota limit is %d.", count, quotaLimit),
	}, nil
}
