package services

import (
	"fmt"
	"log"
	"time"

	"sensegrid-server/repositories"
)

// RetentionStats describes the stored series as a whole.
type RetentionStats struct {
	TotalReadings int64  `json:"total_readings"`
	OldestDate    string `json:"oldest_date,omitempty"`
	NewestDate    string `json:"newest_date,omitempty"`
	DataAgeDays   int    `json:"data_age_days"`
}

// CleanupResult reports one age-based sweep.
type CleanupResult struct {
	Deleted    int64  `json:"deleted"`
	CutoffDate string `json:"cutoff_date"`
	Message    string `json:"message"`
}

// RetentionService performs the only physical deletion of readings:
// an unconditional age-based sweep, independent of quota evaluation.
type RetentionService struct {
	readings repositories.SensorReadingRepository
}

func NewRetentionService(readings repositories.SensorReadingRepository) *RetentionService {
	return &RetentionService{readings: readings}
}

func (s *RetentionService) Stats() (*RetentionStats, error) {
	total, err := s.readings.Count()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &RetentionStats{}, nil
	}

	oldest, newest, err := s.readings.Bounds()
	if err != nil {
		return nil, err
	}

	stats := &RetentionStats{TotalReadings: total}
	if oldest != nil && newest != nil {
		stats.OldestDate = oldest.UTC().Format(time.RFC3339)
		stats.NewestDate = newest.UTC().Format(time.RFC3339)
		stats.DataAgeDays = int(newest.Sub(*oldest).Hours() / 24)
	}
	return stats, nil
}

// Cleanup deletes all readings older than now minus days. Irreversible
// and quota-blind; the HTTP layer bounds days to [1,365], this rejects
// anything below 1 regardless of caller.
func (s *RetentionService) Cleanup(days int) (*CleanupResult, error) {
	if days < 1 {
		return nil, fmt.Errorf("%w: days must be >= 1", ErrInvalidParameter)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	deleted, err := s.readings.DeleteOlderThan(cutoff)
	if err != nil {
		return nil, err
	}

	result := &CleanupResult{
		Deleted:    deleted,
		CutoffDate: cutoff.Format(time.RFC3339),
	}
	if deleted == 0 {
		result.Message = fmt.Sprintf("No data older than %d days", days)
	} else {
		result.Message = fmt.Sprintf("Deleted %d old records", deleted)
		log.Printf("[Retention] Deleted %d records older than %d days", deleted, days)
	}
	return result, nil
}
