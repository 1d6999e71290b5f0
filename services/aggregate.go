package services

import (
	"errors"
	"log"
	"time"

	"sensegrid-server/repositories"

	"gorm.io/gorm"
)

// SensorStats summarizes one filtered set of readings. Min, max and
// average come from the same query over the same rows.
type SensorStats struct {
	SensorType string    `json:"sensor_type"`
	MinValue   float64   `json:"min_value"`
	MaxValue   float64   `json:"max_value"`
	AvgValue   float64   `json:"avg_value"`
	Count      int64     `json:"count"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type TimeSeries struct {
	SensorType string            `json:"sensor_type"`
	Unit       string            `json:"unit,omitempty"`
	Data       []TimeSeriesPoint `json:"data"`
}

type AggregateService struct {
	devices  repositories.DeviceRepository
	readings repositories.SensorReadingRepository
}

func NewAggregateService(devices repositories.DeviceRepository, readings repositories.SensorReadingRepository) *AggregateService {
	return &AggregateService{devices: devices, readings: readings}
}

func (s *AggregateService) checkDevice(deviceID string) error {
	if _, err := s.devices.GetByDeviceID(deviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeviceNotFound
		}
		return err
	}
	return nil
}

// Stats computes min/max/avg/count over the closed window.
func (s *AggregateService) Stats(deviceID, sensorType string, window Window) (*SensorStats, error) {
	if err := s.checkDevice(deviceID); err != nil {
		return nil, err
	}

	agg, err := s.readings.AggregateRange(deviceID, sensorType, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	if agg.Count == 0 {
		return nil, ErrNoData
	}

	return &SensorStats{
		SensorType: sensorType,
		MinValue:   agg.MinValue,
		MaxValue:   agg.MaxValue,
		AvgValue:   agg.AvgValue,
		Count:      agg.Count,
		StartTime:  window.Start,
		EndTime:    window.End,
	}, nil
}

// TimeSeries returns the full ordered series for the window. The
// quotaLimit hint lets callers pre-flight against a range check; it is
// never used to truncate or sample the result here.
func (s *AggregateService) TimeSeries(deviceID, sensorType string, window Window, quotaLimit *int) (*TimeSeries, error) {
	if err := s.checkDevice(deviceID); err != nil {
		return nil, err
	}

	readings, err := s.readings.GetRange(deviceID, sensorType, window.Start, window.End)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, ErrNoData
	}

	if quotaLimit != nil && len(readings) > *quotaLimit {
		log.Printf("[Aggregate] Series for %s/%s has %d points over the %d quota hint, returning all",
			deviceID, sensorType, len(readings), *quotaLimit)
	}

	series := &TimeSeries{
		SensorType: sensorType,
		Unit:       readings[0].Unit,
		Data:       make([]TimeSeriesPoint, 0, len(readings)),
	}
	for _, reading := range readings {
		series.Data = append(series.Data, TimeSeriesPoint{
			Timestamp: reading.Timestamp,
			Value:     reading.Value,
		})
	}
	return series, nil
}
