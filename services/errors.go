package services

import "errors"

var (
	// ErrDeviceNotFound is returned when an operation references a
	// device that does not exist. Sensor ingestion never auto-creates.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrMalformedTopic is returned for topics that do not match the
	// status/sensor shapes. Such messages are dropped, never retried.
	ErrMalformedTopic = errors.New("malformed topic")

	// ErrInvalidPayload is returned for sensor payloads that are not
	// valid JSON or lack a numeric value.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidStatus is returned for status payloads other than
	// online/offline.
	ErrInvalidStatus = errors.New("invalid status value")

	// ErrNoData is returned when an aggregation window matches no
	// readings.
	ErrNoData = errors.New("no readings in window")

	// ErrInvalidParameter is returned for out-of-range or unparseable
	// caller input, before any store access.
	ErrInvalidParameter = errors.New("invalid parameter")
)
