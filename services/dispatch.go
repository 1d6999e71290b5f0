package services

import "log"

// Dispatcher routes classified transport messages to the lifecycle
// coordinator or the ingestion pipeline. Errors are terminal for the
// message: it is dropped and counted, never retried.
type Dispatcher struct {
	lifecycle *LifecycleService
	ingest    *IngestService
	dropped   uint64
}

func NewDispatcher(lifecycle *LifecycleService, ingest *IngestService) *Dispatcher {
	return &Dispatcher{lifecycle: lifecycle, ingest: ingest}
}

// Dispatch processes one message to completion.
func (d *Dispatcher) Dispatch(msg InboundMessage) {
	classified, err := ClassifyTopic(msg)
	if err != nil {
		d.dropped++
		log.Printf("Dropping message: %v", err)
		return
	}

	switch classified.Class {
	case ClassStatus:
		if err := d.lifecycle.HandleStatus(classified.DeviceID, string(msg.Payload), classified.Retained); err != nil {
			d.dropped++
			log.Printf("Error handling status message for %s: %v", classified.DeviceID, err)
		}
	case ClassSensor:
		if _, err := d.ingest.HandleSensorMessage(classified.DeviceID, classified.SensorType, msg.Payload); err != nil {
			d.dropped++
			log.Printf("Error handling sensor message for %s/%s: %v", classified.DeviceID, classified.SensorType, err)
		}
	}
}

// Dropped returns how many messages were discarded so far. The
// dispatcher runs on a single goroutine, so a plain counter is enough.
func (d *Dispatcher) Dropped() uint64 { return d.dropped }
