package cache

import (
	"sync"

	"sensegrid-server/entities"
)

// LatestCache keeps the newest reading per (device, sensor type) so
// the latest endpoint can answer without a store round trip. The
// store remains the source of truth; the cache is refilled lazily.
type LatestCache struct {
	mu      sync.RWMutex
	latest  map[string]entities.SensorReading // deviceID/sensorType -> reading
	written uint64
}

func NewLatestCache() *LatestCache {
	return &LatestCache{latest: make(map[string]entities.SensorReading)}
}

func key(deviceID, sensorType string) string {
	return deviceID + "/" + sensorType
}

// Put records a reading if it is at least as new as the cached one.
// Late out-of-order arrivals must not roll the latest value back.
func (c *LatestCache) Put(reading entities.SensorReading) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(reading.DeviceID, reading.SensorType)
	if current, ok := c.latest[k]; ok && reading.Timestamp.Before(current.Timestamp) {
		return
	}
	c.latest[k] = reading
	c.written++
}

func (c *LatestCache) Get(deviceID, sensorType string) (entities.SensorReading, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reading, ok := c.latest[key(deviceID, sensorType)]
	return reading, ok
}

// Invalidate drops all cached readings for a device, used when the
// device is deleted.
func (c *LatestCache) Invalidate(deviceID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := deviceID + "/"
	for k := range c.latest {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(c.latest, k)
		}
	}
}

// Stats returns cache counters for the admin surface.
func (c *LatestCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"cached_series": len(c.latest),
		"total_writes":  c.written,
	}
}
