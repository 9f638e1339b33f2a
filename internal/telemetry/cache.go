package telemetry

import "sync"

// Cache holds the most recent decoded reading per sensor type.
//
// Readings are stored as generic maps rather than Reading structs so
// extra fields a publisher includes survive the round trip to clients.
//
// Writes use last-write-wins semantics: handler goroutines may race on
// the same sensor type and whichever acquires the lock last becomes the
// visible reading. The cache copies maps on the way in and out, so
// callers can never mutate stored state.
//
// All methods are safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	readings map[string]map[string]any
}

// NewCache creates an empty reading cache.
func NewCache() *Cache {
	return &Cache{
		readings: make(map[string]map[string]any),
	}
}

// Put stores a reading for a sensor type, replacing any previous one.
// The reading is copied; the caller keeps ownership of its map.
func (c *Cache) Put(sensorType string, reading map[string]any) {
	stored := copyReading(reading)

	c.mu.Lock()
	c.readings[sensorType] = stored
	c.mu.Unlock()
}

// Latest returns the most recent reading for a sensor type.
// The second return value is false when no reading has been stored yet.
// The returned map is a copy; callers can safely modify it.
func (c *Cache) Latest(sensorType string) (map[string]any, bool) {
	c.mu.RLock()
	reading, ok := c.readings[sensorType]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return copyReading(reading), true
}

// All returns the current reading for every sensor type that has one.
// Sensor types with no reading yet are absent from the result.
// The returned maps are copies; callers can safely modify them.
func (c *Cache) All() map[string]map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := make(map[string]map[string]any, len(c.readings))
	for sensorType, reading := range c.readings {
		all[sensorType] = copyReading(reading)
	}
	return all
}

// Len returns the number of sensor types with a stored reading.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.readings)
}

// copyReading makes a shallow copy of a reading map.
// Reading values are JSON scalars, so a shallow copy is sufficient.
func copyReading(reading map[string]any) map[string]any {
	copied := make(map[string]any, len(reading))
	for k, v := range reading {
		copied[k] = v
	}
	return copied
}
