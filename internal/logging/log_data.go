package logging

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogData accumulates fields and timings for one logged unit of work.
type LogData struct {
	mu        sync.Mutex
	timeItems map[string]time.Duration
	dataItems logrus.Fields
	logger    *logrus.Logger
}

func NewLogData(logger *logrus.Logger) *LogData {
	return &LogData{
		timeItems: make(map[string]time.Duration),
		dataItems: make(logrus.Fields),
		logger:    logger,
	}
}

// AddTiming starts a timer; the returned func records the elapsed time
// under entryName, replacing any earlier value.
func (l *LogData) AddTiming(entryName string) func() {
	startTime := time.Now()

	return func() {
		elapsed := time.Since(startTime)
		l.mu.Lock()
		defer l.mu.Unlock()
		l.timeItems[entryName] = elapsed
	}
}

// AddToExistingTiming is AddTiming but sums with the earlier value.
func (l *LogData) AddToExistingTiming(entryName string) func() {
	startTime := time.Now()

	return func() {
		elapsed := time.Since(startTime)
		l.mu.Lock()
		defer l.mu.Unlock()
		l.timeItems[entryName] += elapsed
	}
}

func (l *LogData) AddData(key string, value interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dataItems[key] = value
}

// Log builds an entry carrying every data item and every timing in
// fractional milliseconds.
func (l *LogData) Log() *logrus.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make(logrus.Fields, len(l.dataItems)+len(l.timeItems))
	for key, value := range l.dataItems {
		fields[key] = value
	}
	for key, value := range l.timeItems {
		fields[key+"Ms"] = float64(value.Microseconds()) / 1000
	}

	return logrus.NewEntry(l.logger).WithFields(fields)
}
