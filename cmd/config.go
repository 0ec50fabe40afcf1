package cmd

import "time"

// Config carries all runtime settings of the service.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// BusBuffer is the per-subscriber queue depth of the in-process bus.
	BusBuffer int

	// StageSLA is how long an order may wait on one stage before the
	// timeout watchdog fails it.
	StageSLA time.Duration
}
