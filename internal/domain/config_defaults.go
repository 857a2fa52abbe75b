package domain

import "time"

const (
	DefaultURI            = "mongodb://localhost:27017"
	DefaultDatabase       = "mlstorage"
	DefaultCollection     = "experiments"
	DefaultDataDir        = "./data"
	DefaultConnectTimeout = 10 * time.Second
)

// ApplyDefaults fills unset config fields in place.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMongoDB
	}
	if c.URI == "" {
		c.URI = DefaultURI
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
}
