// Package storage is the persistence port behind the credential and
// dataset caches: a flat namespace of string keys, each holding one
// serialized JSON value. The data never leaves the device.
package storage

// Store reads, writes and deletes whole values by key. Writes are
// synchronous: when Set returns, the value is durable.
type Store interface {
	// Get returns the stored value, or ok=false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// The three logical keys the system persists under.
const (
	KeyAPIKey        = "sec_api_key"
	KeyCompensation  = "compensationData"
	KeyInsiderTrades = "insiderTradingData"
)
