package types

import "time"

// Result represents a successful search result
type Result struct {
	Address  string
	Mnemonic string
	Attempts uint64
	Duration time.Duration
}
