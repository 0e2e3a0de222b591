// Package periphio provides the real-hardware adapters: an ADS1115 ADC as
// the analog reader and a GPIO pin as the stimulus driver, both via periph.io.
package periphio

import (
	"fmt"
	"sync"

	"periph.io/x/host/v3"
)

var (
	hostOnce sync.Once
	hostErr  error
)

// initHost loads the periph.io host drivers once per process.
func initHost() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	if hostErr != nil {
		return fmt.Errorf("periph host init: %w", hostErr)
	}
	return nil
}
