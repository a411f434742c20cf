// SPDX-License-Identifier: MIT
package transport

import (
	applog "tuner/internal/log"
)

// LoggingTransport writes readings to the application log at debug
// level. Useful when running headless without any network consumers.
type LoggingTransport struct{}

func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

func (lt *LoggingTransport) Send(data any) error {
	applog.Debugf("transport: %+v", data)
	return nil
}

func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
