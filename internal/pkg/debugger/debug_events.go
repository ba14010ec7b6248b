// Package debugger dumps payloads to the log while developing.
package debugger

import (
	"bytes"
	"encoding/json"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maxPayload caps how much of a payload reaches the log.
const maxPayload = 16 << 10

// DumpPayload logs data at debug level under msg. JSON is pretty-printed;
// anything else is logged raw. Nothing is formatted unless debug is enabled.
func DumpPayload(logger *zap.Logger, msg string, data []byte) {
	if logger == nil || !logger.Core().Enabled(zapcore.DebugLevel) {
		return
	}

	truncated := len(data) > maxPayload
	if truncated {
		data = data[:maxPayload]
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err == nil {
		logger.Debug(msg, zap.String("payload", pretty.String()), zap.Bool("truncated", truncated))
		return
	}
	logger.Debug(msg, zap.ByteString("payload", data), zap.Bool("truncated", truncated))
}
