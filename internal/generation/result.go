package generation

import "github.com/Stars1233/pollinations/internal/provider"

// VideoMIMEType is the fixed MIME type for finished video artifacts.
const VideoMIMEType = "video/mp4"

// Result is the orchestrator's output for a finished job. It is returned by
// value to the caller, who owns it; the orchestrator holds no state after
// returning it.
type Result struct {
	// Bytes is the raw artifact payload.
	Bytes []byte
	// MIMEType is the media type of the artifact.
	MIMEType string
	// DurationSec is the provider-reported actual duration when available,
	// otherwise the originally requested duration.
	DurationSec float64
	// Usage is the normalized usage record.
	Usage provider.Usage
}
