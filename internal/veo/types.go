// Package veo provides an HTTP client for the Veo video generation API.
// Unlike the task-based backends, Veo uses long-running operations: task
// creation returns an operation name and polling reads the operation until
// done is set.
package veo

// OperationRequest contains the parameters for starting a Veo operation.
type OperationRequest struct {
	// Model is the Veo model id, e.g. "veo-3.0-generate-001".
	Model string
	// Prompt is the generation prompt.
	Prompt string
	// ImageBytesB64 is an optional base64-encoded source image.
	ImageBytesB64 string
	// ImageMIMEType is the MIME type of the source image.
	ImageMIMEType string
	// DurationSec is the clip duration in seconds (4-8).
	DurationSec int
	// AspectRatio is e.g. "16:9" or "9:16".
	AspectRatio string
	// GenerateAudio requests an audio track on the output.
	GenerateAudio bool
}

// instanceImage is the image block of a prediction instance.
type instanceImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

// instance is one prediction instance.
type instance struct {
	Prompt string         `json:"prompt"`
	Image  *instanceImage `json:"image,omitempty"`
}

// parameters are the generation parameters of a prediction request.
type parameters struct {
	DurationSeconds int    `json:"durationSeconds"`
	AspectRatio     string `json:"aspectRatio,omitempty"`
	GenerateAudio   bool   `json:"generateAudio"`
	SampleCount     int    `json:"sampleCount"`
}

// predictRequest is the JSON body for predictLongRunning.
type predictRequest struct {
	Instances  []instance `json:"instances"`
	Parameters parameters `json:"parameters"`
}

// operation is a long-running operation resource.
type operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *operationError    `json:"error,omitempty"`
	Response *operationResponse `json:"response,omitempty"`
}

// operationError is the error block of a failed operation.
type operationError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// operationResponse wraps the generation result of a finished operation.
type operationResponse struct {
	GenerateVideoResponse *generateVideoResponse `json:"generateVideoResponse,omitempty"`
}

// generateVideoResponse carries the generated samples and any filter reasons.
type generateVideoResponse struct {
	GeneratedSamples        []generatedSample `json:"generatedSamples,omitempty"`
	RAIMediaFilteredReasons []string          `json:"raiMediaFilteredReasons,omitempty"`
}

// generatedSample is a single generated video sample.
type generatedSample struct {
	Video sampleVideo `json:"video"`
}

// sampleVideo holds the URI of a generated video.
type sampleVideo struct {
	URI string `json:"uri"`
}

// PollResult contains the result of reading an operation's state.
type PollResult struct {
	Done     bool
	VideoURI string // URI of the finished video (only when done without error)
	Error    string // Failure message (only when done with error)
}
