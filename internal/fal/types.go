package fal

import "fmt"

// ImageSize selects an explicit output resolution.
type ImageSize struct {
	// Width of the generated image in pixels.
	//
	//	- Minimum: 1024
	//	- Maximum: 4096
	Width int `json:"width"`

	// Height of the generated image in pixels.
	//
	//	- Minimum: 1024
	//	- Maximum: 4096
	Height int `json:"height"`
}

// GenerateRequest is the input payload for a SeedDream text-to-image call.
//
// ImageSize applies to the v4 model, AspectRatio to the v3 model; callers set
// whichever the target model accepts and leave the other zero.
type GenerateRequest struct {
	// Prompt is the text prompt for image generation. Required.
	Prompt string `json:"prompt"`

	// ImageSize is the output resolution (v4 only).
	ImageSize *ImageSize `json:"image_size,omitempty"`

	// AspectRatio is the output aspect ratio token (v3 only), e.g. "16:9".
	AspectRatio string `json:"aspect_ratio,omitempty"`

	// NumImages is the number of images to generate per prompt.
	//
	//	- Range: 1-6
	//	- Default: 1
	NumImages int `json:"num_images,omitempty"`

	// MaxImages caps the total number of images the model may return when it
	// decides to produce variants (v4 only).
	//
	//	- Range: 1-6
	//	- Default: 1
	MaxImages int `json:"max_images,omitempty"`

	// Seed makes generation reproducible. When omitted the service picks one
	// and reports it in the response.
	Seed *int64 `json:"seed,omitempty"`

	// SyncMode asks the service to return image payloads inline as data URIs
	// instead of hosted URLs.
	SyncMode bool `json:"sync_mode,omitempty"`

	// EnableSafetyChecker toggles output moderation. Defaults to true on the
	// service side.
	EnableSafetyChecker *bool `json:"enable_safety_checker,omitempty"`
}

// Image is one generated image in a response.
type Image struct {
	URL         string `json:"url"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// GenerateResponse is the completed result of a generation request.
type GenerateResponse struct {
	Images []Image `json:"images"`

	// Seed actually used by the model. Differs from the request seed when the
	// caller omitted one.
	Seed int64 `json:"seed"`
}

// Queue statuses reported while a request is in flight.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// LogEntry is one progress log line attached to a queue status update.
type LogEntry struct {
	Message string `json:"message"`
}

// QueueUpdate is delivered to the subscribe callback each time the request's
// queue status is polled. Updates are purely observational.
type QueueUpdate struct {
	Status        string     `json:"status"`
	QueuePosition int        `json:"queue_position,omitempty"`
	Logs          []LogEntry `json:"logs,omitempty"`
}

// queued is the submission acknowledgement from the queue endpoint.
type queued struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

// APIError is a non-2xx response from the FAL platform, carrying the HTTP
// status and the raw response body verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("fal: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("fal: status %d: %s", e.StatusCode, e.Body)
}
