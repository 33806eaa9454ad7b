package generate

import "fmt"

// ValidationError reports malformed or out-of-range caller input. It is always
// detected before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// validationf builds a ValidationError from a format string.
func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConfigError reports a missing or unusable process configuration value, such as
// an absent API credential. It carries remediation guidance for the caller and is
// detected per call so the server keeps serving other requests.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// UpstreamError wraps a failure reported by the remote generation service:
// network failure, quota, parameter rejection, or an empty result set.
type UpstreamError struct {
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// DownloadError reports a failure to persist a single generated image locally.
// It is isolated per image and never escalates past the image it belongs to.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
