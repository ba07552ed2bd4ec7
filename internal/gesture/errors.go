package gesture

import "fmt"

// ErrorCode identifies a start-up failure reported through the notification sink.
// The numeric values are stable; page code has matched on them for a long time.
type ErrorCode int

const (
	CodeCapabilityUnsupported ErrorCode = 0
	CodeAlreadyRunning        ErrorCode = 2
	CodePermissionDenied      ErrorCode = 10
	CodeConstraintUnsupported ErrorCode = 11
	CodeNoMediaTrack          ErrorCode = 12
	CodeDeviceUnavailable     ErrorCode = 13
)

// Kind returns the error category for the code. The three device sub-codes all
// belong to the DeviceUnavailable kind.
func (c ErrorCode) Kind() string {
	switch c {
	case CodeCapabilityUnsupported:
		return "CapabilityUnsupported"
	case CodeAlreadyRunning:
		return "AlreadyRunning"
	case CodePermissionDenied:
		return "PermissionDenied"
	case CodeConstraintUnsupported, CodeNoMediaTrack, CodeDeviceUnavailable:
		return "DeviceUnavailable"
	default:
		return "Unknown"
	}
}

// DefaultMessage returns the human readable message for the code.
func (c ErrorCode) DefaultMessage() string {
	switch c {
	case CodeCapabilityUnsupported:
		return "this environment cannot capture video frames"
	case CodeAlreadyRunning:
		return "gesture detection has already started"
	case CodePermissionDenied:
		return "permission to use the camera was denied"
	case CodeConstraintUnsupported:
		return "the requested capture constraints are not supported by the device"
	case CodeNoMediaTrack:
		return "no video device matching the configuration was found"
	case CodeDeviceUnavailable:
		return "could not acquire the video device"
	default:
		return "unknown error"
	}
}

// ErrorPayload is the structured error carried in a Notification.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
}

// Error is returned by the host when a start-up failure has been reported.
type Error struct {
	Code ErrorCode
	Err  error // underlying cause, may be nil
}

// NewError creates an Error for code wrapping cause.
func NewError(code ErrorCode, cause error) *Error {
	return &Error{Code: code, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Code.Kind(), int(e.Code), e.Code.DefaultMessage(), e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code.Kind(), int(e.Code), e.Code.DefaultMessage())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Payload converts the error into its notification form.
func (e *Error) Payload() *ErrorPayload {
	return &ErrorPayload{
		Code:    e.Code,
		Kind:    e.Code.Kind(),
		Message: e.Code.DefaultMessage(),
	}
}
