package form

import "errors"

var (
	// ErrBusy rejects a submit or delete while another one is in flight
	ErrBusy = errors.New("a submission is already in progress")

	ErrConfirmationRequired = errors.New("delete requires confirmation")
	ErrCancelled            = errors.New("delete cancelled")
	ErrUnknownField         = errors.New("unknown form field")
)

const (
	MsgUploadFailed = "Unable to upload image. Please try again."
	MsgCreated      = "Product created successfully."
	MsgUpdated      = "Product updated successfully."
	MsgDeleted      = "Product deleted successfully."
)

// ValidationError is a draft field that cannot become a payload.
// It is raised before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// UploadError is an image that was rejected or could not be stored
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
