package services

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateIdentity  = errors.New("email or mobile number already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailNotVerified   = errors.New("please verify your email address first")
	ErrMobileNotVerified  = errors.New("please verify your mobile number first")
	ErrProvisioningFailed = errors.New("error while signing you up, please try again later")
	ErrDocumentUpload     = errors.New("failed to upload driver documents")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
)

// userError carries a client-facing message while still matching its
// sentinel through errors.Is.
type userError struct {
	kind error
	msg  string
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.kind }

var (
	errEmailTaken  = &userError{kind: ErrDuplicateIdentity, msg: "email address already in use"}
	errMobileTaken = &userError{kind: ErrDuplicateIdentity, msg: "mobile number already in use"}
)
