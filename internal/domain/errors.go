package domain

// Errors shared by the services; the HTTP adapter maps them to status codes.
var (
	ErrInvalid     = errString("invalid input")
	ErrNotApproved = errString("partner not approved")
)

type errString string

func (e errString) Error() string { return string(e) }
