package domain

// Artifact is a rendered document. It is built per request and never stored.
type Artifact struct {
	Filename    string
	ContentType string
	Body        []byte
}
