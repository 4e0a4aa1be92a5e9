package crawl

import "errors"

var (
	// ErrRendererRequired is returned when a renderer is not provided.
	ErrRendererRequired = errors.New("renderer required")

	// ErrJobNotFound indicates an unknown job ID.
	ErrJobNotFound = errors.New("crawl job not found")

	// ErrManagerClosed indicates the manager is shut down.
	ErrManagerClosed = errors.New("crawl manager is closed")
)
