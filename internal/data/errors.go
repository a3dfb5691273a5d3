package data

import "errors"

var (
	// ErrJobNotFound is returned when a job is not found in the registry.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobExists is returned when inserting a job whose job_id is already taken.
	ErrJobExists = errors.New("job already exists")
)
