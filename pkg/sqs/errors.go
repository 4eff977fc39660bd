package sqs

import (
	"errors"
	"fmt"
)

// Error kinds returned by this package. Wrapped errors can be matched with errors.Is.
var (
	// ErrConfiguration is returned when the output cannot be configured
	ErrConfiguration = errors.New("sqs: invalid configuration")

	// ErrResolution is returned when the destination queue cannot be created or located
	ErrResolution = errors.New("sqs: queue resolution failed")

	// ErrDispatch is returned when a SendMessageBatch call fails as a whole
	ErrDispatch = errors.New("sqs: dispatch failed")
)

// ConfigError reports an invalid configuration field
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// ResolutionError reports a failure to create or look up the destination queue
type ResolutionError struct {
	Queue string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: queue %s: %v", ErrResolution, e.Queue, e.Err)
}

func (e *ResolutionError) Unwrap() []error {
	return []error{ErrResolution, e.Err}
}

// DispatchError reports a SendMessageBatch call that failed entirely.
// Batches before BatchIndex were sent; later ones were not attempted.
type DispatchError struct {
	BatchIndex int
	// Sent is the number of batches fully handed to SQS
	Sent int
	// Accepted is the number of entries of the failed batch handed to SQS before the failure
	Accepted int
	Code     string
	Err      error
}

func (e *DispatchError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: batch %d (%s): %v", ErrDispatch, e.BatchIndex, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: batch %d: %v", ErrDispatch, e.BatchIndex, e.Err)
}

func (e *DispatchError) Unwrap() []error {
	return []error{ErrDispatch, e.Err}
}

// ValidateGroupID fails when the queue is a FIFO queue and no message group id is set
func ValidateGroupID(queueName, queueURL, groupID string) error {
	if groupID != "" {
		return nil
	}
	if IsFIFO(queueName) || IsFIFO(queueURL) {
		return &ConfigError{Field: "message-group-id", Reason: "required for FIFO queue"}
	}
	return nil
}
