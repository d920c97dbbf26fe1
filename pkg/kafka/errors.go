package kafka

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProducerClosed     = errors.New("kafka producer is closed")
	ErrConsumerClosed     = errors.New("kafka consumer is closed")
	ErrInvalidMessage     = errors.New("invalid message")
	ErrEmptyKey           = errors.New("message key cannot be empty")
	ErrEmptyValue         = errors.New("message value cannot be empty")
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeTransient covers network issues and timeouts.
	ErrorTypeTransient
	// ErrorTypePermanent covers undecodable payloads and schema mismatches.
	ErrorTypePermanent
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypePermanent:
		return "permanent"
	}
	return "unknown"
}

type KafkaError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *KafkaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *KafkaError) Unwrap() error {
	return e.Err
}

func NewTransientError(message string, err error) *KafkaError {
	return &KafkaError{Type: ErrorTypeTransient, Message: message, Err: err}
}

func NewPermanentError(message string, err error) *KafkaError {
	return &KafkaError{Type: ErrorTypePermanent, Message: message, Err: err}
}

var (
	transientPatterns = []string{
		"connection refused",
		"timeout",
		"deadline exceeded",
		"no such host",
		"network is unreachable",
		"broken pipe",
		"connection reset",
		"temporary failure",
		"leader not available",
	}
	permanentPatterns = []string{
		"invalid message",
		"schema mismatch",
		"deserialization failed",
		"unknown topic",
		"invalid configuration",
	}
)

// ClassifyError decides whether err is worth retrying. Anything it cannot
// recognise is treated as permanent.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var kafkaErr *KafkaError
	if errors.As(err, &kafkaErr) {
		return kafkaErr.Type
	}

	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return ErrorTypeTransient
		}
	}
	for _, p := range permanentPatterns {
		if strings.Contains(msg, p) {
			return ErrorTypePermanent
		}
	}
	return ErrorTypePermanent
}

func ShouldRetry(err error, currentRetries, maxRetries int) bool {
	if err == nil || currentRetries >= maxRetries {
		return false
	}
	return ClassifyError(err) == ErrorTypeTransient
}
