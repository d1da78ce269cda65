package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures reported by a spawned engine process.
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks invalid input detected before any job is queued.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks inputs that parsed but cannot be rendered.
	ErrValidation = errors.New("validation error")
	// ErrCancelled marks cooperative cancellation; it is not a failure.
	ErrCancelled = errors.New("cancelled")
	// ErrTransient marks failures that a re-submitted batch may not hit again.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later outcome classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsCancellation reports whether err represents cooperative cancellation
// rather than a real failure.
func IsCancellation(err error) bool {
	return err != nil && errors.Is(err, ErrCancelled)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
