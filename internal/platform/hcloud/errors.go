package hcloud

import (
	"errors"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ErrorCodeResourceLimitExceeded is returned when a project quota is reached.
const ErrorCodeResourceLimitExceeded hcloud.ErrorCode = "resource_limit_exceeded"

// CapacityCodes are the error codes that indicate a temporary capacity shortage.
var CapacityCodes = []hcloud.ErrorCode{
	hcloud.ErrorCodeResourceUnavailable,
	ErrorCodeResourceLimitExceeded,
}

// Class is the retry classification of a failed request.
type Class int

const (
	// ClassFatal failures abort immediately.
	ClassFatal Class = iota
	// ClassTransient failures are retried until the attempt budget is spent.
	ClassTransient
)

func (c Class) String() string {
	if c == ClassTransient {
		return "transient"
	}
	return "fatal"
}

// Classifier decides whether a failed request is worth retrying.
type Classifier func(error) Class

// ClassifyByMarkers returns a Classifier that treats an error as transient when
// its message contains any of markers. Without markers the capacity codes are used.
func ClassifyByMarkers(markers ...string) Classifier {
	if len(markers) == 0 {
		for _, code := range CapacityCodes {
			markers = append(markers, string(code))
		}
	}
	return func(err error) Class {
		if err == nil {
			return ClassFatal
		}
		msg := err.Error()
		for _, m := range markers {
			if strings.Contains(msg, m) {
				return ClassTransient
			}
		}
		return ClassFatal
	}
}

// ClassifyByErrorCode returns a Classifier that treats an hcloud.Error with one
// of codes as transient. Without codes the capacity codes are used.
func ClassifyByErrorCode(codes ...hcloud.ErrorCode) Classifier {
	if len(codes) == 0 {
		codes = CapacityCodes
	}
	return func(err error) Class {
		if isHCloudErrorCode(err, codes...) {
			return ClassTransient
		}
		return ClassFatal
	}
}

// DefaultClassifier matches capacity failures by their error code text.
func DefaultClassifier() Classifier {
	return ClassifyByMarkers()
}

// isHCloudErrorCode checks if the error is an hcloud API error with one of the given codes.
func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrServerNotFound) || isHCloudErrorCode(err, hcloud.ErrorCodeNotFound)
}

// ErrorCode returns the API error code carried by err, or "" when err is not
// an API error.
func ErrorCode(err error) string {
	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		return string(hcloudErr.Code)
	}
	return ""
}
