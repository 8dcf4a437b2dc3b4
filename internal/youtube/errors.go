package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

var (
	ErrUnauthorized   = errors.New("youtube: unauthorised (invalid api key)")
	ErrForbidden      = errors.New("youtube: forbidden")
	ErrQuotaExceeded  = errors.New("youtube: quota exceeded")
	ErrRateLimited    = errors.New("youtube: rate limit exceeded")
	ErrChannelMissing = errors.New("youtube: channel not found")
)

// classify tags a Data API failure with one of the package sentinels while
// keeping the original error in the chain.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", op, err)
	}

	switch gerr.Code {
	case http.StatusBadRequest:
		if hasReason(gerr, "keyInvalid") {
			return fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
		}
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %w", op, ErrUnauthorized, err)
	case http.StatusForbidden:
		if hasReason(gerr, "quotaExceeded", "dailyLimitExceeded") {
			return fmt.Errorf("%s: %w: %w", op, ErrQuotaExceeded, err)
		}
		return fmt.Errorf("%s: %w: %w", op, ErrForbidden, err)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w: %w", op, ErrChannelMissing, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w: %w", op, ErrRateLimited, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func hasReason(gerr *googleapi.Error, reasons ...string) bool {
	for _, item := range gerr.Errors {
		for _, reason := range reasons {
			if item.Reason == reason {
				return true
			}
		}
	}
	return false
}
