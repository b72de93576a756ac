package github

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	err := NewAPIError(KindRequestFailed, "Request failed: 500", http.StatusInternalServerError, ErrorInfo{})
	assert.Equal(t, "Request failed: 500", err.Info.Message)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Equal(t, "Request failed: 500", err.Error())

	err = NewAPIError(KindRequestFailed, "Request failed: 404", http.StatusNotFound, ErrorInfo{Message: "Not Found"})
	assert.Equal(t, "Not Found", err.Info.Message)
	assert.Equal(t, "Request failed: 404: Not Found", err.Error())
}

func TestAPIErrorIs(t *testing.T) {
	rateLimited := fmt.Errorf("search: %w", NewAPIError(KindRateLimit, MessageRateLimit, http.StatusForbidden, ErrorInfo{}))
	assert.True(t, errors.Is(rateLimited, ErrRateLimited))
	assert.False(t, errors.Is(rateLimited, ErrRequestFailed))

	failed := NewAPIError(KindRequestFailed, RequestFailedMessage(502), http.StatusBadGateway, ErrorInfo{})
	assert.True(t, errors.Is(failed, ErrRequestFailed))
	assert.False(t, failed.IsRateLimit())
	assert.False(t, failed.IsNotFound())
}

func TestHeaders(t *testing.T) {
	httpHeaders := http.Header{}
	httpHeaders.Set("X-RateLimit-Remaining", "0")
	httpHeaders.Set("X-RateLimit-Limit", "60")

	mapHeaders := HeaderMap{
		"x-ratelimit-remaining": "0",
		"X-RateLimit-Limit":     "60",
	}

	for name, h := range map[string]Headers{"http.Header": HTTPHeaders(httpHeaders), "map": mapHeaders} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, isRateLimited(http.StatusForbidden, h))
			assert.False(t, isRateLimited(http.StatusNotFound, h))

			info := RateLimitFromHeaders(h)
			if assert.NotNil(t, info.Limit) {
				assert.Equal(t, "60", *info.Limit)
			}
			if assert.NotNil(t, info.Remaining) {
				assert.Equal(t, "0", *info.Remaining)
			}
			assert.Nil(t, info.Reset)
		})
	}
}
