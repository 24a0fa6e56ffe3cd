package dispatcher

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// IsTransient reports whether an outbound platform error is worth retrying:
// rate limits, server-side failures, and anything that never produced an HTTP
// response (network hiccups).
func IsTransient(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) {
		if restErr.Response == nil {
			return true
		}
		code := restErr.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= 500
	}
	var rateErr *discordgo.RateLimitError
	if errors.As(err, &rateErr) {
		return true
	}
	// No RESTError means the request never got a response.
	return true
}

// IsPermission reports whether the bot lacked rights for an outbound call.
// These are surfaced to moderators rather than retried.
func IsPermission(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusForbidden
	}
	return false
}

// IsNotFound reports whether the target of an outbound call no longer exists,
// e.g. a message already deleted by someone else. Safe to ignore.
func IsNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
