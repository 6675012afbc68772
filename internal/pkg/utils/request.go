package utils

import (
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"net/http"
)

// AuthToken returns the raw token from the Authorization header or, failing
// that, from the auth cookie.
func AuthToken(r *http.Request) string {
	if token := r.Header.Get(constants.HeaderAuthorization); token != "" {
		return token
	}
	if cookie, err := r.Cookie(constants.CookieKeyAuthToken); err == nil {
		return cookie.Value
	}
	return ""
}
