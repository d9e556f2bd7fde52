package http

import (
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse/timecore-backend-go/internal/domain/user"
)

// actorFromRequest resolves the authenticated actor from the verified JWT
// claims. Runs after AuthRequired, so a failure here means malformed claims
// rather than a missing token.
func actorFromRequest(r *http.Request) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return user.Actor{}, user.ErrInvalidActorClaims
	}
	return user.ActorFromClaims(claims)
}

// clientIP extracts the bare client address from RemoteAddr, which net/http
// populates as host:port. The port is connection-specific noise; captures
// must store the same value for every connection from one host or the IP
// conflict grouping never matches.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseIntQuery converts a query value to int; empty or malformed input
// yields 0 so the DTO defaults apply.
func parseIntQuery(value string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
