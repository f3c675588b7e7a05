package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/fortifiedfantasy/fein-server/internal/service"
	"github.com/google/uuid"
)

type contextKey string

const MemberIDKey contextKey = "memberID"

// Session resolves the ff_member_id/ff_session_id cookie pair. A valid pair
// puts the member ID in the request context; anything else proceeds
// anonymously. Member identity is never read from request bodies.
func Session(sessions *service.SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			memberCookie, err := r.Cookie(service.CookieMemberID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sessionCookie, err := r.Cookie(service.CookieSessionID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sessionID, err := uuid.Parse(sessionCookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := sessions.Validate(r.Context(), memberCookie.Value, sessionID)
			if err != nil || !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), MemberIDKey, memberCookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetMemberID returns the authenticated member ID, if any.
func GetMemberID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(MemberIDKey).(string)
	return id, ok && id != ""
}

// ClientIP picks the client address, honoring X-Forwarded-For when the
// deployment fronts the process with a proxy.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			parts := strings.Split(xff, ",")
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
