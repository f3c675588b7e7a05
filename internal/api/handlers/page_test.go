package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/service"
	"github.com/fortifiedfantasy/fein-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loginCookies mints a real session for a member and returns the cookie pair
// the middleware expects.
func loginCookies(t *testing.T, ts *testutil.TestServer, memberID string) []*http.Cookie {
	t.Helper()

	session, err := ts.Services.Session.Ensure(context.Background(), memberID, "203.0.113.9", "test-agent/1.0")
	require.NoError(t, err)

	return []*http.Cookie{
		{Name: service.CookieMemberID, Value: memberID},
		{Name: service.CookieSessionID, Value: session.ID.String()},
	}
}

func getWithCookies(t *testing.T, url string, cookies []*http.Cookie) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestPageHandler_Access(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("unknown member", func(t *testing.T) {
		ts.DB.Truncate(t)

		resp, err := http.Get(ts.APIURL("/u/NOSUCH00"))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body struct {
			OK     bool   `json:"ok"`
			Error  string `json:"error"`
			Reason string `json:"reason"`
		}
		decodeJSON(t, resp, &body)
		assert.False(t, body.OK)
		assert.Equal(t, "access_denied", body.Error)
		assert.Equal(t, domain.ReasonTargetNotFound, body.Reason)
	})

	t.Run("anonymous viewer is limited", func(t *testing.T) {
		ts.DB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)

		resp, err := http.Get(ts.APIURL("/u/" + target.MemberID))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			AccessLevel       string `json:"accessLevel"`
			Reason            string `json:"reason"`
			CanRequestContact bool   `json:"canRequestContact"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "limited", body.AccessLevel)
		assert.Equal(t, domain.ReasonAnonymousViewer, body.Reason)
		assert.False(t, body.CanRequestContact)
	})

	t.Run("authenticated stranger gets full access", func(t *testing.T) {
		ts.DB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		cookies := loginCookies(t, ts, viewer.MemberID)

		resp := getWithCookies(t, ts.APIURL("/u/"+target.MemberID), cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			AccessLevel       string `json:"accessLevel"`
			IsOwner           bool   `json:"isOwner"`
			IsStranger        bool   `json:"isStranger"`
			CanRequestContact bool   `json:"canRequestContact"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "full", body.AccessLevel)
		assert.False(t, body.IsOwner)
		assert.True(t, body.IsStranger)
		assert.True(t, body.CanRequestContact)
	})

	t.Run("owner", func(t *testing.T) {
		ts.DB.Truncate(t)

		member := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		cookies := loginCookies(t, ts, member.MemberID)

		resp := getWithCookies(t, ts.APIURL("/u/"+member.MemberID), cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			AccessLevel string `json:"accessLevel"`
			IsOwner     bool   `json:"isOwner"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "full", body.AccessLevel)
		assert.True(t, body.IsOwner)
	})

	t.Run("stale cookies fall back to anonymous", func(t *testing.T) {
		ts.DB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		cookies := []*http.Cookie{
			{Name: service.CookieMemberID, Value: "ZZZZZZZZ"},
			{Name: service.CookieSessionID, Value: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		}

		resp := getWithCookies(t, ts.APIURL("/u/"+target.MemberID), cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			AccessLevel string `json:"accessLevel"`
			Reason      string `json:"reason"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "limited", body.AccessLevel)
		assert.Equal(t, domain.ReasonAnonymousViewer, body.Reason)
	})
}
