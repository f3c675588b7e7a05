package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSONWithCookies(t *testing.T, url string, body interface{}, cookies []*http.Cookie) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestContactHandler_Create(t *testing.T) {
	ts := testutil.NewTestServer(t)

	t.Run("anonymous caller", func(t *testing.T) {
		ts.DB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)

		resp := postJSON(t, ts.APIURL("/contact/request"), map[string]string{
			"target_id":    target.MemberID,
			"channel_type": "phone_text",
		}, "203.0.113.9")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid channel", func(t *testing.T) {
		ts.DB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		cookies := loginCookies(t, ts, viewer.MemberID)

		resp := postJSONWithCookies(t, ts.APIURL("/contact/request"), map[string]string{
			"target_id":    target.MemberID,
			"channel_type": "smoke_signal",
		}, cookies)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body struct {
			Error  string `json:"error"`
			Reason string `json:"reason"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "invalid_channel_type", body.Error)
	})

	t.Run("guardian limited target", func(t *testing.T) {
		ts.DB.Truncate(t)

		minor := testutil.NewMemberBuilder().AsMinor().Build(t, ts.DB.DB)
		testutil.CreateGuardianControl(t, ts.DB.DB, &domain.GuardianControl{
			MemberID:        minor.MemberID,
			BlockMaleGender: true,
		})
		viewer := testutil.NewMemberBuilder().WithGender("male").WithAge(30).Build(t, ts.DB.DB)
		cookies := loginCookies(t, ts, viewer.MemberID)

		resp := postJSONWithCookies(t, ts.APIURL("/contact/request"), map[string]string{
			"target_id":    minor.MemberID,
			"channel_type": "relationship",
		}, cookies)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		var body struct {
			Error           string `json:"error"`
			GuardianBlocked bool   `json:"guardianBlocked"`
		}
		decodeJSON(t, resp, &body)
		assert.Equal(t, "contact_not_allowed", body.Error)
		assert.True(t, body.GuardianBlocked)
	})

	t.Run("successful request", func(t *testing.T) {
		ts.DB.Truncate(t)

		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		viewer := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		cookies := loginCookies(t, ts, viewer.MemberID)

		resp := postJSONWithCookies(t, ts.APIURL("/contact/request"), map[string]string{
			"target_id":          target.MemberID,
			"channel_type":       "relationship",
			"note":               "same league since 2019",
			"relationship_type":  "sibling",
			"relationship_label": "brother",
		}, cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			OK        bool   `json:"ok"`
			RequestID string `json:"request_id"`
			Status    string `json:"status"`
		}
		decodeJSON(t, resp, &body)
		assert.True(t, body.OK)
		assert.NotEmpty(t, body.RequestID)
		assert.Equal(t, "pending", body.Status)
	})
}

func TestContactHandler_Decide(t *testing.T) {
	ts := testutil.NewTestServer(t)

	// newPendingRequest seeds a relationship request over HTTP and returns its id.
	newPendingRequest := func(t *testing.T, fromID, toID string) string {
		cookies := loginCookies(t, ts, fromID)
		resp := postJSONWithCookies(t, ts.APIURL("/contact/request"), map[string]string{
			"target_id":          toID,
			"channel_type":       "relationship",
			"relationship_type":  "sibling",
			"relationship_label": "brother",
		}, cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			RequestID string `json:"request_id"`
		}
		decodeJSON(t, resp, &body)
		return body.RequestID
	}

	t.Run("target accepts", func(t *testing.T) {
		ts.DB.Truncate(t)

		requester := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		requestID := newPendingRequest(t, requester.MemberID, target.MemberID)

		cookies := loginCookies(t, ts, target.MemberID)
		resp := postJSONWithCookies(t, ts.APIURL("/contact/request/"+requestID+"/relationship"), map[string]string{
			"decision":           "accept",
			"relationship_type":  "sibling",
			"relationship_label": "sister",
		}, cookies)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			OK     bool   `json:"ok"`
			Status string `json:"status"`
		}
		decodeJSON(t, resp, &body)
		assert.True(t, body.OK)
		assert.Equal(t, "accepted", body.Status)

		var count int64
		require.NoError(t, ts.DB.DB.Model(&domain.Relationship{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("only the target may decide", func(t *testing.T) {
		ts.DB.Truncate(t)

		requester := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		requestID := newPendingRequest(t, requester.MemberID, target.MemberID)

		cookies := loginCookies(t, ts, requester.MemberID)
		resp := postJSONWithCookies(t, ts.APIURL("/contact/request/"+requestID+"/relationship"), map[string]string{
			"decision": "accept",
		}, cookies)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("anonymous decision", func(t *testing.T) {
		ts.DB.Truncate(t)

		requester := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		target := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		requestID := newPendingRequest(t, requester.MemberID, target.MemberID)

		resp := postJSON(t, ts.APIURL("/contact/request/"+requestID+"/relationship"), map[string]string{
			"decision": "accept",
		}, "203.0.113.9")
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown request id", func(t *testing.T) {
		ts.DB.Truncate(t)

		member := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		cookies := loginCookies(t, ts, member.MemberID)

		resp := postJSONWithCookies(t, ts.APIURL("/contact/request/6ba7b810-9dad-11d1-80b4-00c04fd430c8/relationship"), map[string]string{
			"decision": "accept",
		}, cookies)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed request id", func(t *testing.T) {
		ts.DB.Truncate(t)

		member := testutil.NewMemberBuilder().Build(t, ts.DB.DB)
		cookies := loginCookies(t, ts, member.MemberID)

		resp := postJSONWithCookies(t, ts.APIURL("/contact/request/not-a-uuid/relationship"), map[string]string{
			"decision": "accept",
		}, cookies)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
