package espn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
	"github.com/fortifiedfantasy/fein-server/internal/espn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(swid, s2 string) domain.Candidate {
	return domain.Candidate{SWID: swid, S2: s2, Source: domain.SourceMemberLink}
}

func TestClient_FetchWithCandidates(t *testing.T) {
	goodSWID := "{AAAAAAAA-AAAA-AAAA-AAAA-AAAAAAAAAAAA}"
	badSWID := "{BBBBBBBB-BBBB-BBBB-BBBB-BBBBBBBBBBBB}"

	t.Run("first candidate wins", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("Cookie"), "SWID="+goodSWID)
			assert.Contains(t, r.Header.Get("Cookie"), "espn_s2=good")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":12345}`))
		}))
		defer upstream.Close()

		client := espn.NewClient(upstream.URL, time.Second)
		result, err := client.FetchWithCandidates(context.Background(), "/leagues/12345",
			[]domain.Candidate{candidate(goodSWID, "good")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":12345}`, string(result.Body))
		assert.Equal(t, goodSWID, result.Candidate.SWID)
	})

	t.Run("unauthorized candidate falls through to the next", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Cookie") == "SWID="+badSWID+"; espn_s2=bad" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok":true}`))
		}))
		defer upstream.Close()

		client := espn.NewClient(upstream.URL, time.Second)
		result, err := client.FetchWithCandidates(context.Background(), "/leagues/12345",
			[]domain.Candidate{candidate(badSWID, "bad"), candidate(goodSWID, "good")})
		require.NoError(t, err)
		assert.Equal(t, goodSWID, result.Candidate.SWID)
	})

	t.Run("all candidates unauthorized", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer upstream.Close()

		client := espn.NewClient(upstream.URL, time.Second)
		_, err := client.FetchWithCandidates(context.Background(), "/leagues/12345",
			[]domain.Candidate{candidate(badSWID, "bad"), candidate(goodSWID, "good")})
		assert.ErrorIs(t, err, espn.ErrUnauthorized)
	})

	t.Run("2xx html counts as an auth miss", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>log in</html>"))
		}))
		defer upstream.Close()

		client := espn.NewClient(upstream.URL, time.Second)
		_, err := client.FetchWithCandidates(context.Background(), "/leagues/12345",
			[]domain.Candidate{candidate(goodSWID, "good")})
		assert.ErrorIs(t, err, espn.ErrUnauthorized)
	})

	t.Run("server error stops the chain", func(t *testing.T) {
		var calls int
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer upstream.Close()

		client := espn.NewClient(upstream.URL, time.Second)
		_, err := client.FetchWithCandidates(context.Background(), "/leagues/12345",
			[]domain.Candidate{candidate(goodSWID, "good"), candidate(badSWID, "bad")})
		assert.ErrorIs(t, err, espn.ErrUpstream)
		assert.Equal(t, 1, calls)
	})

	t.Run("transport failure across the list", func(t *testing.T) {
		client := espn.NewClient("http://127.0.0.1:1", 200*time.Millisecond)
		_, err := client.FetchWithCandidates(context.Background(), "/leagues/12345",
			[]domain.Candidate{candidate(goodSWID, "good")})
		assert.ErrorIs(t, err, espn.ErrAllCandidatesFailed)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		client := espn.NewClient("http://127.0.0.1:1", time.Second)
		_, err := client.FetchWithCandidates(context.Background(), "/leagues/12345", nil)
		assert.ErrorIs(t, err, domain.ErrNoCandidates)
	})
}
