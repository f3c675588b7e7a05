package espn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fortifiedfantasy/fein-server/internal/domain"
)

var (
	// ErrUnauthorized means every candidate was rejected upstream; the UI
	// should prompt the member to re-link ESPN.
	ErrUnauthorized = errors.New("all credential candidates unauthorized")
	// ErrAllCandidatesFailed covers timeouts and transport failures across
	// the whole candidate list.
	ErrAllCandidatesFailed = errors.New("all credential candidates failed")
	// ErrUpstream is a non-auth upstream failure; trying further candidates
	// would not help.
	ErrUpstream = errors.New("upstream error")
)

// Result is a successful upstream fetch plus the candidate that won.
type Result struct {
	Body      []byte
	Candidate domain.Candidate
}

// Client issues authenticated reads against the ESPN fantasy API, trying
// resolver candidates in order.
type Client struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		HTTP:    &http.Client{},
	}
}

// FetchWithCandidates tries each candidate in order. A 401 moves to the next
// candidate; a timeout or transport error counts the candidate as failed; any
// other non-2xx stops and surfaces as an upstream error.
func (c *Client) FetchWithCandidates(ctx context.Context, path string, candidates []domain.Candidate) (*Result, error) {
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}

	sawUnauthorized := false
	for _, cand := range candidates {
		body, status, err := c.fetch(ctx, path, cand)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("ERROR [espn.Client] candidate %s (%s): %v", cand.MemberID, cand.Source, err)
			continue
		}
		switch {
		case status == http.StatusUnauthorized:
			sawUnauthorized = true
			continue
		case status >= 200 && status < 300:
			return &Result{Body: body, Candidate: cand}, nil
		default:
			return nil, fmt.Errorf("%w: status %d", ErrUpstream, status)
		}
	}

	if sawUnauthorized {
		return nil, ErrUnauthorized
	}
	return nil, ErrAllCandidatesFailed
}

func (c *Client) fetch(ctx context.Context, path string, cand domain.Candidate) ([]byte, int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cookie", fmt.Sprintf("SWID=%s; espn_s2=%s", cand.SWID, cand.S2))

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 &&
		!strings.Contains(resp.Header.Get("Content-Type"), "json") {
		// A 2xx HTML page is ESPN's soft login wall; treat like an auth miss.
		return nil, http.StatusUnauthorized, nil
	}
	return body, resp.StatusCode, nil
}
