package codeforces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

func newTestClient(baseURL string, fetchContests bool) *Client {
	return NewClient(ClientConfig{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		RateLimiterConfig: RateLimiterConfig{
			RequestsPerSecond: 1000,
			BurstSize:         100,
			MinInterval:       0,
			WaitTimeout:       time.Second,
		},
		FetchContestHistory: fetchContests,
	})
}

func writeOK(t *testing.T, w http.ResponseWriter, result any) {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"OK","result":` + string(raw) + `}`))
}

func testUser() userDTO {
	return userDTO{Handle: "tourist", Rating: 3800, MaxRating: 3979, Rank: "legendary grandmaster"}
}

func testSubmissions() []submissionDTO {
	return []submissionDTO{
		{ID: 1, Problem: problemDTO{ContestID: 1, Index: "A", Name: "Theatre Square", Rating: 1000, Tags: []string{"math"}}, Verdict: "OK", CreationTimeSeconds: 1000},
		{ID: 2, Problem: problemDTO{ContestID: 1, Index: "A", Name: "Theatre Square", Rating: 1000, Tags: []string{"math"}}, Verdict: "OK", CreationTimeSeconds: 90000},
		{ID: 3, Problem: problemDTO{ContestID: 2, Index: "B", Name: "Watermelon", Rating: 800}, Verdict: "WRONG_ANSWER", CreationTimeSeconds: 2000},
		{ID: 4, Problem: problemDTO{ContestID: 3, Index: "C", Name: "Registration System", Rating: 1300}, Verdict: "OK", CreationTimeSeconds: 90005},
	}
}

func TestClientName(t *testing.T) {
	c := newTestClient("http://localhost", false)
	assert.Equal(t, platform.Codeforces, c.Name())
}

func TestClientFetch(t *testing.T) {
	var ratingCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user.info":
			assert.Equal(t, "tourist", r.URL.Query().Get("handles"))
			writeOK(t, w, []userDTO{testUser()})
		case "/user.status":
			assert.Equal(t, "tourist", r.URL.Query().Get("handle"))
			writeOK(t, w, testSubmissions())
		case "/user.rating":
			atomic.AddInt32(&ratingCalls, 1)
			writeOK(t, w, []ratingChangeDTO{})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, false)

	raw, err := c.Fetch(context.Background(), platform.Handle("tourist"))
	require.NoError(t, err)

	assert.Equal(t, platform.Handle("tourist"), raw.Handle)
	assert.Equal(t, 3800, raw.CurrentRating)
	assert.Equal(t, 3979, raw.MaxRating)
	// Theatre Square solved twice counts once; Watermelon was rejected.
	assert.Equal(t, 2, raw.ProblemsSolved)
	// Accepted timestamps fall on two distinct UTC days.
	assert.Equal(t, 2, raw.ContestsParticipated)

	assert.Zero(t, atomic.LoadInt32(&ratingCalls), "contest history disabled, user.rating must not be called")
}

func TestClientFetchDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user.info":
			writeOK(t, w, []userDTO{testUser()})
		case "/user.status":
			writeOK(t, w, testSubmissions())
		case "/user.rating":
			writeOK(t, w, []ratingChangeDTO{
				{ContestID: 42, ContestName: "Round 42", Rank: 7, RatingUpdateTimeSeconds: 200000, OldRating: 3700, NewRating: 3800},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, true)

	detail, err := c.FetchDetail(context.Background(), platform.Handle("tourist"))
	require.NoError(t, err)

	require.Len(t, detail.Problems, 2)
	// Ordered by earliest accepted timestamp; the duplicate keeps the first.
	assert.Equal(t, "Theatre Square", detail.Problems[0].Name)
	assert.Equal(t, time.Unix(1000, 0).UTC(), detail.Problems[0].SolvedAt)
	assert.Equal(t, "Registration System", detail.Problems[1].Name)

	require.Len(t, detail.Contests, 1)
	assert.Equal(t, "Round 42", detail.Contests[0].Name)
	assert.Equal(t, 7, detail.Contests[0].Rank)
	assert.Equal(t, 100, detail.Contests[0].RatingChange())
}

func TestClientFetchHandleNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"FAILED","comment":"handles: User with handle ghost not found"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, false)

	_, err := c.Fetch(context.Background(), platform.Handle("ghost"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrHandleNotFound)
	assert.Contains(t, err.Error(), "User with handle ghost not found")
}

func TestClientFetchRemoteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"FAILED","comment":"Call limit exceeded"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, false)

	_, err := c.Fetch(context.Background(), platform.Handle("tourist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Contains(t, err.Error(), "Call limit exceeded")
}

func TestClientFetchServerErrorRecovers(t *testing.T) {
	var infoCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user.info":
			if atomic.AddInt32(&infoCalls, 1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			writeOK(t, w, []userDTO{testUser()})
		case "/user.status":
			writeOK(t, w, testSubmissions())
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, false)

	raw, err := c.Fetch(context.Background(), platform.Handle("tourist"))
	require.NoError(t, err)
	assert.Equal(t, 3800, raw.CurrentRating)
	assert.Equal(t, int32(2), atomic.LoadInt32(&infoCalls))
}

func TestClientFetchRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(server.URL, false)

	_, err := c.Fetch(context.Background(), platform.Handle("tourist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrRateLimited)
}

func TestClientFetchMalformedResponse(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, false)

	_, err := c.Fetch(context.Background(), platform.Handle("tourist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "malformed payloads are not retried")
}
