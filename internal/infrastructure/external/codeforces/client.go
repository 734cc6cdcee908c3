package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/activity"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
	"github.com/codetrack-hub/codetrack-backend/pkg/circuitbreaker"
	"github.com/codetrack-hub/codetrack-backend/pkg/logger"
	"github.com/codetrack-hub/codetrack-backend/pkg/metrics"
	"github.com/codetrack-hub/codetrack-backend/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// DefaultBaseURL is the public Codeforces API root.
const DefaultBaseURL = "https://codeforces.com/api"

// ClientConfig contains configuration for the Codeforces API client.
type ClientConfig struct {
	// BaseURL is the API base URL.
	BaseURL string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RateLimiterConfig controls the outbound request rate.
	RateLimiterConfig RateLimiterConfig

	// FetchContestHistory enables the supplemental user.rating read that
	// feeds contest analytics. The snapshot metrics never depend on it.
	FetchContestHistory bool

	// Logger for structured logging.
	Logger *logger.Logger

	// Metrics records outbound request outcomes (optional).
	Metrics *metrics.Manager
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:             DefaultBaseURL,
		Timeout:             30 * time.Second,
		RateLimiterConfig:   DefaultRateLimiterConfig(),
		FetchContestHistory: true,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the Codeforces platform adapter.
// It implements platform.Adapter and platform.DetailFetcher.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *logger.Logger
	rateLimiter *RateLimiter
	breaker     *circuitbreaker.CircuitBreaker
	retrier     *retry.Retrier
}

// NewClient creates a new Codeforces API client.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = logger.Default()
	}

	c := &Client{
		config:      config,
		httpClient:  &http.Client{Timeout: config.Timeout},
		logger:      config.Logger.With(logger.Component("codeforces")),
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		retrier:     retry.PlatformAPIRetrier(),
	}
	c.breaker = circuitbreaker.PlatformAPIBreaker("codeforces-api", func(name string, from, to circuitbreaker.State) {
		c.logger.Warn("circuit breaker state change",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()))
	})
	return c
}

// Name returns the canonical platform name.
func (c *Client) Name() platform.Name {
	return platform.Codeforces
}

// Fetch pulls and normalizes the handle's activity snapshot.
func (c *Client) Fetch(ctx context.Context, handle platform.Handle) (*platform.RawActivity, error) {
	detail, err := c.FetchDetail(ctx, handle)
	if err != nil {
		return nil, err
	}
	return &detail.Activity, nil
}

// FetchDetail pulls the handle's profile and submission history and
// normalizes them into snapshot metrics plus analytics records.
//
// The snapshot is derived from exactly two reads: user.info (rating, max
// rating) and user.status (verdicts, timestamps, problem names). Contest
// history is a supplemental third read, enabled by configuration.
func (c *Client) FetchDetail(ctx context.Context, handle platform.Handle) (*platform.Detail, error) {
	start := time.Now()

	user, err := c.fetchUser(ctx, handle)
	if err != nil {
		return nil, err
	}

	submissions, err := c.fetchSubmissions(ctx, handle)
	if err != nil {
		return nil, err
	}

	events := make([]activity.Submission, 0, len(submissions))
	for _, sub := range submissions {
		events = append(events, activity.Submission{
			ProblemID:        sub.Problem.Name,
			Verdict:          sub.Verdict,
			TimestampSeconds: sub.CreationTimeSeconds,
		})
	}
	summary := activity.Deduplicate(events)

	detail := &platform.Detail{
		Activity: platform.RawActivity{
			Handle:               platform.Handle(user.Handle),
			CurrentRating:        user.Rating,
			MaxRating:            user.MaxRating,
			ProblemsSolved:       summary.SolvedCount,
			ContestsParticipated: summary.ContestApprox,
		},
		Problems: solvedProblems(submissions),
	}

	if c.config.FetchContestHistory {
		changes, err := c.fetchRatingChanges(ctx, handle)
		if err != nil {
			return nil, err
		}
		detail.Contests = contestResults(changes)
	}

	c.logger.Debug("fetched activity",
		logger.HandleName(handle.String()),
		logger.Int("problems_solved", summary.SolvedCount),
		logger.Int("contest_approx", summary.ContestApprox),
		logger.Latency(time.Since(start)))

	return detail, nil
}

// fetchUser calls user.info for a single handle.
func (c *Client) fetchUser(ctx context.Context, handle platform.Handle) (*userDTO, error) {
	params := url.Values{}
	params.Set("handles", handle.String())

	users, err := getJSON[[]userDTO](ctx, c, "user.info", params)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, shared.NewDomainError("codeforces", "user.info", shared.ErrHandleNotFound,
			"no user returned for handle "+handle.String())
	}
	return &users[0], nil
}

// fetchSubmissions calls user.status for the full submission history.
func (c *Client) fetchSubmissions(ctx context.Context, handle platform.Handle) ([]submissionDTO, error) {
	params := url.Values{}
	params.Set("handle", handle.String())

	return getJSON[[]submissionDTO](ctx, c, "user.status", params)
}

// fetchRatingChanges calls user.rating for the contest history.
func (c *Client) fetchRatingChanges(ctx context.Context, handle platform.Handle) ([]ratingChangeDTO, error) {
	params := url.Values{}
	params.Set("handle", handle.String())

	return getJSON[[]ratingChangeDTO](ctx, c, "user.rating", params)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// solvedProblems reduces the submission history to one record per distinct
// accepted problem, keeping the earliest accepted timestamp.
func solvedProblems(submissions []submissionDTO) []activity.Problem {
	earliest := make(map[string]submissionDTO)
	for _, sub := range submissions {
		if sub.Verdict != activity.VerdictAccepted {
			continue
		}
		prev, seen := earliest[sub.Problem.Name]
		if !seen || sub.CreationTimeSeconds < prev.CreationTimeSeconds {
			earliest[sub.Problem.Name] = sub
		}
	}

	problems := make([]activity.Problem, 0, len(earliest))
	for _, sub := range earliest {
		problems = append(problems, activity.Problem{
			Name:     sub.Problem.Name,
			Rating:   sub.Problem.Rating,
			Tags:     sub.Problem.Tags,
			SolvedAt: time.Unix(sub.CreationTimeSeconds, 0).UTC(),
		})
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].SolvedAt.Before(problems[j].SolvedAt) })
	return problems
}

// contestResults maps rating changes to contest records.
func contestResults(changes []ratingChangeDTO) []activity.Contest {
	contests := make([]activity.Contest, 0, len(changes))
	for _, ch := range changes {
		contests = append(contests, activity.Contest{
			Name:         ch.ContestName,
			Date:         time.Unix(ch.RatingUpdateTimeSeconds, 0).UTC(),
			Rank:         ch.Rank,
			RatingBefore: ch.OldRating,
			RatingAfter:  ch.NewRating,
		})
	}
	return contests
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP PLUMBING
// ══════════════════════════════════════════════════════════════════════════════

// getJSON performs one API call with rate limiting, circuit breaking and
// retries, unwrapping the response envelope.
func getJSON[T any](ctx context.Context, c *Client, endpoint string, params url.Values) (T, error) {
	var result T

	requestURL := fmt.Sprintf("%s/%s?%s", c.config.BaseURL, endpoint, params.Encode())

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			if err := c.rateLimiter.Allow(ctx); err != nil {
				return retry.Permanent(shared.WrapError("codeforces", endpoint, shared.ErrRateLimited,
					"local rate limiter saturated", err))
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
			if err != nil {
				return retry.Permanent(shared.WrapError("codeforces", endpoint, shared.ErrExternalService,
					"failed to build request", err))
			}
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return retry.Retryable(shared.WrapError("codeforces", endpoint, shared.ErrTransient,
					"request failed", err))
			}
			defer resp.Body.Close()

			if err := classifyStatus(endpoint, resp.StatusCode); err != nil {
				return err
			}

			var envelope apiResponse[T]
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				return retry.Permanent(shared.WrapError("codeforces", endpoint, shared.ErrExternalService,
					"malformed response body", err))
			}

			if envelope.Status != statusOK {
				remote := &remoteError{Endpoint: endpoint, Comment: envelope.Comment}
				if isNotFoundComment(envelope.Comment) {
					return retry.Permanent(shared.WrapError("codeforces", endpoint, shared.ErrHandleNotFound,
						envelope.Comment, remote))
				}
				return retry.Permanent(shared.WrapError("codeforces", endpoint, shared.ErrExternalService,
					envelope.Comment, remote))
			}

			result = envelope.Result
			return nil
		})
	})
	if err != nil {
		c.recordCall(endpoint, "error")
		return result, err
	}

	c.recordCall(endpoint, "ok")
	return result, nil
}

// classifyStatus maps a non-2xx HTTP status onto a failure kind. Throttling
// and server-side errors stay retryable; everything else is final.
func classifyStatus(endpoint string, code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return retry.Retryable(shared.NewDomainError("codeforces", endpoint, shared.ErrRateLimited,
			fmt.Sprintf("remote throttled the request (status %d)", code)))
	case code >= 500:
		return retry.Retryable(shared.NewDomainError("codeforces", endpoint, shared.ErrTransient,
			fmt.Sprintf("upstream server error (status %d)", code)))
	default:
		return retry.Permanent(shared.NewDomainError("codeforces", endpoint, shared.ErrExternalService,
			fmt.Sprintf("unexpected status %d", code)))
	}
}

// recordCall records an outbound request outcome, if metrics are wired.
func (c *Client) recordCall(endpoint, status string) {
	if c.config.Metrics != nil {
		c.config.Metrics.RecordAdapterCall("codeforces", status)
	}
}

// isNotFoundComment reports whether a remote comment describes a missing
// handle. Codeforces phrases it "handles: User with handle X not found".
func isNotFoundComment(comment string) bool {
	return strings.Contains(strings.ToLower(comment), "not found")
}
