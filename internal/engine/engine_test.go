package engine_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"imagecheck/internal/engine"
	"imagecheck/internal/validator"
	"imagecheck/pkg/cache"
	"imagecheck/pkg/domain"
	"imagecheck/pkg/imagefetch"
	"imagecheck/pkg/logger"
	"imagecheck/pkg/serrors"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// trackingFetcher records the number of concurrent fetches in flight and the
// high-water mark, and lets individual URLs be scripted to fail or panic.
type trackingFetcher struct {
	mu       sync.Mutex
	inFlight int
	maxSeen  int

	calls    atomic.Int64
	failing  map[string]error
	panicky  map[string]bool
	perFetch time.Duration
}

func newTrackingFetcher() *trackingFetcher {
	return &trackingFetcher{
		failing:  map[string]error{},
		panicky:  map[string]bool{},
		perFetch: 10 * time.Millisecond,
	}
}

func (f *trackingFetcher) Fetch(ctx context.Context, imageURL string) (imagefetch.Response, error) {
	f.calls.Add(1)

	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(f.perFetch)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if f.panicky[imageURL] {
		panic("fetcher exploded")
	}
	if err, ok := f.failing[imageURL]; ok {
		return imagefetch.Response{}, err
	}

	return imagefetch.Response{
		StatusCode:    http.StatusOK,
		ContentType:   "image/png",
		ContentLength: 1024,
	}, nil
}

func (f *trackingFetcher) maxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.maxSeen
}

func newTestEngine(t *testing.T, fetcher imagefetch.Client) (engine.Engine, *cache.Cache) {
	t.Helper()

	logger.Setup(logger.DevelopmentEnvironment)

	meter := sdkmetric.NewMeterProvider().Meter("test")
	c := cache.New(time.Minute)
	v, err := validator.New(fetcher, c, validator.Options{
		AttemptTimeout:   time.Second,
		MaxAttempts:      2,
		BackoffBase:      time.Millisecond,
		MaxContentLength: 10 * 1024 * 1024,
	}, meter)
	require.NoError(t, err)

	e, err := engine.New(v, c, engine.Options{
		Concurrency: 3,
		BatchPause:  5 * time.Millisecond,
	}, meter)
	require.NoError(t, err)

	return e, c
}

func TestProcess_EmptyInput(t *testing.T) {
	e, _ := newTestEngine(t, newTrackingFetcher())

	_, err := e.Process(context.Background(), nil)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = e.Process(context.Background(), []domain.ImageRequest{})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestProcess_NoValidInput(t *testing.T) {
	f := newTrackingFetcher()
	e, _ := newTestEngine(t, f)

	_, err := e.Process(context.Background(), requests("not-a-url", ""))
	require.ErrorIs(t, err, serrors.ErrNoValidInput)
	require.Zero(t, f.calls.Load(), "no network activity for rejected input")
}

func TestProcess_OrderPreservedAcrossGroups(t *testing.T) {
	e, _ := newTestEngine(t, newTrackingFetcher())

	urls := make([]string, 0, 7)
	for i := range 7 {
		urls = append(urls, fmt.Sprintf("https://img.example.com/%d.png", i))
	}

	report, err := e.Process(context.Background(), requests(urls...))
	require.NoError(t, err)
	require.Len(t, report.Results, 7)
	for i, res := range report.Results {
		require.Equal(t, urls[i], res.ImageURL, "output order must match deduplicated input order")
		require.True(t, res.Valid)
	}
}

func TestProcess_ConcurrencyCeiling(t *testing.T) {
	f := newTrackingFetcher()
	e, _ := newTestEngine(t, f)

	urls := make([]string, 0, 7)
	for i := range 7 {
		urls = append(urls, fmt.Sprintf("https://img.example.com/%d.png", i))
	}

	_, err := e.Process(context.Background(), requests(urls...))
	require.NoError(t, err)
	require.LessOrEqual(t, f.maxInFlight(), 3, "no more than 3 fetches may be in flight at once")
}

func TestProcess_DeduplicatesBeforeDispatch(t *testing.T) {
	f := newTrackingFetcher()
	e, _ := newTestEngine(t, f)

	report, err := e.Process(context.Background(), requests(
		"https://a/1.jpg", "https://a/1.jpg", "https://a/2.jpg"))
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	require.Equal(t, "https://a/1.jpg", report.Results[0].ImageURL)
	require.Equal(t, "https://a/2.jpg", report.Results[1].ImageURL)
	require.EqualValues(t, 2, f.calls.Load(), "duplicate URLs must not be fetched twice")
}

func TestProcess_IsolatesPanickingValidation(t *testing.T) {
	f := newTrackingFetcher()
	f.panicky["https://img.example.com/boom.png"] = true
	e, _ := newTestEngine(t, f)

	report, err := e.Process(context.Background(), requests(
		"https://img.example.com/ok1.png",
		"https://img.example.com/boom.png",
		"https://img.example.com/ok2.png"))
	require.NoError(t, err, "one URL's unexpected failure must not abort the batch")
	require.Len(t, report.Results, 3)

	require.True(t, report.Results[0].Valid)
	require.False(t, report.Results[1].Valid)
	require.Contains(t, report.Results[1].Message, "unexpected validation failure")
	require.True(t, report.Results[2].Valid)
}

func TestProcess_MixedOutcomesAndSummary(t *testing.T) {
	f := newTrackingFetcher()
	f.failing["https://img.example.com/dead.png"] = fmt.Errorf("no route to host")
	e, _ := newTestEngine(t, f)

	report, err := e.Process(context.Background(), requests(
		"https://img.example.com/a.png",
		"https://img.example.com/dead.png"))
	require.NoError(t, err)

	require.Equal(t, 2, report.Summary.Total)
	require.Equal(t, 1, report.Summary.Valid)
	require.Equal(t, 1, report.Summary.Invalid)
	require.Equal(t, 0, report.Summary.Cached)
	require.Positive(t, report.Summary.Elapsed)
}

func TestProcess_SecondBatchServedFromCache(t *testing.T) {
	f := newTrackingFetcher()
	e, _ := newTestEngine(t, f)

	reqs := requests("https://img.example.com/a.png")

	first, err := e.Process(context.Background(), reqs)
	require.NoError(t, err)
	require.Equal(t, 0, first.Summary.Cached)

	second, err := e.Process(context.Background(), reqs)
	require.NoError(t, err)
	require.Equal(t, 1, second.Summary.Cached)
	require.True(t, second.Results[0].Cached)
	require.Contains(t, second.Results[0].Message, "(cached)")
	require.EqualValues(t, 1, f.calls.Load(), "cache hit must not fetch again")
}

func TestProcess_CancellationReturnsPartialResults(t *testing.T) {
	f := newTrackingFetcher()
	f.perFetch = 20 * time.Millisecond
	e, _ := newTestEngine(t, f)

	urls := make([]string, 0, 6)
	for i := range 6 {
		urls = append(urls, fmt.Sprintf("https://img.example.com/%d.png", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	report, err := e.Process(ctx, requests(urls...))
	require.NoError(t, err, "cancellation must not discard computed results")
	require.Len(t, report.Results, 6, "every URL still gets an entry")
	for i, res := range report.Results {
		require.Equal(t, urls[i], res.ImageURL)
	}
}

func TestEngine_CacheAdministration(t *testing.T) {
	f := newTrackingFetcher()
	e, _ := newTestEngine(t, f)

	_, err := e.Process(context.Background(), requests("https://img.example.com/a.png"))
	require.NoError(t, err)

	stats := e.CacheStats()
	require.Equal(t, 1, stats.TotalEntries)
	require.Equal(t, 1, stats.FreshEntries)

	e.ClearCache()
	require.Equal(t, 0, e.CacheStats().TotalEntries)
}
