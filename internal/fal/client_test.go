package fal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// queueServer fakes the FAL queue endpoints: submission, status polling, and
// result retrieval. The request walks IN_QUEUE -> IN_PROGRESS -> COMPLETED,
// one state per status poll.
type queueServer struct {
	*httptest.Server

	polls    atomic.Int64
	lastAuth atomic.Value // string
	received atomic.Value // GenerateRequest
	result   GenerateResponse
}

func newQueueServer(t *testing.T, result GenerateResponse) *queueServer {
	t.Helper()
	qs := &queueServer{result: result}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		qs.lastAuth.Store(r.Header.Get("Authorization"))

		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		qs.received.Store(req)

		json.NewEncoder(w).Encode(map[string]string{
			"request_id":   "req-123",
			"status_url":   qs.URL + "/status",
			"response_url": qs.URL + "/response",
		})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		qs.lastAuth.Store(r.Header.Get("Authorization"))
		require.Equal(t, "1", r.URL.Query().Get("logs"))

		var update QueueUpdate
		switch qs.polls.Add(1) {
		case 1:
			update = QueueUpdate{Status: StatusInQueue, QueuePosition: 2}
		case 2:
			update = QueueUpdate{Status: StatusInProgress, Logs: []LogEntry{{Message: "rendering"}}}
		default:
			update = QueueUpdate{Status: StatusCompleted, Logs: []LogEntry{{Message: "rendering"}, {Message: "done"}}}
		}
		json.NewEncoder(w).Encode(update)
	})
	mux.HandleFunc("/response", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(qs.result)
	})

	qs.Server = httptest.NewServer(mux)
	t.Cleanup(qs.Close)
	return qs
}

func testClient(srv *queueServer) *Client {
	return NewClient("secret-key",
		WithBaseURL(srv.URL),
		WithPollInterval(time.Millisecond),
	)
}

func TestSubscribe_SubmitPollFetch(t *testing.T) {
	srv := newQueueServer(t, GenerateResponse{
		Images: []Image{{URL: "https://cdn.example/img.png", Width: 2048, Height: 2048}},
		Seed:   31337,
	})
	c := testClient(srv)

	seed := int64(31337)
	req := &GenerateRequest{
		Prompt:    "a lighthouse at dusk",
		ImageSize: &ImageSize{Width: 2048, Height: 2048},
		NumImages: 2,
		Seed:      &seed,
	}

	var updates []QueueUpdate
	resp, err := c.Subscribe(context.Background(), ModelSeedDreamV4, req, func(u QueueUpdate) {
		updates = append(updates, u)
	})
	require.NoError(t, err)

	require.Len(t, resp.Images, 1)
	require.Equal(t, int64(31337), resp.Seed)

	// The callback sees every poll, terminal state included.
	require.Len(t, updates, 3)
	require.Equal(t, StatusInQueue, updates[0].Status)
	require.Equal(t, StatusInProgress, updates[1].Status)
	require.Equal(t, "rendering", updates[1].Logs[0].Message)
	require.Equal(t, StatusCompleted, updates[2].Status)

	// The submitted payload round-trips intact.
	sent := srv.received.Load().(GenerateRequest)
	require.Equal(t, "a lighthouse at dusk", sent.Prompt)
	require.Equal(t, 2048, sent.ImageSize.Width)
	require.Equal(t, 2, sent.NumImages)
	require.Equal(t, seed, *sent.Seed)
}

func TestSubscribe_NilCallback(t *testing.T) {
	srv := newQueueServer(t, GenerateResponse{Images: []Image{{URL: "u"}}, Seed: 1})
	c := testClient(srv)

	resp, err := c.Subscribe(context.Background(), ModelSeedDreamV4, &GenerateRequest{Prompt: "p"}, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Seed)
}

func TestSubscribe_AuthorizationHeader(t *testing.T) {
	srv := newQueueServer(t, GenerateResponse{Images: []Image{{URL: "u"}}})
	c := testClient(srv)

	_, err := c.Subscribe(context.Background(), ModelSeedDreamV4, &GenerateRequest{Prompt: "p"}, nil)
	require.NoError(t, err)
	require.Equal(t, "Key secret-key", srv.lastAuth.Load().(string))
}

func TestSubscribe_SubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"invalid api key"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL), WithPollInterval(time.Millisecond))
	_, err := c.Subscribe(context.Background(), ModelSeedDreamV4, &GenerateRequest{Prompt: "p"}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.Contains(t, apiErr.Error(), "invalid api key")
}

func TestSubscribe_IncompleteAcknowledgement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"request_id": "req-123"})
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.Subscribe(context.Background(), ModelSeedDreamV4, &GenerateRequest{Prompt: "p"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing status or response URL")
}

func TestSubscribe_ContextCancelledWhilePolling(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"request_id":   "req-123",
			"status_url":   "http://" + r.Host + "/status",
			"response_url": "http://" + r.Host + "/response",
		})
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		// Never completes.
		json.NewEncoder(w).Encode(QueueUpdate{Status: StatusInProgress})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient("k", WithBaseURL(srv.URL), WithPollInterval(10*time.Millisecond))
	_, err := c.Subscribe(ctx, ModelSeedDreamV4, &GenerateRequest{Prompt: "p"}, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAPIError_Messages(t *testing.T) {
	withBody := &APIError{StatusCode: 422, Body: `{"detail":"prompt too long"}`}
	require.Contains(t, withBody.Error(), "422")
	require.Contains(t, withBody.Error(), "prompt too long")

	bare := &APIError{StatusCode: 500}
	require.Equal(t, "fal: unexpected status 500", bare.Error())
}

func TestGenerateRequest_OmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(&GenerateRequest{Prompt: "p"})
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &m))
	require.Equal(t, map[string]interface{}{"prompt": "p"}, m)
}
