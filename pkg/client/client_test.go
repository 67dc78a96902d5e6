package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"printhub/pkg/model"
)

const shopID = "65f1a2b3c4d5e6f7a8b9c0d1"

func staticToken(token string) TokenSource {
	return func(context.Context) (string, error) { return token, nil }
}

func TestReadEvents(t *testing.T) {
	stream := ": connected\n" +
		"event: hello\ndata: {}\n\n" +
		"event: change\ndata: {\"type\":\"INSERT\",\"record_id\":\"j1\",\"shop_owner_id\":\"" + shopID + "\"}\n\n" +
		"event: change\ndata: {\"type\":\"UPDATE\",\"record_id\":\"j9\",\"shop_owner_id\":\"other\"}\n\n" +
		": ping\n\n" +
		"event: change\ndata: {\"type\":\"DELETE\",\n" +
		"data: \"record_id\":\"j1\",\"shop_owner_id\":\"" + shopID + "\"}\n\n"

	out := make(chan model.ChangeEvent, 10)
	ready := make(chan struct{})
	err := readEvents(context.Background(), bufio.NewScanner(strings.NewReader(stream)), shopID, out, ready)
	if err == nil || !strings.Contains(err.Error(), "closed by server") {
		t.Fatalf("readEvents() error = %v, want closed by server", err)
	}
	close(out)

	select {
	case <-ready:
	default:
		t.Error("hello event should close ready")
	}

	var got []model.ChangeEvent
	for ev := range out {
		got = append(got, ev)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(got), got)
	}
	if got[0].Type != model.ChangeInsert || got[1].Type != model.ChangeDelete || got[1].RecordID != "j1" {
		t.Errorf("events = %+v", got)
	}
}

func TestReadEvents_BadPayload(t *testing.T) {
	out := make(chan model.ChangeEvent, 1)
	err := readEvents(context.Background(), bufio.NewScanner(strings.NewReader("event: change\ndata: {nope\n\n")), "", out, nil)
	if err == nil || !strings.Contains(err.Error(), "decode change event") {
		t.Errorf("readEvents() error = %v, want decode failure", err)
	}
}

func TestEventStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: hello\ndata: {}\n\n"))
		_, _ = w.Write([]byte("event: change\ndata: {\"type\":\"UPDATE\",\"record_id\":\"j2\",\"shop_owner_id\":\"" + shopID + "\"}\n\n"))
	}))
	defer srv.Close()

	t.Run("delivers events then reports the close", func(t *testing.T) {
		events, ready, errs := NewEventStream(srv.URL, staticToken("tok")).Stream(context.Background(), shopID)
		select {
		case <-ready:
		case <-time.After(2 * time.Second):
			t.Fatal("ready not closed after hello")
		}
		ev, ok := <-events
		if !ok || ev.RecordID != "j2" {
			t.Fatalf("first event = %+v, %v", ev, ok)
		}
		if err := <-errs; err == nil {
			t.Error("expected an error once the server closes the stream")
		}
	})

	t.Run("rejected stream", func(t *testing.T) {
		events, ready, errs := NewEventStream(srv.URL, staticToken("bad")).Stream(context.Background(), shopID)
		err := <-errs
		if err == nil || !strings.Contains(err.Error(), "401") {
			t.Errorf("error = %v, want status 401", err)
		}
		select {
		case <-ready:
			t.Error("ready should stay open for a rejected stream")
		default:
		}
		if _, ok := <-events; ok {
			t.Error("events channel should be closed")
		}
	})
}

func TestPrintJobsClient(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Authentication required"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []model.PrintJob{{ID: "j1", ShopOwnerID: shopID, Status: model.JobStatusPending}},
		})
	}))
	defer srv.Close()

	jobs, err := NewPrintJobsClient(srv.URL, staticToken("tok")).List(context.Background(), model.JobStatusPending, 20)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "j1" {
		t.Errorf("List() = %+v", jobs)
	}
	if gotQuery != "limit=20&status=pending" {
		t.Errorf("query = %q", gotQuery)
	}

	_, err = NewPrintJobsClient(srv.URL, staticToken("nope")).FetchJobs(context.Background(), shopID)
	if err == nil || !strings.Contains(err.Error(), "Authentication required") {
		t.Errorf("FetchJobs() error = %v", err)
	}
}

func TestPrintJobsClient_FetchJobsPages(t *testing.T) {
	queue := make([]model.PrintJob, 150)
	for i := range queue {
		queue[i] = model.PrintJob{ID: fmt.Sprintf("job-%03d", i), ShopOwnerID: shopID, Status: model.JobStatusPending}
	}

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > 100 {
			limit = 100
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := min(offset+limit, len(queue))
		if offset > end {
			offset = end
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":        queue[offset:end],
			"total_count": len(queue),
			"limit":       limit,
			"offset":      offset,
		})
	}))
	defer srv.Close()

	jobs, err := NewPrintJobsClient(srv.URL, staticToken("tok")).FetchJobs(context.Background(), shopID)
	if err != nil {
		t.Fatalf("FetchJobs() error = %v", err)
	}
	if len(jobs) != len(queue) {
		t.Fatalf("FetchJobs() returned %d jobs, want %d", len(jobs), len(queue))
	}
	if jobs[0].ID != "job-000" || jobs[149].ID != "job-149" {
		t.Errorf("FetchJobs() order = %s .. %s", jobs[0].ID, jobs[149].ID)
	}
	if requests.Load() != 2 {
		t.Errorf("requests = %d, want 2", requests.Load())
	}
}

func TestAuthClient(t *testing.T) {
	expires := time.Date(2026, 10, 17, 13, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch r.URL.Path {
		case "/api/v1/auth/signin":
			if body["password"] != "secret1" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Invalid email or password"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": model.AuthSession{AccessToken: "a1", RefreshToken: "r1", ExpiresAt: expires}})
		case "/api/v1/auth/refresh":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": model.AuthSession{AccessToken: "a2", RefreshToken: body["refresh_token"] + "-next"}})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer srv.Close()

	c := NewAuthClient(srv.URL)
	tokens, err := c.SignIn(context.Background(), "ada@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if tokens.AccessToken != "a1" || tokens.RefreshToken != "r1" || !tokens.ExpiresAt.Equal(expires) {
		t.Errorf("SignIn() = %+v", tokens)
	}

	if _, err := c.SignIn(context.Background(), "ada@example.com", "wrong"); err == nil || !strings.Contains(err.Error(), "Invalid email or password") {
		t.Errorf("SignIn() wrong password error = %v", err)
	}

	refreshed, err := c.Refresh(context.Background(), "r1")
	if err != nil || refreshed.RefreshToken != "r1-next" {
		t.Errorf("Refresh() = %+v, %v", refreshed, err)
	}

	if err := c.SignOut(context.Background(), "r1-next"); err != nil {
		t.Errorf("SignOut() error = %v", err)
	}
}
