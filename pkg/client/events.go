package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"printhub/pkg/model"
)

const (
	EventHello  = "hello"
	EventChange = "change"
)

// EventStream reads print-job change events from the realtime endpoint.
type EventStream struct {
	httpClient *HttpClient
	path       string
}

func NewEventStream(baseURL string, token TokenSource) *EventStream {
	hc := NewHttpClient(baseURL, token)
	// the stream stays open, so no overall timeout
	hc.HTTPClient = &http.Client{}
	return &EventStream{
		httpClient: hc,
		path:       "/api/v1/realtime/print-jobs",
	}
}

// Stream opens the feed. Ready closes when the server's hello arrives, which
// it sends after registering the subscriber. The error channel receives at
// most one error and is closed together with the event channel when the
// stream ends.
func (s *EventStream) Stream(ctx context.Context, shopOwnerID string) (<-chan model.ChangeEvent, <-chan struct{}, <-chan error) {
	events := make(chan model.ChangeEvent, 16)
	ready := make(chan struct{})
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		defer close(errs)

		req, err := s.httpClient.newRequest(ctx, http.MethodGet, s.path, nil)
		if err != nil {
			errs <- err
			return
		}
		req.Header.Set("Accept", "text/event-stream")

		resp, err := s.httpClient.HTTPClient.Do(req)
		if err != nil {
			errs <- fmt.Errorf("open event stream: %w", err)
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			errs <- fmt.Errorf("open event stream: unexpected status %d", resp.StatusCode)
			return
		}

		if err := readEvents(ctx, bufio.NewScanner(resp.Body), shopOwnerID, events, ready); err != nil {
			errs <- err
		}
	}()

	return events, ready, errs
}

// readEvents closes ready on the first hello event. ready may be nil.
func readEvents(ctx context.Context, scanner *bufio.Scanner, shopOwnerID string, out chan<- model.ChangeEvent, ready chan<- struct{}) error {
	var eventName string
	var data strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if eventName == EventHello && ready != nil {
				close(ready)
				ready = nil
			}
			if eventName == EventChange && data.Len() > 0 {
				var ev model.ChangeEvent
				if err := json.Unmarshal([]byte(data.String()), &ev); err != nil {
					return fmt.Errorf("decode change event: %w", err)
				}
				if shopOwnerID == "" || ev.ShopOwnerID == shopOwnerID {
					select {
					case out <- ev:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
			eventName = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return fmt.Errorf("event stream closed by server")
}
