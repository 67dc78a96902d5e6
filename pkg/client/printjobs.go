package client

import (
	"context"
	"fmt"
	"net/url"

	"printhub/pkg/model"
)

type PrintJobsClient struct {
	httpClient *HttpClient
}

func NewPrintJobsClient(baseURL string, token TokenSource) *PrintJobsClient {
	return &PrintJobsClient{
		httpClient: NewHttpClient(baseURL, token),
	}
}

// FetchPageSize matches the server's pagination cap.
const FetchPageSize = 100

// Page is one slice of a paginated listing.
type Page struct {
	Jobs       []*model.PrintJob
	TotalCount int64
	Limit      int
	Offset     int64
}

// List returns the first page of the authenticated shop owner's queue, newest first.
func (c *PrintJobsClient) List(ctx context.Context, status model.JobStatus, limit int) ([]*model.PrintJob, error) {
	page, err := c.ListPage(ctx, status, limit, 0)
	if err != nil {
		return nil, err
	}
	return page.Jobs, nil
}

func (c *PrintJobsClient) ListPage(ctx context.Context, status model.JobStatus, limit int, offset int64) (*Page, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", offset))
	}

	resp, err := c.httpClient.GET(ctx, "/api/v1/print-jobs?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("list print jobs: %s", GetErrorMessage(resp))
	}

	var envelope struct {
		Data       []*model.PrintJob `json:"data"`
		TotalCount int64             `json:"total_count"`
		Limit      int               `json:"limit"`
		Offset     int64             `json:"offset"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, fmt.Errorf("decode print jobs: %w", err)
	}
	return &Page{
		Jobs:       envelope.Data,
		TotalCount: envelope.TotalCount,
		Limit:      envelope.Limit,
		Offset:     envelope.Offset,
	}, nil
}

// FetchJobs reloads the full queue, following offsets until total_count is
// reached. The shop is taken from the bearer token, so shopOwnerID only
// scopes the call for callers that track several shops.
func (c *PrintJobsClient) FetchJobs(ctx context.Context, shopOwnerID string) ([]*model.PrintJob, error) {
	var jobs []*model.PrintJob
	seen := make(map[string]struct{})
	var offset int64

	for {
		page, err := c.ListPage(ctx, "", FetchPageSize, offset)
		if err != nil {
			return nil, err
		}
		for _, job := range page.Jobs {
			// rows shift between pages when jobs arrive mid-fetch
			if _, dup := seen[job.ID]; dup {
				continue
			}
			seen[job.ID] = struct{}{}
			jobs = append(jobs, job)
		}

		offset += int64(len(page.Jobs))
		if len(page.Jobs) == 0 || offset >= page.TotalCount {
			return jobs, nil
		}
	}
}

func (c *PrintJobsClient) UpdateStatus(ctx context.Context, id string, status model.JobStatus) (*model.PrintJob, error) {
	resp, err := c.httpClient.PATCH(ctx, "/api/v1/print-jobs/id/"+url.PathEscape(id)+"/status", model.StatusUpdate{Status: status})
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("update print job %s: %s", id, GetErrorMessage(resp))
	}

	var job model.PrintJob
	if err := resp.DecodeData(&job); err != nil {
		return nil, fmt.Errorf("decode print job: %w", err)
	}
	return &job, nil
}
