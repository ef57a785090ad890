package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garagedesk/models"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-token", 5*time.Second)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"work_details":[]}`))
	})

	if _, err := c.WorkOrderRows(context.Background(), "JC-1001"); err != nil {
		t.Fatalf("work order rows: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
}

func TestWorkOrderSearchFlattensEnvelopes(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/work-orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("job_card_no") != "JC-1001" {
			t.Errorf("missing job_card_no query, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[{"work_details":[{"id":1},{"id":2}]},{"work_details":[{"id":5}]}]}`))
	})

	rows, err := c.WorkOrderSearch(context.Background(), "JC-1001")
	if err != nil {
		t.Fatalf("work order search: %v", err)
	}
	if len(rows) != 3 || rows[0].ID != 1 || rows[2].ID != 5 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestCreateWorkOrderPostsDraftsAndDecodesRows(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/work-orders" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req CreateWorkOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.JobCardNo != "JC-1001" || len(req.WorkDetails) != 1 {
			t.Errorf("unexpected payload: %+v", req)
		}
		_, _ = w.Write([]byte(`{"work_details":[{"id":3,"status":"started","progress":40}]}`))
	})

	p := 40
	rows, err := c.CreateWorkOrder(context.Background(), CreateWorkOrderRequest{
		JobCardNo:   "JC-1001",
		WorkDetails: []models.WorkItemRow{{ID: 3, Status: "started", Progress: &p}},
	})
	if err != nil {
		t.Fatalf("create work order: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 3 || rows[0].Progress == nil || *rows[0].Progress != 40 {
		t.Fatalf("unexpected returned rows: %+v", rows)
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "job card not found", http.StatusNotFound)
	})

	_, err := c.WorkOrderRows(context.Background(), "JC-missing")
	if err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestDeleteToleratesNoContent(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/work-details/7" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeleteWorkDetail(context.Background(), 7); err != nil {
		t.Fatalf("delete work detail: %v", err)
	}
}

func TestContextCancellationAborts(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.WorkOrderRows(ctx, "JC-1001"); err == nil {
		t.Fatal("expected context cancellation error")
	}
}
