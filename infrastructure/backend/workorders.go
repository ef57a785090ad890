package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"garagedesk/models"
)

type workOrderEnvelope struct {
	WorkDetails []models.WorkItemRow `json:"work_details"`
}

type workOrderListResponse struct {
	Data []workOrderEnvelope `json:"data"`
}

// WorkOrderSearch fetches every work detail row recorded against a job card
// via the search endpoint. This is the authoritative pre-check used before
// assigning a new draft id.
func (c *Client) WorkOrderSearch(ctx context.Context, jobCardNo string) ([]models.WorkItemRow, error) {
	q := url.Values{"job_card_no": {jobCardNo}}
	var resp workOrderListResponse
	if err := c.do(ctx, http.MethodGet, "/work-orders", q, nil, &resp); err != nil {
		return nil, err
	}
	var rows []models.WorkItemRow
	for _, env := range resp.Data {
		rows = append(rows, env.WorkDetails...)
	}
	return rows, nil
}

// WorkOrderRows fetches the confirmed work detail rows for one job card.
// Used by the polling refresh.
func (c *Client) WorkOrderRows(ctx context.Context, jobCardNo string) ([]models.WorkItemRow, error) {
	var resp workOrderEnvelope
	path := "/work-orders/job-card/" + url.PathEscape(jobCardNo)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.WorkDetails, nil
}

// CreateWorkOrderRequest is the submit payload: the parent job fields plus
// the full draft sequence.
type CreateWorkOrderRequest struct {
	JobCardNo      string               `json:"job_card_no"`
	PlateNumber    string               `json:"plate_number"`
	CustomerName   string               `json:"customer_name"`
	RepairCategory string               `json:"repair_category"`
	WorkDetails    []models.WorkItemRow `json:"work_details"`
}

// CreateWorkOrder submits draft rows and returns the authoritative rows the
// server persisted, ids included.
func (c *Client) CreateWorkOrder(ctx context.Context, req CreateWorkOrderRequest) ([]models.WorkItemRow, error) {
	var resp workOrderEnvelope
	if err := c.do(ctx, http.MethodPost, "/work-orders", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.WorkDetails, nil
}

// UpdateWorkDetail replaces one confirmed row.
func (c *Client) UpdateWorkDetail(ctx context.Context, id int64, row models.WorkItemRow) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/work-details/%d", id), nil, row, nil)
}

// DeleteWorkDetail removes one confirmed row. Callers must not drop the row
// from any view until this returns nil.
func (c *Client) DeleteWorkDetail(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/work-details/%d", id), nil, nil, nil)
}

// AverageProgress reads the server-side average for a work order.
func (c *Client) AverageProgress(ctx context.Context, workOrderID int64) (int, error) {
	var resp struct {
		AverageProgress int `json:"average_progress"`
	}
	path := fmt.Sprintf("/work-orders/%d/average-progress", workOrderID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.AverageProgress, nil
}

// PushRepairStatus patches the derived parent status onto the repair record.
func (c *Client) PushRepairStatus(ctx context.Context, repairID int64, status string) error {
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/repairs/%d", repairID), nil, body, nil)
}

// JobCards lists the job cards shown on the dashboard landing screen.
func (c *Client) JobCards(ctx context.Context) ([]models.JobCard, error) {
	var resp struct {
		Data []models.JobCard `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/job-cards", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
