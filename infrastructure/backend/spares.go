package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"garagedesk/models"
)

type spareEnvelope struct {
	SpareDetails []models.WorkItemRow `json:"spare_details"`
}

// SpareRows fetches the confirmed spare request rows for one job card.
func (c *Client) SpareRows(ctx context.Context, jobCardNo string) ([]models.WorkItemRow, error) {
	q := url.Values{"job_card_no": {jobCardNo}}
	var resp spareEnvelope
	if err := c.do(ctx, http.MethodGet, "/spare-request", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.SpareDetails, nil
}

// CreateSpareRequest is the spare submit payload, analogous to the work
// order one.
type CreateSpareRequest struct {
	JobCardNo    string               `json:"job_card_no"`
	PlateNumber  string               `json:"plate_number"`
	CustomerName string               `json:"customer_name"`
	SpareDetails []models.WorkItemRow `json:"spare_details"`
}

// CreateSpares submits spare draft rows and returns the persisted rows.
func (c *Client) CreateSpares(ctx context.Context, req CreateSpareRequest) ([]models.WorkItemRow, error) {
	var resp spareEnvelope
	if err := c.do(ctx, http.MethodPost, "/spare-request", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.SpareDetails, nil
}

// UpdateSpareDetail replaces one confirmed spare row.
func (c *Client) UpdateSpareDetail(ctx context.Context, id int64, row models.WorkItemRow) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/spare-details/%d", id), nil, row, nil)
}

// DeleteSpareDetail removes one confirmed spare row, confirm-then-apply.
func (c *Client) DeleteSpareDetail(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/spare-details/%d", id), nil, nil, nil)
}
