package worksession

import (
	"context"

	"garagedesk/infrastructure/backend"
	"garagedesk/models"
)

// WorkOrderBackend adapts the work-order endpoints to the session Backend.
type WorkOrderBackend struct {
	Client *backend.Client
}

func (b WorkOrderBackend) Precheck(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
	return b.Client.WorkOrderSearch(ctx, jobKey)
}

func (b WorkOrderBackend) Fetch(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
	return b.Client.WorkOrderRows(ctx, jobKey)
}

func (b WorkOrderBackend) Submit(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error) {
	return b.Client.CreateWorkOrder(ctx, backend.CreateWorkOrderRequest{
		JobCardNo:      card.JobCardNo,
		PlateNumber:    card.PlateNumber,
		CustomerName:   card.CustomerName,
		RepairCategory: card.RepairCategory,
		WorkDetails:    rows,
	})
}

func (b WorkOrderBackend) Update(ctx context.Context, id int64, row models.WorkItemRow) error {
	return b.Client.UpdateWorkDetail(ctx, id, row)
}

func (b WorkOrderBackend) Delete(ctx context.Context, id int64) error {
	return b.Client.DeleteWorkDetail(ctx, id)
}

func (b WorkOrderBackend) PushStatus(ctx context.Context, repairID int64, status string) error {
	return b.Client.PushRepairStatus(ctx, repairID, status)
}

// SpareBackend adapts the spare-request endpoints. Spare rows never carry a
// parent status push.
type SpareBackend struct {
	Client *backend.Client
}

func (b SpareBackend) Precheck(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
	return b.Client.SpareRows(ctx, jobKey)
}

func (b SpareBackend) Fetch(ctx context.Context, jobKey string) ([]models.WorkItemRow, error) {
	return b.Client.SpareRows(ctx, jobKey)
}

func (b SpareBackend) Submit(ctx context.Context, card models.JobCard, rows []models.WorkItemRow) ([]models.WorkItemRow, error) {
	return b.Client.CreateSpares(ctx, backend.CreateSpareRequest{
		JobCardNo:    card.JobCardNo,
		PlateNumber:  card.PlateNumber,
		CustomerName: card.CustomerName,
		SpareDetails: rows,
	})
}

func (b SpareBackend) Update(ctx context.Context, id int64, row models.WorkItemRow) error {
	return b.Client.UpdateSpareDetail(ctx, id, row)
}

func (b SpareBackend) Delete(ctx context.Context, id int64) error {
	return b.Client.DeleteSpareDetail(ctx, id)
}

func (b SpareBackend) PushStatus(ctx context.Context, repairID int64, status string) error {
	// Spare screens do not derive a parent status.
	return nil
}
