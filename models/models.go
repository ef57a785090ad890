package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RowKind identifies which screen a work item row belongs to. All kinds share
// the same lifecycle; they differ only in which payload fields are populated
// and which status set applies.
type RowKind string

const (
	KindWorkDetail   RowKind = "work_detail"
	KindSpareRequest RowKind = "spare_request"
	KindSpareChange  RowKind = "spare_change"
)

// Work detail statuses, plus the derived parent statuses pushed to the repair
// record.
const (
	StatusNotStarted = "not started"
	StatusStarted    = "started"
	StatusPending    = "pending"
	StatusCompleted  = "completed"
)

// Spare request/change statuses.
const (
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var workDetailStatuses = []string{StatusNotStarted, StatusStarted, StatusPending, StatusCompleted}
var spareStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// StatusesFor returns the allowed status set for a row kind.
func StatusesFor(kind RowKind) []string {
	if kind == KindWorkDetail {
		return workDetailStatuses
	}
	return spareStatuses
}

// WorkItemRow is the shared row shape behind the work order, spare request
// and spare change tables. IDs are assigned by the backend for confirmed rows
// and by the id reconciler for drafts; a zero or negative id means the row
// has never been assigned one.
type WorkItemRow struct {
	ID        int64  `json:"id"`
	JobCardNo string `json:"job_card_no,omitempty"`

	Description string  `json:"description,omitempty"`
	Assignee    string  `json:"assignee,omitempty"`
	TimeIn      string  `json:"time_in,omitempty"`
	TimeOut     string  `json:"time_out,omitempty"`
	PartNumber  string  `json:"part_number,omitempty"`
	Quantity    int64   `json:"quantity,omitempty"`
	UnitPrice   float64 `json:"unit_price,omitempty"`
	Remark      string  `json:"remark,omitempty"`

	Status string `json:"status,omitempty"`

	// Progress is only carried by work detail rows, 0-100. Out-of-range
	// values are a caller error and are not corrected here.
	Progress *int `json:"progress,omitempty"`
}

// HasProgress reports whether the row carries a progress value.
func (r WorkItemRow) HasProgress() bool { return r.Progress != nil }

// JobCard is the parent record a set of rows correlates to.
type JobCard struct {
	ID              int64  `json:"id"`
	JobCardNo       string `json:"job_card_no"`
	PlateNumber     string `json:"plate_number"`
	CustomerName    string `json:"customer_name"`
	RepairCategory  string `json:"repair_category"`
	Status          string `json:"status"`
	AverageProgress int    `json:"average_progress"`
}

// DraftRecord persists one job's draft rows wholesale as a JSON array,
// overwritten on every mutation and deleted on successful submit.
type DraftRecord struct {
	bun.BaseModel `bun:"table:draft_rows,alias:dr"`

	JobKey    string    `bun:"job_key,pk"`
	Kind      string    `bun:"kind,pk"`
	Rows      string    `bun:"rows,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// SparePart is the local spare parts master imported from CSV, used to fill
// the add-row part dropdown.
type SparePart struct {
	bun.BaseModel `bun:"table:spare_parts,alias:sp"`

	ID          int64     `bun:"id,pk,autoincrement"`
	PartNumber  string    `bun:"part_number,notnull,unique"`
	Name        string    `bun:"name,notnull"`
	UnitPrice   float64   `bun:"unit_price,notnull,default:0"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Setting is a key/value row for desk-local preferences such as poll
// intervals.
type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:st"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// AuditLog records desk actions against backend entities (submit, delete,
// status push).
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
