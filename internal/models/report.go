package models

import (
	"time"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// IsTerminal reports whether no further transition is allowed.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusResolved || s == ReportStatusDismissed
}

type ReportReason string

const (
	ReportReasonSpam       ReportReason = "spam"
	ReportReasonAbuse      ReportReason = "abuse"
	ReportReasonHarassment ReportReason = "harassment"
	ReportReasonOffTopic   ReportReason = "off_topic"
	ReportReasonOther      ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonAbuse, ReportReasonHarassment, ReportReasonOffTopic, ReportReasonOther:
		return true
	}
	return false
}

type Report struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	CommentID   uint         `gorm:"not null;index" json:"comment_id"`
	Comment     *Comment     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comment,omitempty"`
	ReporterID  uint         `gorm:"not null;index" json:"reporter_id"`
	Reason      ReportReason `gorm:"size:20;not null" json:"reason"`
	Description string       `gorm:"size:500" json:"description"`
	Status      ReportStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ResolvedBy  *uint        `json:"resolved_by"`
	ResolvedAt  *time.Time   `json:"resolved_at"`
	CreatedAt   time.Time    `gorm:"index" json:"created_at"`
}
