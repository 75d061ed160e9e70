package models

import "time"

// TicketStatus represents the status of a support ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// IsResolved reports whether a ticket in this status carries a resolved date.
func (s TicketStatus) IsResolved() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority represents the priority of a ticket
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketIssueType represents what the customer contacted support about
type TicketIssueType string

const (
	TicketIssueProduct  TicketIssueType = "Product Issue"
	TicketIssueShipping TicketIssueType = "Shipping Delay"
	TicketIssuePayment  TicketIssueType = "Payment Issue"
	TicketIssueReturn   TicketIssueType = "Return Request"
)

// SupportTicket represents a customer support ticket
type SupportTicket struct {
	TicketID     uint            `json:"ticketId" gorm:"column:ticket_id;primaryKey;autoIncrement"`
	CustomerID   uint            `json:"customerId" gorm:"column:customer_id;not null;index"`
	IssueType    TicketIssueType `json:"issueType" gorm:"column:issue_type;type:varchar(100)"`
	Priority     TicketPriority  `json:"priority" gorm:"column:priority;type:varchar(20)"`
	Status       TicketStatus    `json:"status" gorm:"column:status;type:varchar(20);not null"`
	Description  string          `json:"description" gorm:"column:description;type:text"`
	CreatedDate  time.Time       `json:"createdDate" gorm:"column:created_date;not null"`
	ResolvedDate *time.Time      `json:"resolvedDate,omitempty" gorm:"column:resolved_date"`

	// Relationships
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID;references:CustomerID"`
}

func (SupportTicket) TableName() string {
	return "customer_support_tickets"
}
