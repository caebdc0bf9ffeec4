package event

import "time"

type CustomerEventPayload struct {
	CustomerID      int64     `json:"customerId"`
	RepID           int64     `json:"repId"`
	Username        string    `json:"username"`
	FullName        string    `json:"fullName"`
	AgreementStatus string    `json:"agreementStatus"`
	Amount          string    `json:"amount"`
	StartDate       string    `json:"subscriptionStartDate"`
	CreateDate      time.Time `json:"createDate"`
}

type CustomerCreatedEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}
