package models

import "time"

// BidStatus - статус предложения.
type BidStatus string

const (
	PendingBid  BidStatus = "pending"  // Предложение ожидает решения
	AcceptedBid BidStatus = "accepted" // Предложение выбрано заказчиком
	RejectedBid BidStatus = "rejected" // Предложение отклонено
)

// Bid представляет модель предложения исполнителя по проекту.
type Bid struct {
	ID         string    `json:"id"`
	ProjectID  string    `json:"projectId"`
	MerchantID string    `json:"merchantId"`
	Price      float64   `json:"price"`
	Days       int       `json:"days"`
	Message    string    `json:"message"`
	Status     BidStatus `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BidView - предложение с данными исполнителя и проекта, подтянутыми при чтении.
type BidView struct {
	Bid
	MerchantName  string `json:"merchantName"`
	MerchantEmail string `json:"merchantEmail"`
	ProjectTitle  string `json:"projectTitle,omitempty"`
}

// BidRequest представляет структуру запроса для создания предложения.
type BidRequest struct {
	Price   float64 `json:"price" validate:"required,gt=0"`
	Days    int     `json:"days" validate:"required,min=1,max=3650"`
	Message string  `json:"message" validate:"max=2000"`
}
