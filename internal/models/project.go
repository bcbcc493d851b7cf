package models

import "time"

type (
	ProjectStatus  string // Статус проекта
	DeliveryStatus string // Статус сдачи работ
)

const (
	DraftProject      ProjectStatus = "Draft"      // Проект создан заказчиком
	PublishedProject  ProjectStatus = "Published"  // Проект опубликован
	InBiddingProject  ProjectStatus = "InBidding"  // По проекту поступают предложения
	InProgressProject ProjectStatus = "InProgress" // Предложение выбрано, идёт исполнение
	CompletedProject  ProjectStatus = "Completed"  // Работы приняты
	CancelledProject  ProjectStatus = "Cancelled"  // Проект отменён

	NotDelivered     DeliveryStatus = ""          // Работы ещё не сданы
	DeliveredProject DeliveryStatus = "Delivered" // Исполнитель сдал работы
	AcceptedDelivery DeliveryStatus = "Accepted"  // Заказчик принял работы
	RejectedDelivery DeliveryStatus = "Rejected"  // Заказчик вернул работы на доработку
)

// MaxExecutionDays - верхняя граница срока исполнения в днях (десять лет).
const MaxExecutionDays = 3650

// BiddableStatuses - статусы, в которых проект принимает предложения и может быть присуждён.
var BiddableStatuses = []ProjectStatus{PublishedProject, InBiddingProject}

// IsBiddable сообщает, открыт ли проект для предложений.
func (s ProjectStatus) IsBiddable() bool {
	return s == PublishedProject || s == InBiddingProject
}

// IsTerminal сообщает, что из статуса больше нет переходов.
func (s ProjectStatus) IsTerminal() bool {
	return s == CompletedProject || s == CancelledProject
}

// Valid проверяет, что статус входит в закрытый набор.
func (s ProjectStatus) Valid() bool {
	switch s {
	case DraftProject, PublishedProject, InBiddingProject, InProgressProject, CompletedProject, CancelledProject:
		return true
	default:
		return false
	}
}

// ProjectItem - позиция спецификации проекта.
type ProjectItem struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit,omitempty" validate:"max=32"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// Project представляет модель проекта заказчика.
type Project struct {
	ID                      string         `json:"id"`
	CustomerID              string         `json:"customerId"`
	Title                   string         `json:"title"`
	Description             string         `json:"description"`
	PType                   string         `json:"ptype"`
	Material                string         `json:"material"`
	Width                   float64        `json:"width"`
	Height                  float64        `json:"height"`
	Quantity                int            `json:"quantity"`
	PricePerMeter           float64        `json:"pricePerMeter"`
	Total                   float64        `json:"total"`
	Days                    *int           `json:"days"`
	Items                   []ProjectItem  `json:"items"`
	Status                  ProjectStatus  `json:"status"`
	AssignedMerchantID      *string        `json:"assignedMerchantId"`
	AwardedBidID            *string        `json:"awardedBidId"`
	ExecutionStartedAt      *time.Time     `json:"executionStartedAt"`
	ExecutionDueAt          *time.Time     `json:"executionDueAt"`
	DeliveryStatus          DeliveryStatus `json:"deliveryStatus"`
	DeliveryNote            string         `json:"deliveryNote,omitempty"`
	DeliveredAt             *time.Time     `json:"deliveredAt,omitempty"`
	DeliveryRejectionReason string         `json:"deliveryRejectionReason,omitempty"`
	CompletedAt             *time.Time     `json:"completedAt,omitempty"`
	MerchantRating          *int           `json:"merchantRating,omitempty"`
	RatingComment           string         `json:"ratingComment,omitempty"`
	CreatedAt               time.Time      `json:"createdAt"`
	UpdatedAt               time.Time      `json:"updatedAt"`
}

// ProjectView - проект с именами заказчика и исполнителя, подтянутыми при чтении.
type ProjectView struct {
	Project
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	MerchantName  string `json:"merchantName,omitempty"`
	MerchantEmail string `json:"merchantEmail,omitempty"`
}

// ProjectRequest представляет структуру запроса для создания проекта.
type ProjectRequest struct {
	Title         string        `json:"title" validate:"required,max=200"`
	Description   string        `json:"description" validate:"max=5000"`
	PType         string        `json:"ptype" validate:"max=100"`
	Material      string        `json:"material" validate:"max=100"`
	Width         float64       `json:"width" validate:"gte=0"`
	Height        float64       `json:"height" validate:"gte=0"`
	Quantity      int           `json:"quantity" validate:"gte=0"`
	PricePerMeter float64       `json:"pricePerMeter" validate:"gte=0"`
	Total         float64       `json:"total" validate:"gte=0"`
	Days          *int          `json:"days" validate:"omitempty,gte=0,max=3650"`
	Items         []ProjectItem `json:"items" validate:"omitempty,dive"`
}

// ProjectUpdate - частичное обновление проекта, nil означает "не менять".
type ProjectUpdate struct {
	Title         *string        `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string        `json:"description" validate:"omitempty,max=5000"`
	PType         *string        `json:"ptype" validate:"omitempty,max=100"`
	Material      *string        `json:"material" validate:"omitempty,max=100"`
	Width         *float64       `json:"width" validate:"omitempty,gte=0"`
	Height        *float64       `json:"height" validate:"omitempty,gte=0"`
	Quantity      *int           `json:"quantity" validate:"omitempty,gte=0"`
	PricePerMeter *float64       `json:"pricePerMeter" validate:"omitempty,gte=0"`
	Total         *float64       `json:"total" validate:"omitempty,gte=0"`
	Days          *int           `json:"days" validate:"omitempty,gte=0,max=3650"`
	Items         *[]ProjectItem `json:"items" validate:"omitempty,dive"`
}

// IsEmpty сообщает, что в запросе нет ни одного поля.
func (u ProjectUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.PType == nil && u.Material == nil &&
		u.Width == nil && u.Height == nil && u.Quantity == nil && u.PricePerMeter == nil &&
		u.Total == nil && u.Days == nil && u.Items == nil
}

// ProjectFilter - параметры поиска и пагинации проектов.
type ProjectFilter struct {
	Page          int
	PageSize      int
	Query         string
	SortBy        string
	SortDirection string
	Status        ProjectStatus
}

// ProjectPage - страница результатов поиска.
type ProjectPage struct {
	Items      []ProjectView `json:"items"`
	TotalCount int64         `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
}

// Award - данные, которые транзакция присуждения записывает в проект и предложения.
type Award struct {
	ProjectID  string
	BidID      string
	MerchantID string
	StartedAt  time.Time
	DueAt      *time.Time
}

// AwardResult - результат присуждения проекта.
type AwardResult struct {
	Project *ProjectView `json:"project"`
	Bid     *BidView     `json:"bid"`
}

// DeliveryRequest - запрос исполнителя на сдачу работ.
type DeliveryRequest struct {
	Note string `json:"note" validate:"max=2000"`
}

// DeliveryRejection - причина, по которой заказчик вернул работы.
type DeliveryRejection struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// RatingRequest - оценка исполнителя после приёмки.
type RatingRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}
