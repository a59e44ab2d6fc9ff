package domain

// OrderEventType — тип события по заказу, влияющего на остатки товаров.
type OrderEventType string

const (
	OrderPlaced    OrderEventType = "placed"
	OrderProcessed OrderEventType = "processed"
	OrderDeleted   OrderEventType = "deleted"
)

// OrderEvent приходит из сервиса заказов: заказ изменил остатки перечисленных товаров.
type OrderEvent struct {
	Type       OrderEventType `json:"type"`
	OrderID    string         `json:"order_id"`
	UserID     string         `json:"user_id"`
	ProductIDs []int64        `json:"product_ids"`
}
