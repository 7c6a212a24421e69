package dto

// 通知类型
const (
	NotifySellerSale     = "seller_sale"
	NotifyOrderConfirmed = "order_confirmed"
)

// NotifyJob 异步通知任务，投递到 MQ 或直接异步执行
type NotifyJob struct {
	Kind       string            `json:"kind"`
	OrderID    uint64            `json:"order_id,string"`
	StoreID    string            `json:"store_id"`
	Email      string            `json:"email"`
	Name       string            `json:"name"`
	Variables  map[string]string `json:"variables"`
	RetryCount int               `json:"retry_count"`
}
