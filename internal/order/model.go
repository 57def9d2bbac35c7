package order

import "time"

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid Status.
var Statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Order represents a row in the orders table with its lines.
type Order struct {
	ID          int64
	UserID      int64
	UserName    *string // populated by admin listings
	UserEmail   string  // populated by admin listings
	TotalAmount int64
	Status      Status
	Items       []Item
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item is one order line. Name and UnitPrice are copied from the menu at checkout.
type Item struct {
	MenuItemID *int64
	Name       string
	Quantity   int
	UnitPrice  int64
}

// Stats is the back-office dashboard summary.
type Stats struct {
	TotalUsers     int
	TotalMenuItems int
	TotalOrders    int
	TotalRevenue   int64
	// AverageOrderValue is TotalRevenue / TotalOrders, zero when there are no orders.
	AverageOrderValue float64
	RecentActivity    []Activity
}

// Activity is a recent order shown on the dashboard.
type Activity struct {
	OrderID   int64
	UserName  string
	Status    Status
	Amount    int64
	CreatedAt time.Time
}
