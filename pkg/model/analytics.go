package model

import "time"

// JobFact is the slice of a print job that analytics aggregates over.
type JobFact struct {
	CustomerID string    `json:"customer_id" bson:"customer_id"`
	TotalCost  float64   `json:"total_cost" bson:"total_cost"`
	ColorType  string    `json:"color_type,omitempty" bson:"color_type,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type DailyPerformance struct {
	Date    string  `json:"date"`
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
	Jobs    int     `json:"jobs"`
}

type ServiceBreakdown struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Revenue    float64 `json:"revenue"`
	Percentage int     `json:"percentage"`
}

type AnalyticsSummary struct {
	Days              int                `json:"days"`
	From              time.Time          `json:"from"`
	To                time.Time          `json:"to"`
	Revenue           float64            `json:"total_revenue"`
	RevenueChange     float64            `json:"revenue_change"`
	Jobs              int                `json:"total_jobs"`
	JobsChange        float64            `json:"jobs_change"`
	AvgJobValue       float64            `json:"avg_job_value"`
	AvgJobValueChange float64            `json:"avg_job_value_change"`
	UniqueCustomers   int                `json:"unique_customers"`
	CustomersChange   float64            `json:"customers_change"`
	Daily             []DailyPerformance `json:"daily_performance"`
	TopServices       []ServiceBreakdown `json:"top_services"`
}

type CustomerStats struct {
	UserID        string    `json:"user_id" bson:"_id"`
	FullName      string    `json:"full_name" bson:"full_name"`
	Phone         string    `json:"phone,omitempty" bson:"phone,omitempty"`
	TotalOrders   int       `json:"total_orders" bson:"total_orders"`
	TotalSpent    float64   `json:"total_spent" bson:"total_spent"`
	LastOrderDate time.Time `json:"last_order_date" bson:"last_order_date"`
}
