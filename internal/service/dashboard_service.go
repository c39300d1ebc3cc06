package service

import (
	"context"

	"techstore/internal/entity"
	"techstore/internal/repository"
)

const revenueMonths = 12

// DashboardStats is the read-only aggregate view behind the admin
// dashboard. Revenue counts paid, non-cancelled orders only.
type DashboardStats struct {
	TotalOrders    int64                          `json:"total_orders"`
	OrdersByStatus map[entity.OrderStatus]int64   `json:"orders_by_status"`
	TotalCustomers int64                          `json:"total_customers"`
	TotalProducts  int64                          `json:"total_products"`
	Revenue        float64                        `json:"revenue"`
	MonthlyRevenue []repository.MonthlyRevenue    `json:"monthly_revenue"`
}

type DashboardService struct {
	orders   OrderRepository
	users    UserRepository
	products ProductRepository
}

func NewDashboardService(orders OrderRepository, users UserRepository, products ProductRepository) *DashboardService {
	return &DashboardService{
		orders:   orders,
		users:    users,
		products: products,
	}
}

func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	byStatus, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var totalOrders int64
	for _, count := range byStatus {
		totalOrders += count
	}

	customers, err := s.users.CountByRole(ctx, entity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.Revenue(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := s.orders.MonthlyRevenue(ctx, revenueMonths)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		TotalOrders:    totalOrders,
		OrdersByStatus: byStatus,
		TotalCustomers: customers,
		TotalProducts:  products,
		Revenue:        revenue,
		MonthlyRevenue: monthly,
	}, nil
}
