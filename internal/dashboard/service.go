package dashboard

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kidoralabs/kidora-backend/internal/orders"
	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/enums"
	"github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
)

const recentOrderLimit = 10

// StatsDTO is the admin dashboard summary.
type StatsDTO struct {
	TotalUsers       int64                       `json:"totalUsers"`
	TotalProducts    int64                       `json:"totalProducts"`
	LowStockProducts int64                       `json:"lowStockProducts"`
	TotalOrders      int64                       `json:"totalOrders"`
	OrdersByStatus   map[enums.OrderStatus]int64 `json:"ordersByStatus"`
	PaidRevenue      decimal.Decimal             `json:"paidRevenue"`
	PendingReturns   int64                       `json:"pendingReturns"`
	RecentOrders     []orders.OrderDTO           `json:"recentOrders"`
}

// Service exposes the admin dashboard.
type Service interface {
	Stats(ctx context.Context) (*StatsDTO, error)
}

// ServiceParams carries the dependencies for NewService.
type ServiceParams struct {
	DB     *db.Client
	Repo   Repository
	Logger *logger.Logger
}

type service struct {
	db     *db.Client
	repo   Repository
	logger *logger.Logger
}

// NewService builds the dashboard service.
func NewService(params ServiceParams) Service {
	return &service{
		db:     params.DB,
		repo:   params.Repo,
		logger: params.Logger,
	}
}

func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	stats := &StatsDTO{}

	var err error
	if stats.TotalUsers, err = s.repo.CountUsers(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count users")
	}
	if stats.TotalProducts, err = s.repo.CountProducts(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count products")
	}
	if stats.LowStockProducts, err = s.repo.CountLowStockProducts(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count low stock products")
	}
	if stats.OrdersByStatus, err = s.repo.CountOrdersByStatus(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count orders")
	}
	for _, count := range stats.OrdersByStatus {
		stats.TotalOrders += count
	}
	if stats.PaidRevenue, err = s.repo.PaidRevenue(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to sum revenue")
	}
	if stats.PendingReturns, err = s.repo.CountPendingReturns(ctx); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to count returns")
	}

	recent, err := s.repo.RecentOrders(ctx, recentOrderLimit)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "failed to load recent orders")
	}
	stats.RecentOrders = make([]orders.OrderDTO, 0, len(recent))
	for i := range recent {
		stats.RecentOrders = append(stats.RecentOrders, orders.ToOrderDTO(&recent[i]))
	}
	return stats, nil
}
