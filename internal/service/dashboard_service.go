package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fetan/fetan_admin/internal/resource"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

const recentLimit = 5

// Lister fetches one collection.
type Lister interface {
	List(ctx context.Context, path, field string) ([]fetanapi.Record, error)
}

// DashboardStats is the summary shown on the landing page.
type DashboardStats struct {
	TotalUsers    int
	TotalOrders   int
	TotalProducts int
	TotalRevenue  float64
	RecentOrders  []fetanapi.Record
	RecentUsers   []fetanapi.Record
}

// DashboardService aggregates users, orders and products.
type DashboardService struct{}

// NewDashboardService creates a new DashboardService.
func NewDashboardService() *DashboardService {
	return &DashboardService{}
}

// Stats fetches the three collections concurrently. Any failure yields zeroed
// statistics together with the first error.
func (s *DashboardService) Stats(ctx context.Context, api Lister) (DashboardStats, error) {
	var users, orders, products []fetanapi.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = api.List(gctx, resource.Users.Path, resource.Users.ListKey)
		return err
	})
	g.Go(func() (err error) {
		orders, err = api.List(gctx, resource.Orders.Path, resource.Orders.ListKey)
		return err
	})
	g.Go(func() (err error) {
		products, err = api.List(gctx, resource.Products.Path, resource.Products.ListKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{RecentOrders: []fetanapi.Record{}, RecentUsers: []fetanapi.Record{}}, err
	}

	var revenue float64
	for _, o := range orders {
		revenue += resource.Float(o["total"])
	}

	return DashboardStats{
		TotalUsers:    len(users),
		TotalOrders:   len(orders),
		TotalProducts: len(products),
		TotalRevenue:  revenue,
		RecentOrders:  head(orders, recentLimit),
		RecentUsers:   head(users, recentLimit),
	}, nil
}

func head(records []fetanapi.Record, n int) []fetanapi.Record {
	if len(records) > n {
		return records[:n]
	}
	return records
}
