package services

import (
	"context"
	"log"
	"time"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"

	"pointsforest/internal/datastore"
	"pointsforest/internal/models"
	"pointsforest/internal/pkg"
)

type ServiceStats struct {
	container          *do.Injector
	readonlyPostgresDB *bun.DB
}

func NewServiceStats(container *do.Injector) (*ServiceStats, error) {
	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	return &ServiceStats{container, readonlyPostgresDB}, nil
}

// GetDashboardStats serves the admin dashboard. The primary path is one
// aggregate query; when it fails the point-flow numbers are recomputed by
// folding ledger rows and the response is marked degraded.
func (service *ServiceStats) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	dayStart := pkg.StartOfDay(time.Now())

	stats, err := datastore.GetDashboardStats(ctx, service.readonlyPostgresDB, dayStart)
	if err == nil {
		return stats, nil
	}
	log.Println("GetDashboardStats primary query:", err)

	stats = &models.DashboardStats{Degraded: true}

	if n, err := datastore.CountUsers(ctx, service.readonlyPostgresDB); err == nil {
		stats.TotalUsers = int64(n)
	}
	if n, err := datastore.CountActiveUsersSince(ctx, service.readonlyPostgresDB, dayStart); err == nil {
		stats.ActiveToday = n
	}
	if n, err := datastore.CountGachaPulls(ctx, service.readonlyPostgresDB); err == nil {
		stats.TotalPulls = n
	}
	if n, err := datastore.CountGameSessions(ctx, service.readonlyPostgresDB); err == nil {
		stats.TotalSessions = n
	}

	rows, err := datastore.GetPointTransactionsSince(ctx, service.readonlyPostgresDB, time.Time{})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	flow := FoldTransactions(rows)
	stats.PointsIssued = flow.PointsIssued
	stats.PointsSpent = flow.PointsSpent

	return stats, nil
}

// FoldTransactions reduces ledger rows to issued/spent totals. Amounts are
// signed, so issued collects the positives and spent the negatives.
func FoldTransactions(rows []models.PointTransaction) models.PointFlow {
	var flow models.PointFlow
	for _, row := range rows {
		if row.Amount >= 0 {
			flow.PointsIssued += row.Amount
		} else {
			flow.PointsSpent += -row.Amount
		}
		flow.TransactionCount++
	}

	return flow
}
