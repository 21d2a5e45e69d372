package services

import (
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/costshare_ledger/internal/core/ports/services"
	"github.com/SscSPs/costshare_ledger/internal/platform/config"
	"github.com/SscSPs/costshare_ledger/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, dispatcher portssvc.BillDispatcher, m *metrics.Metrics) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The ledger is shared: registration payments move money through it inside their own transactions
	ledger := NewLedgerService(
		repos.TxManager,
		repos.LedgerRepo,
		WithLedgerMetrics(m),
		WithStatisticsWindow(cfg.StatisticsWindowDays),
	)
	container.Ledger = ledger

	container.Activity = NewActivityService(
		repos.TxManager,
		repos.ActivityRepo,
		repos.RegistrationRepo,
		repos.CostSharingRepo,
	)
	container.Registration = NewRegistrationService(repos, ledger, WithRegistrationMetrics(m))
	container.Bill = NewBillService(repos, dispatcher, WithBillMetrics(m))

	return container
}
