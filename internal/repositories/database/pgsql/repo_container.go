package pgsql

import (
	portsrepo "github.com/SscSPs/costshare_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:        &BaseRepository{Pool: dbPool},
		LedgerRepo:       newPgxLedgerRepository(dbPool),
		ActivityRepo:     newPgxActivityRepository(dbPool),
		RegistrationRepo: newPgxRegistrationRepository(dbPool),
		CostSharingRepo:  newPgxCostSharingRepository(dbPool),
		BillRepo:         newPgxBillRepository(dbPool),
		NoticeRepo:       newPgxNoticeRepository(dbPool),
		MessageRepo:      newPgxMessageRepository(dbPool),
	}
}
