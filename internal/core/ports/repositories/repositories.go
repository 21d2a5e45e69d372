package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager        TransactionManager
	LedgerRepo       LedgerRepositoryFacade
	ActivityRepo     ActivityRepositoryFacade
	RegistrationRepo RegistrationRepositoryFacade
	CostSharingRepo  CostSharingRepository
	BillRepo         BillRepositoryFacade
	NoticeRepo       NoticeRepository
	MessageRepo      MessageRepository
}
