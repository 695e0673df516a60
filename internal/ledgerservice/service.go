// Package ledgerservice manages business logic layer of the ledger.
package ledgerservice

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

const (
	// maxOpenAttempts bounds the retries of an account number taken by another process.
	maxOpenAttempts = 5

	// defaultPublishTimeout bounds the time the account locks are held for publishing.
	defaultPublishTimeout = 2 * time.Second
)

// AccountRepo provides account data access needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type AccountRepo interface {
	Create(ctx context.Context, a domain.Account) (domain.Account, error)
	Get(ctx context.Context, number string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Account, error)
	Count(ctx context.Context) (int64, error)
}

// CustomerRepo provides customer data access needed by ledger service layer.
type CustomerRepo interface {
	Save(ctx context.Context, c domain.Customer) error
	List(ctx context.Context) ([]domain.Customer, error)
}

// TransactionRepo provides transaction log access needed by ledger service layer.
type TransactionRepo interface {
	ListByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
}

// Poster applies postings to the ledger atomically.
type Poster interface {
	Post(ctx context.Context, p domain.Posting) (domain.PostingResult, error)
}

// Publisher announces committed transactions.
type Publisher interface {
	Publish(ctx context.Context, transactions []domain.Transaction) error
	Close() error
}

// Option configures the Service.
type Option func(*Service)

// WithPublisher makes the service announce every committed transaction with p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithPublishTimeout sets how long a publish may take before it is given up.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.publishTimeout = d
	}
}

// WithNow replaces the wall clock the transaction timestamps are taken from.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.clock.now = now
	}
}

// Service facilitates ledger service layer logic.
type Service struct {
	accounts     AccountRepo
	customers    CustomerRepo
	transactions TransactionRepo
	poster       Poster
	publisher    Publisher

	publishTimeout time.Duration

	openMu sync.Mutex
	locker *locker
	clock  *clock
}

// New returns ledger service struct to manage ledger business logic.
func New(ar AccountRepo, cr CustomerRepo, tr TransactionRepo, p Poster, opts ...Option) *Service {
	s := &Service{
		accounts:     ar,
		customers:    cr,
		transactions: tr,
		poster:       p,

		publishTimeout: defaultPublishTimeout,

		locker: newLocker(),
		clock:  newClock(time.Now),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// OpenAccount registers a new customer, opens an account with zero balance for them
// and returns the account number.
func (s *Service) OpenAccount(ctx context.Context, name, email, accountType string) (string, error) {
	l := zerolog.Ctx(ctx)

	if err := validateName(name); err != nil {
		l.Info().Err(err).Send()
		return "", err
	}

	if err := validateEmail(email); err != nil {
		l.Info().Err(err).Send()
		return "", err
	}

	typ, err := domain.ParseAccountType(accountType)
	if err != nil {
		l.Info().Err(err).Send()
		return "", err
	}

	s.openMu.Lock()
	defer s.openMu.Unlock()

	now := s.clock.Now()

	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}

	if err := s.customers.Save(ctx, customer); err != nil {
		return "", err
	}

	for attempt := int64(0); attempt < maxOpenAttempts; attempt++ {
		count, err := s.accounts.Count(ctx)
		if err != nil {
			return "", err
		}

		account := domain.Account{
			Number:     domain.FormatAccountNumber(count + 1 + attempt),
			Type:       typ,
			CustomerID: customer.ID,
			Balance:    decimal.Zero,
			CreatedAt:  now,
		}

		_, err = s.accounts.Create(ctx, account)
		if errors.Is(err, domain.ErrAccountNumberTaken) {
			l.Warn().Err(err).Str("account_number", account.Number).Msg("retrying account opening")
			continue
		}

		if err != nil {
			return "", err
		}

		l.Info().Str("account_number", account.Number).Str("customer_id", customer.ID).Msg("account opened")

		return account.Number, nil
	}

	return "", domain.ErrAccountNumberTaken
}

// ListAccounts returns all the accounts ordered by account number.
func (s *Service) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}

	sortByNumber(accounts)

	return accounts, nil
}

// GetAccount returns the account with the given number.
func (s *Service) GetAccount(ctx context.Context, accountNumber string) (domain.Account, error) {
	return s.accounts.Get(ctx, accountNumber)
}

// Deposit adds amount to the account balance and records a DEPOSIT transaction.
func (s *Service) Deposit(ctx context.Context, accountNumber, amount, note string) error {
	return s.post(ctx, domain.Deposit, accountNumber, amount, note)
}

// Withdraw takes amount from the account balance and records a WITHDRAW transaction.
func (s *Service) Withdraw(ctx context.Context, accountNumber, amount, note string) error {
	return s.post(ctx, domain.Withdraw, accountNumber, amount, note)
}

func (s *Service) post(ctx context.Context, typ domain.TransactionType, accountNumber, amount, note string) error {
	l := zerolog.Ctx(ctx)

	value, err := parseAmount(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return err
	}

	unlock := s.locker.Lock(accountNumber)
	defer unlock()

	account, err := s.accounts.Get(ctx, accountNumber)
	if err != nil {
		return err
	}

	if !typ.Credit() && account.Balance.LessThan(value) {
		return domain.ErrInsufficientFunds
	}

	return s.commit(ctx, s.newTransaction(typ, accountNumber, value, note))
}

// Transfer moves amount between two accounts and records a TRANSFER_OUT transaction
// on the source and a TRANSFER_IN transaction on the destination.
//
// Both accounts stay locked from the balance check until the posting is applied,
// so no observer sees the money in flight.
func (s *Service) Transfer(ctx context.Context, from, to, amount, note string) error {
	l := zerolog.Ctx(ctx)

	value, err := parseAmount(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return err
	}

	if from == to {
		l.Info().Err(domain.ErrSameAccount).Send()
		return domain.ErrSameAccount
	}

	unlock := s.locker.Lock(from, to)
	defer unlock()

	fromAccount, err := s.accounts.Get(ctx, from)
	if err != nil {
		return err
	}

	if _, err := s.accounts.Get(ctx, to); err != nil {
		return err
	}

	if fromAccount.Balance.LessThan(value) {
		return domain.ErrInsufficientFunds
	}

	return s.commit(ctx,
		s.newTransaction(domain.TransferOut, from, value, note),
		s.newTransaction(domain.TransferIn, to, value, note),
	)
}

func (s *Service) newTransaction(typ domain.TransactionType, accountNumber string, amount decimal.Decimal, note string) domain.Transaction {
	return domain.Transaction{
		ID:            ulid.Make().String(),
		Type:          typ,
		AccountNumber: accountNumber,
		Amount:        amount,
		Timestamp:     s.clock.Now(),
		Note:          note,
	}
}

func (s *Service) commit(ctx context.Context, transactions ...domain.Transaction) error {
	l := zerolog.Ctx(ctx)

	result, err := s.poster.Post(ctx, domain.Posting{Transactions: transactions})
	if err != nil {
		return err
	}

	for _, t := range result.Transactions {
		l.Info().Str("transaction_id", t.ID).Str("type", string(t.Type)).
			Str("account_number", t.AccountNumber).Stringer("amount", t.Amount).Msg("transaction posted")
	}

	s.publish(ctx, result.Transactions)

	return nil
}

// publish runs under the account locks so events leave in commit order.
func (s *Service) publish(ctx context.Context, transactions []domain.Transaction) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, transactions); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to publish transactions")
	}
}

// GetStatement returns the account's transactions ordered by timestamp.
//
// An unknown account has an empty statement.
func (s *Service) GetStatement(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	transactions, err := s.transactions.ListByAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Timestamp.Before(transactions[j].Timestamp)
	})

	return transactions, nil
}

// SearchAccountsByCustomerName returns the accounts of the customers whose name contains
// query, ignoring case, ordered by account number. An empty query matches every customer.
func (s *Service) SearchAccountsByCustomerName(ctx context.Context, query string) ([]domain.Account, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	accounts := []domain.Account{}

	for _, c := range customers {
		if !strings.Contains(strings.ToLower(c.Name), query) {
			continue
		}

		owned, err := s.accounts.ListByCustomer(ctx, c.ID)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, owned...)
	}

	sortByNumber(accounts)

	return accounts, nil
}

// Close releases the resources held by the service.
func (s *Service) Close() error {
	if s.publisher == nil {
		return nil
	}

	return s.publisher.Close()
}

func sortByNumber(accounts []domain.Account) {
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Number < accounts[j].Number
	})
}
