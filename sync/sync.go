// Package sync pulls each configured entity from the remote accounting
// service into the local database. A run authenticates once, then syncs
// every entity with a configured endpoint independently so one failing
// service does not block the others.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"finagosync/apiclients/finago"
	"finagosync/config"
	"finagosync/db"
)

// Syncer coordinates authentication, per-entity fetches and persistence.
type Syncer struct {
	cfg        *config.Config
	db         *db.DB
	httpClient *http.Client
	logger     *log.Logger
	slogger    *slog.Logger
}

// New creates a Syncer. The httpClient is shared by every service client;
// pass nil to use a default client with the standard timeout. The charm
// logger carries the run narrative and also backs the slog logger injected
// into the service clients.
func New(cfg *config.Config, database *db.DB, httpClient *http.Client, logger *log.Logger) *Syncer {
	return &Syncer{
		cfg:        cfg,
		db:         database,
		httpClient: httpClient,
		logger:     logger,
		slogger:    slog.New(logger),
	}
}

// EntityResult records the outcome of one entity's sync.
type EntityResult struct {
	Entity  string
	Count   int
	Skipped bool
	Err     error
}

// Report lists the per-entity outcomes of a run in a stable order.
type Report struct {
	Results []EntityResult
}

// String summarizes the report, one line per entity.
func (r *Report) String() string {
	var b strings.Builder
	for _, res := range r.Results {
		switch {
		case res.Skipped:
			fmt.Fprintf(&b, "%-12s skipped (no endpoint configured)\n", res.Entity)
		case res.Err != nil:
			fmt.Fprintf(&b, "%-12s error: %v\n", res.Entity, res.Err)
		default:
			fmt.Fprintf(&b, "%-12s %d rows\n", res.Entity, res.Count)
		}
	}
	return b.String()
}

// entityJob binds an entity name to its endpoint, service namespace and
// fetch-and-store closure.
type entityJob struct {
	name      string
	endpoint  string
	namespace string
	run       func(ctx context.Context, client *finago.Client) (int, error)
}

// login authenticates against the auth service and selects the configured
// identity, if any. It returns the session token for the service clients.
func (s *Syncer) login(ctx context.Context) (string, *finago.AuthService, error) {
	authClient := finago.NewClient(s.cfg.Auth.URL, finago.DefaultNS, s.httpClient, s.slogger)
	auth := finago.NewAuthService(authClient)

	sessionID, err := auth.Login(ctx, s.cfg.Auth.ApplicationID, s.cfg.Auth.Username, s.cfg.Auth.Password)
	if err != nil {
		return "", nil, fmt.Errorf("login failed: %w", err)
	}
	if s.cfg.Auth.IdentityID != "" {
		if err := auth.SetIdentityByID(ctx, s.cfg.Auth.IdentityID); err != nil {
			return "", nil, fmt.Errorf("could not select identity %q: %w", s.cfg.Auth.IdentityID, err)
		}
		s.logger.Info("identity selected", "identity", s.cfg.Auth.IdentityID)
	}
	return sessionID, auth, nil
}

// Identities logs in and returns the identities selectable for the
// authenticated user.
func (s *Syncer) Identities(ctx context.Context) ([]finago.Identity, error) {
	_, auth, err := s.login(ctx)
	if err != nil {
		return nil, err
	}
	return auth.GetIdentities(ctx)
}

// Run syncs every configured entity changed since the provided timestamp
// (a date gains T00:00:00). Authentication failure aborts the run; an
// entity failure is recorded and the remaining entities still sync. The
// returned error is non-nil if any configured entity failed.
func (s *Syncer) Run(ctx context.Context, since string) (*Report, error) {
	sessionID, _, err := s.login(ctx)
	if err != nil {
		return nil, err
	}
	changedAfter := finago.NormalizeChangedAfter(since)
	s.logger.Info("sync starting", "changedAfter", changedAfter)

	jobs := []entityJob{
		{
			name:      "companies",
			endpoint:  s.cfg.Endpoints.Company,
			namespace: finago.DefaultNS,
			run: func(ctx context.Context, client *finago.Client) (int, error) {
				records, err := client.GetCompanies(ctx, changedAfter)
				if err != nil {
					return 0, err
				}
				return s.db.CompaniesUpsert(ctx, records)
			},
		},
		{
			name:      "persons",
			endpoint:  s.cfg.Endpoints.Person,
			namespace: finago.DefaultNS,
			run: func(ctx context.Context, client *finago.Client) (int, error) {
				records, err := client.GetPersonsDetailed(ctx, changedAfter)
				if err != nil {
					return 0, err
				}
				return s.db.PersonsUpsert(ctx, records)
			},
		},
		{
			name:      "invoices",
			endpoint:  s.cfg.Endpoints.Invoice,
			namespace: finago.DefaultNS,
			run: func(ctx context.Context, client *finago.Client) (int, error) {
				records, err := client.GetInvoices(ctx, changedAfter)
				if err != nil {
					return 0, err
				}
				return s.db.InvoicesUpsert(ctx, records)
			},
		},
		{
			name:      "products",
			endpoint:  s.cfg.Endpoints.Product,
			namespace: finago.DefaultNS,
			run: func(ctx context.Context, client *finago.Client) (int, error) {
				records, err := client.GetProducts(ctx, changedAfter)
				if err != nil {
					return 0, err
				}
				return s.db.ProductsUpsert(ctx, records)
			},
		},
		{
			name:      "transactions",
			endpoint:  s.cfg.Endpoints.Transaction,
			namespace: finago.AccountingNS,
			run: func(ctx context.Context, client *finago.Client) (int, error) {
				records, err := client.GetTransactions(ctx, changedAfter)
				if err != nil {
					return 0, err
				}
				return s.db.TransactionsUpsert(ctx, records)
			},
		},
		{
			name:      "accounts",
			endpoint:  s.cfg.Endpoints.Account,
			namespace: finago.AccountingNS,
			run: func(ctx context.Context, client *finago.Client) (int, error) {
				// The account list service has no change filter.
				records, err := client.GetAccountList(ctx)
				if err != nil {
					return 0, err
				}
				return s.db.AccountsUpsert(ctx, records)
			},
		},
	}

	report := &Report{}
	var configured, failed int
	for _, job := range jobs {
		if job.endpoint == "" {
			s.logger.Info("skipping entity, no endpoint configured", "entity", job.name)
			report.Results = append(report.Results, EntityResult{Entity: job.name, Skipped: true})
			continue
		}

		configured++
		client := finago.NewClient(job.endpoint, job.namespace, s.httpClient, s.slogger)
		client.SetSession(sessionID)

		count, err := job.run(ctx, client)
		if err != nil {
			failed++
			s.logger.Error("entity sync failed", "entity", job.name, "err", err)
			report.Results = append(report.Results, EntityResult{Entity: job.name, Err: err})
			continue
		}
		s.logger.Info("entity synced", "entity", job.name, "rows", count)
		report.Results = append(report.Results, EntityResult{Entity: job.name, Count: count})
	}

	if failed > 0 {
		return report, fmt.Errorf("%d of %d configured entities failed to sync", failed, configured)
	}
	return report, nil
}
