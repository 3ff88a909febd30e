package sync

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"finagosync/config"
	"finagosync/db"
)

const loginEnvelope = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <LoginResponse><LoginResult>test-session-token</LoginResult></LoginResponse>
  </soap:Body>
</soap:Envelope>`

const invoicesEnvelope = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetInvoicesResponse>
      <GetInvoicesResult>
        <InvoiceOrder>
          <InvoiceId>90001</InvoiceId>
          <CustomerId>1001</CustomerId>
          <InvoiceNumber>2024-0042</InvoiceNumber>
          <OrderTotalIncVat>12500</OrderTotalIncVat>
          <IsCredited>false</IsCredited>
        </InvoiceOrder>
        <InvoiceOrder>
          <InvoiceId>90002</InvoiceId>
          <CustomerId>1002</CustomerId>
          <InvoiceNumber>2024-0043</InvoiceNumber>
          <Paid>2024-02-20T00:00:00</Paid>
          <OrderTotalIncVat>5000</OrderTotalIncVat>
          <IsCredited>false</IsCredited>
        </InvoiceOrder>
        <InvoiceOrder>
          <InvoiceId>90003</InvoiceId>
          <CustomerId>1001</CustomerId>
          <InvoiceNumber>2024-0044</InvoiceNumber>
          <OrderTotalIncVat>2000</OrderTotalIncVat>
          <IsCredited>true</IsCredited>
        </InvoiceOrder>
      </GetInvoicesResult>
    </GetInvoicesResponse>
  </soap:Body>
</soap:Envelope>`

const productsEnvelope = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetProductsResponse>
      <GetProductsResult>
        <Product>
          <Id>301</Id>
          <No>K-100</No>
          <Name>Konsulenttime</Name>
          <Price>1500</Price>
        </Product>
      </GetProductsResult>
    </GetProductsResponse>
  </soap:Body>
</soap:Envelope>`

// xmlHandler serves a fixed SOAP envelope.
func xmlHandler(envelope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = w.Write([]byte(envelope))
	}
}

// setupSyncer builds a Syncer over a test SOAP server and an in-memory
// database. The returned mux serves /auth by default; entity endpoints are
// registered by the caller and wired into the config via the mutate
// callback.
func setupSyncer(t *testing.T, mutate func(*config.Config, string)) (*Syncer, *http.ServeMux, *db.DB) {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/auth", xmlHandler(loginEnvelope))

	testDB, err := db.NewConnection("file::memory:?cache=shared", os.DirFS("../db/sql"), nil)
	if err != nil {
		t.Fatalf("in-memory test database opening error: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Errorf("unexpected db close error: %v", err)
		}
	})

	cfg := &config.Config{
		DatabasePath: ":memory:",
		Auth: config.AuthConfig{
			URL:           server.URL + "/auth",
			ApplicationID: "app-id",
			Username:      "user",
			Password:      "pass",
		},
	}
	mutate(cfg, server.URL)

	syncer := New(cfg, testDB, server.Client(), log.New(io.Discard))
	return syncer, mux, testDB
}

// TestRun syncs invoices and products from a fake server, with the other
// entity types unconfigured, and checks counts, skips and persistence.
func TestRun(t *testing.T) {

	syncer, mux, testDB := setupSyncer(t, func(cfg *config.Config, serverURL string) {
		cfg.Endpoints.Invoice = serverURL + "/invoice"
		cfg.Endpoints.Product = serverURL + "/product"
	})
	mux.HandleFunc("/invoice", xmlHandler(invoicesEnvelope))
	mux.HandleFunc("/product", xmlHandler(productsEnvelope))

	report, err := syncer.Run(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatalf("Run returned an unexpected error: %v", err)
	}

	results := map[string]EntityResult{}
	for _, res := range report.Results {
		results[res.Entity] = res
	}
	if got := results["invoices"]; got.Count != 3 || got.Err != nil || got.Skipped {
		t.Errorf("invoices result got %+v want 3 rows", got)
	}
	if got := results["products"]; got.Count != 1 || got.Err != nil {
		t.Errorf("products result got %+v want 1 row", got)
	}
	for _, entity := range []string{"companies", "persons", "transactions", "accounts"} {
		if got := results[entity]; !got.Skipped {
			t.Errorf("expected %s to be skipped, got %+v", entity, got)
		}
	}

	ctx := context.Background()
	var statuses []string
	err = testDB.SelectContext(ctx, &statuses,
		"SELECT status FROM invoices_sync WHERE invoiceId IN (?, ?, ?) ORDER BY invoiceId", 90001, 90002, 90003)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.Join(statuses, ","), "Unpaid,Paid,Credited"; got != want {
		t.Errorf("derived statuses got %q want %q", got, want)
	}

	// The report should render one line per entity.
	if got := report.String(); !strings.Contains(got, "invoices") || !strings.Contains(got, "skipped") {
		t.Errorf("unexpected report rendering:\n%s", got)
	}
}

// TestRun_EntityFailureIsolation checks a failing entity service does not
// stop the others, but does fail the run.
func TestRun_EntityFailureIsolation(t *testing.T) {

	syncer, mux, testDB := setupSyncer(t, func(cfg *config.Config, serverURL string) {
		cfg.Endpoints.Invoice = serverURL + "/invoice"
		cfg.Endpoints.Transaction = serverURL + "/transaction"
	})
	mux.HandleFunc("/invoice", xmlHandler(invoicesEnvelope))
	mux.HandleFunc("/transaction", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<soap:Fault>boom</soap:Fault>"))
	})

	report, err := syncer.Run(context.Background(), "2024-01-01")
	if err == nil {
		t.Fatal("expected a run error when a configured entity fails")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("unexpected run error: %v", err)
	}

	results := map[string]EntityResult{}
	for _, res := range report.Results {
		results[res.Entity] = res
	}
	if got := results["invoices"]; got.Count != 3 || got.Err != nil {
		t.Errorf("invoices result got %+v want 3 rows", got)
	}
	if got := results["transactions"]; got.Err == nil {
		t.Errorf("expected transactions error, got %+v", got)
	}

	// The invoice rows must still have been persisted.
	var rows int
	err = testDB.GetContext(context.Background(), &rows,
		"SELECT COUNT(*) FROM invoices_sync WHERE invoiceId IN (?, ?, ?)", 90001, 90002, 90003)
	if err != nil || rows != 3 {
		t.Errorf("Expected 3 invoices despite transaction failure, got count %d, err: %v", rows, err)
	}
}

// TestRun_AuthFailure checks a login failure aborts the run before any
// entity fetch.
func TestRun_AuthFailure(t *testing.T) {

	var entityCalled bool
	syncer, mux, _ := setupSyncer(t, func(cfg *config.Config, serverURL string) {
		cfg.Auth.URL = serverURL + "/badauth"
		cfg.Endpoints.Invoice = serverURL + "/invoice"
	})
	mux.HandleFunc("/badauth", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("<soap:Fault>bad credentials</soap:Fault>"))
	})
	mux.HandleFunc("/invoice", func(w http.ResponseWriter, r *http.Request) {
		entityCalled = true
	})

	report, err := syncer.Run(context.Background(), "2024-01-01")
	if err == nil {
		t.Fatal("expected an auth error")
	}
	if !strings.Contains(err.Error(), "login failed") {
		t.Errorf("unexpected error: %v", err)
	}
	if report != nil {
		t.Errorf("expected no report on auth failure, got %+v", report)
	}
	if entityCalled {
		t.Error("entity endpoint should not be called after auth failure")
	}
}

// TestRun_IdentitySelection checks the configured identity is selected
// after login.
func TestRun_IdentitySelection(t *testing.T) {

	var identityRequested bool
	syncer, mux, _ := setupSyncer(t, func(cfg *config.Config, serverURL string) {
		cfg.Auth.IdentityID = "target-identity"
		// A dedicated path serving both Login and SetIdentityById,
		// switched on the SOAPAction header.
		cfg.Auth.URL = serverURL + "/auth2"
	})
	mux.HandleFunc("/auth2", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.Header.Get("SOAPAction"), "/SetIdentityById") {
			identityRequested = true
			w.Header().Set("Content-Type", "text/xml; charset=utf-8")
			_, _ = w.Write([]byte(`<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body><SetIdentityByIdResponse /></soap:Body></soap:Envelope>`))
			return
		}
		xmlHandler(loginEnvelope)(w, r)
	})

	if _, err := syncer.Run(context.Background(), "2024-01-01"); err != nil {
		t.Fatalf("Run returned an unexpected error: %v", err)
	}
	if !identityRequested {
		t.Error("expected SetIdentityById call after login")
	}
}
