package db

// schemaSQL creates the application's sync tables for SQLite. It is
// designed to be idempotent using `CREATE TABLE IF NOT EXISTS`.
const schemaSQL = "schema.sql"

// companyUpsertSQL inserts or updates a company by companyId.
const companyUpsertSQL = "company_upsert.sql"

// personUpsertSQL inserts or updates a person by personId.
const personUpsertSQL = "person_upsert.sql"

// invoiceUpsertSQL inserts or updates an invoice by invoiceId.
const invoiceUpsertSQL = "invoice_upsert.sql"

// productUpsertSQL inserts or updates a product by productId.
const productUpsertSQL = "product_upsert.sql"

// transactionUpsertSQL inserts or updates a ledger line by transactionId.
const transactionUpsertSQL = "transaction_upsert.sql"

// accountUpsertSQL inserts or updates a ledger account by accountNo.
const accountUpsertSQL = "account_upsert.sql"
