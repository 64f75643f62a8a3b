package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kendall-kelly/ecotainment-api/config"
	"github.com/kendall-kelly/ecotainment-api/models"
	"github.com/kendall-kelly/ecotainment-api/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestJWTSecret   = "test-secret-key-for-signing-tokens"
	TestJWTIssuer   = "ecotainment-api-test"
	TestJWTAudience = "ecotainment-test-clients"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV to test unless another environment was chosen explicitly
func MustSetTestEnvironment() error {
	if env := os.Getenv("GO_ENV"); env != "" && env != "test" {
		return fmt.Errorf("refusing to run tests with GO_ENV=%q", env)
	}
	return os.Setenv("GO_ENV", "test")
}

// TestConfig returns a configuration suitable for tests
func TestConfig() *config.Config {
	return &config.Config{
		DatabaseURL: "sqlite://memory",
		Port:        "8080",
		GoEnv:       "test",
		LogLevel:    "error",
		JWTSecret:   TestJWTSecret,
		JWTIssuer:   TestJWTIssuer,
		JWTAudience: TestJWTAudience,
		JWTTTL:      time.Hour,
		UploadDir:   os.TempDir(),
		KafkaTopic:  "transaction-events",
	}
}

// NewTestDB opens a private in-memory SQLite database with every table migrated
// and installs it as the process-wide DB. A single connection keeps every query
// on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.AutoMigrate(db))
	config.SetDB(db)
	utils.RegisterJSONFieldNames()

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

var seq atomic.Int64

func next() int64 {
	return seq.Add(1)
}

// CreateUser inserts a user with the given role and password "password123"
func CreateUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	n := next()
	email := fmt.Sprintf("user%d@example.com", n)
	user := &models.User{
		Email:    &email,
		Username: fmt.Sprintf("user%d", n),
		Password: hash,
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProduct inserts a product with the given price and starting sales
func CreateProduct(t *testing.T, db *gorm.DB, name string, price, totalSales int64) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:       name,
		Price:      price,
		Category:   "general",
		TotalSales: totalSales,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// CreateTransaction inserts a transaction with one item per product id
func CreateTransaction(t *testing.T, db *gorm.DB, userID uint, status models.TransactionStatus, items map[uint]int) *models.Transaction {
	t.Helper()

	txn := &models.Transaction{
		UserID:      userID,
		TotalAmount: 1000,
		Status:      status,
	}
	for productID, qty := range items {
		txn.Items = append(txn.Items, models.TransactionItem{ProductID: productID, Quantity: qty})
	}
	require.NoError(t, db.Create(txn).Error)
	return txn
}

// PrintEnvironmentInfo prints the current test environment configuration.
// Useful for debugging test environment issues.
func PrintEnvironmentInfo() {
	fmt.Printf("Test Environment Info:\n")
	fmt.Printf("  GO_ENV: %s\n", os.Getenv("GO_ENV"))
	fmt.Printf("  DATABASE_URL: %s\n", maskDatabaseURL(os.Getenv("DATABASE_URL")))
}

// maskDatabaseURL hides credentials in a database URL
func maskDatabaseURL(url string) string {
	if url == "" {
		return "(not set)"
	}
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "(invalid)"
	}
	if _, host, ok := strings.Cut(rest, "@"); ok {
		return scheme + "://***@" + host
	}
	return url
}
