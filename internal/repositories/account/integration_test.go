package account_test

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/fern/internal/repositories/account"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "fern"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

// assertNotFound asserts that err is an HTTP 404 error
func assertNotFound(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, httperror.IsHTTPError(err), "expected HTTP error, got: %v", err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err), "expected 404, got: %d", httperror.GetStatusCode(err))
}

func TestIntegrationAccountRepository_ChildLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := account.NewRepository(db, logger)
	ctx := context.Background()

	dob := time.Date(2015, 3, 9, 0, 0, 0, 0, time.UTC)
	fullName := "Leo NGUYEN " + uuid.New().String()

	created, err := repo.Create(ctx, &models.Account{
		Kind:      models.AccountKindPlaceholder,
		FirstName: "Leo",
		LastName:  "NGUYEN",
		FullName:  fullName,
		Locale:    "fra",
		DOB:       &dob,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := repo.GetByNameAndDOB(ctx, fullName, dob)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	// Case matters: a lower-cased rendering of the same name must miss.
	_, err = repo.GetByNameAndDOB(ctx, strings.ToLower(fullName), dob)
	assertNotFound(t, err)

	otherDOB := dob.AddDate(0, 0, 1)
	_, err = repo.GetByNameAndDOB(ctx, fullName, otherDOB)
	assertNotFound(t, err)
}

func TestIntegrationAccountRepository_ContactUniqueness(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := account.NewRepository(db, logger)
	ctx := context.Background()

	email := "it-" + uuid.New().String() + "@example.com"

	first, err := repo.Create(ctx, &models.Account{
		FirstName: "Paula",
		LastName:  "DOE",
		FullName:  "Paula DOE",
		Locale:    "fra",
	})
	require.NoError(t, err)

	attached, err := repo.AttachContact(ctx, &models.ContactInformation{
		AccountID: first.ID,
		Property:  models.ContactPropertyEmail,
		Value:     email,
		IsPrimary: true,
	})
	require.NoError(t, err)
	assert.True(t, attached)

	second, err := repo.Create(ctx, &models.Account{
		FirstName: "Robin",
		LastName:  "DOE",
		FullName:  "Robin DOE",
		Locale:    "fra",
	})
	require.NoError(t, err)

	// The same value on a different account is skipped, not an error.
	attached, err = repo.AttachContact(ctx, &models.ContactInformation{
		AccountID: second.ID,
		Property:  models.ContactPropertyEmail,
		Value:     email,
	})
	require.NoError(t, err)
	assert.False(t, attached)

	found, err := repo.GetByNameAndContact(ctx, "paula doe", models.ContactPropertyEmail, email)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)

	_, err = repo.GetByNameAndContact(ctx, "Robin DOE", models.ContactPropertyEmail, email)
	assertNotFound(t, err)
}

func TestIntegrationAccountRepository_SetPasswordByEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	repo := account.NewRepository(db, logger)
	ctx := context.Background()

	email := "pw-" + uuid.New().String() + "@example.com"

	acct, err := repo.Create(ctx, &models.Account{
		FirstName: "Paula",
		LastName:  "DOE",
		FullName:  "Paula DOE",
		Locale:    "fra",
	})
	require.NoError(t, err)

	_, err = repo.AttachContact(ctx, &models.ContactInformation{
		AccountID: acct.ID,
		Property:  models.ContactPropertyEmail,
		Value:     email,
		IsPrimary: true,
	})
	require.NoError(t, err)

	updated, err := repo.SetPasswordByEmail(ctx, email, "111222333")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	// A second pass never overwrites an existing password.
	updated, err = repo.SetPasswordByEmail(ctx, email, "999888777")
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	fetched, err := repo.Get(ctx, acct.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Password)
	assert.Equal(t, "111222333", *fetched.Password)
}
