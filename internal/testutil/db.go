// Package testutil provides the shared Mongo harness and request helpers
// for package tests.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/klicktools/klicktools/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dbPrefix = "klicktools_test_"

var shared struct {
	once   sync.Once
	client *mongo.Client
	err    error
}

func testURI() string {
	if uri := os.Getenv("KLICKTOOLS_TEST_MONGO_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// sharedClient connects once per test binary. A single pooled client keeps
// parallel package tests from exhausting server connections.
func sharedClient() (*mongo.Client, error) {
	shared.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		opts := options.Client().
			ApplyURI(testURI()).
			SetMaxPoolSize(200).
			SetMinPoolSize(10).
			SetMaxConnIdleTime(30 * time.Second).
			SetConnectTimeout(10 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		shared.client, shared.err = mongo.Connect(ctx, opts)
		if shared.err != nil {
			return
		}
		shared.err = shared.client.Ping(ctx, nil)
	})
	return shared.client, shared.err
}

// Client returns the shared Mongo client. Tests that drive transactions
// must use the same client as the sessions they open.
func Client(t *testing.T) *mongo.Client {
	t.Helper()
	c, err := sharedClient()
	if err != nil {
		t.Fatalf("failed to connect to test MongoDB: %v", err)
	}
	return c
}

// SetupTestDB returns a fresh database named after the test, with the
// production indexes in place. The database is dropped again in cleanup.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := sharedClient()
	if err != nil {
		t.Fatalf("failed to connect to test MongoDB: %v", err)
	}
	db := client.Database(dbPrefix + dbNameSuffix(t.Name()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Drop(ctx); err != nil {
		t.Fatalf("failed to drop test database: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("failed to create indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop test database on cleanup: %v", err)
		}
	})

	return db
}

// dbNameSuffix maps a test name onto the character set and 63-byte limit
// Mongo allows for database names.
func dbNameSuffix(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	if max := 63 - len(dbPrefix); len(out) > max {
		out = out[:max]
	}
	return string(out)
}

// TestContext returns a context generous enough for any single test step.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
