// Package txn runs multi-document Mongo writes in a transaction when the
// server supports one, and falls back to plain execution when it does not
// (standalone MongoDB, DocumentDB without a replica set).
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func receives either a mongo.SessionContext (transactional path) or the
// caller's context (fallback path). All database operations inside must use
// the context they are handed.
type Func func(ctx context.Context) error

// Run executes fn atomically when possible. Run the same writes in fn on
// both paths; the fallback trades atomicity for compatibility.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		if log != nil {
			log.Warn("failed to start session, running without transaction", zap.Error(err))
		}
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err == nil {
		return nil
	}
	if !IsNotSupported(err) {
		return err
	}

	if log != nil {
		log.Warn("transactions not supported, running without transaction", zap.Error(err))
	}
	return fn(ctx)
}

// IsNotSupported reports whether an error means the deployment cannot run
// multi-document transactions, rather than the transaction itself failing.
//
// Codes 20 ("Transaction numbers are only allowed on a replica set member
// or mongos"), 51 (IllegalOperation), and 263 cover the server-side cases.
// The keyword scan catches DocumentDB variants that arrive as plain errors.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	matches := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			matches++
		}
	}
	// A single keyword hit is too weak a signal; "transaction aborted"
	// alone must not trigger the fallback.
	return matches >= 2
}
