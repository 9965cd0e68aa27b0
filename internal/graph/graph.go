// Package graph exposes the account and timeline services as two GraphQL
// schemas: the main API and the login API.
package graph

import (
	"context"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"

	"minitwitql/internal/account"
	"minitwitql/internal/timeline"
)

// maxDepth bounds queries walking user -> messages -> user cycles.
const maxDepth = 12

// NewAPISchema parses the main API schema bound to the services.
func NewAPISchema(accounts *account.Service, messages *timeline.Service, log *zap.Logger) (*graphql.Schema, error) {
	r := &Resolver{accounts: accounts, timeline: messages}
	return graphql.ParseSchema(apiSchema, r,
		graphql.MaxDepth(maxDepth),
		graphql.Logger(panicLogger{log: orNop(log)}),
	)
}

// NewLoginSchema parses the login schema bound to accounts.
func NewLoginSchema(accounts *account.Service, log *zap.Logger) (*graphql.Schema, error) {
	r := &LoginResolver{accounts: accounts}
	return graphql.ParseSchema(loginSchema, r,
		graphql.MaxDepth(maxDepth),
		graphql.Logger(panicLogger{log: orNop(log)}),
	)
}

// panicLogger reports resolver panics through zap. graphql-go recovers the
// panic and returns an error entry to the client.
type panicLogger struct {
	log *zap.Logger
}

func (l panicLogger) LogPanic(_ context.Context, value interface{}) {
	l.log.Error("graphql: panic occurred", zap.String("panic", fmt.Sprint(value)), zap.Stack("stack"))
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
