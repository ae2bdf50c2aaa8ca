package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/roulette/internal/auth"
	"github.com/mmynk/roulette/internal/game"
	"github.com/mmynk/roulette/internal/middleware"
	"github.com/mmynk/roulette/pkg/api"
)

// toConnectError maps engine errors to connect codes and attaches the
// engine reason so clients can recover the sentinel.
func toConnectError(err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, game.ErrInvalidWager), errors.Is(err, game.ErrInvalidArgument):
		code = connect.CodeInvalidArgument
	case errors.Is(err, game.ErrInvalidState),
		errors.Is(err, game.ErrRoundNotOpen),
		errors.Is(err, game.ErrInsufficientFunds):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, game.ErrConflict):
		code = connect.CodeAlreadyExists
	case errors.Is(err, game.ErrRoundNotFound), errors.Is(err, game.ErrNotFound):
		code = connect.CodeNotFound
	default:
		slog.Error("Unexpected engine error", "error", err)
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}

	connectErr := connect.NewError(code, err)
	connectErr.Meta().Set(api.ReasonHeader, game.Reason(err))
	return connectErr
}

// requireUser returns the authenticated user ID from the context.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}
