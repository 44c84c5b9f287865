package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var (
	errNotParticipant = errors.New("caller is not a participant of this record")
	errNotMember      = errors.New("caller is not a member of this group")
	errNotCreator     = errors.New("only the group creator can do this")
)

// invalidArgument is shorthand for a CodeInvalidArgument error.
func invalidArgument(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// requireUser returns the authenticated caller or an unauthenticated error.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// toConnectError maps domain and storage errors onto RPC codes.
//
//	*calculator.ValidationError   -> invalid_argument (expected/actual in metadata)
//	*calculator.DataIntegrityError -> data_loss
//	storage.ErrNotFound           -> not_found
//	not a participant/member      -> permission_denied
//
// Everything else is internal.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	var ve *calculator.ValidationError
	if errors.As(err, &ve) {
		cerr := connect.NewError(connect.CodeInvalidArgument, err)
		cerr.Meta().Set(api.MetaSplitReason, string(ve.Reason))
		if ve.Reason != calculator.ReasonUnknownMethod {
			cerr.Meta().Set(api.MetaSplitExpected, ve.Expected.String())
			cerr.Meta().Set(api.MetaSplitActual, ve.Actual.String())
		}
		return cerr
	}

	if len(calculator.IntegrityErrors(err)) > 0 {
		return connect.NewError(connect.CodeDataLoss, err)
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, errNotParticipant), errors.Is(err, errNotMember), errors.Is(err, errNotCreator):
		return connect.NewError(connect.CodePermissionDenied, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
