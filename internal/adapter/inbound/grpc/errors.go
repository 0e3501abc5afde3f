package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "github.com/0xsj/overwatch-pkg/errors"
	pkggrpc "github.com/0xsj/overwatch-pkg/grpc"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
)

// toGRPCError converts domain errors to gRPC status errors.
// Domain errors use pkg/errors with Kind, so the pkg/grpc mapping handles
// them even when wrapped with extra context.
func toGRPCError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	if errors.Is(err, domainerror.ErrDirectoryUnavailable) {
		return status.Error(codes.Unavailable, err.Error())
	}

	var domainErr *pkgerrors.Error
	if errors.As(err, &domainErr) {
		st := pkggrpc.ToStatus(domainErr)
		if err != error(domainErr) {
			return status.Error(st.Code(), err.Error())
		}
		return st.Err()
	}

	return pkggrpc.ToStatus(err).Err()
}
