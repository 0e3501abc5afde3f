package grpc

import (
	"context"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domainerror "github.com/0xsj/overwatch-directory/internal/domain/error"
)

func TestToGRPCError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode codes.Code
	}{
		// Nil error
		{
			name:         "nil error returns nil",
			err:          nil,
			expectedCode: codes.OK,
		},

		// NotFound errors -> codes.NotFound
		{
			name:         "ErrServiceNotFound",
			err:          domainerror.ErrServiceNotFound,
			expectedCode: codes.NotFound,
		},
		{
			name:         "ServiceNotFoundByName",
			err:          domainerror.ServiceNotFoundByName("billing"),
			expectedCode: codes.NotFound,
		},
		{
			name:         "wrapped ErrNoHandlerRegistered",
			err:          fmt.Errorf("%w: query.GetService", domainerror.ErrNoHandlerRegistered),
			expectedCode: codes.NotFound,
		},

		// Validation errors -> codes.InvalidArgument
		{
			name:         "ErrUnknownQuery",
			err:          domainerror.ErrUnknownQuery,
			expectedCode: codes.InvalidArgument,
		},
		{
			name:         "wrapped ErrQueryMalformed",
			err:          fmt.Errorf("%w: bad json", domainerror.ErrQueryMalformed),
			expectedCode: codes.InvalidArgument,
		},
		{
			name:         "ErrServiceStatusInvalid",
			err:          domainerror.ErrServiceStatusInvalid,
			expectedCode: codes.InvalidArgument,
		},

		// Infrastructure
		{
			name:         "ErrDirectoryUnavailable",
			err:          fmt.Errorf("%w: circuit breaker is open", domainerror.ErrDirectoryUnavailable),
			expectedCode: codes.Unavailable,
		},
		{
			name:         "context deadline",
			err:          context.DeadlineExceeded,
			expectedCode: codes.DeadlineExceeded,
		},
		{
			name:         "context canceled",
			err:          fmt.Errorf("lookup: %w", context.Canceled),
			expectedCode: codes.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grpcErr := toGRPCError(tt.err)

			if tt.err == nil {
				if grpcErr != nil {
					t.Errorf("toGRPCError(nil) = %v, want nil", grpcErr)
				}
				return
			}

			st, ok := status.FromError(grpcErr)
			if !ok {
				t.Fatalf("toGRPCError() did not return a gRPC status error")
			}

			if st.Code() != tt.expectedCode {
				t.Errorf("toGRPCError(%v) code = %v, want %v", tt.err, st.Code(), tt.expectedCode)
			}

			if st.Message() == "" {
				t.Error("gRPC status message should not be empty")
			}
		})
	}
}

func TestToGRPCError_PreservesMessage(t *testing.T) {
	tests := []struct {
		err             error
		expectedMessage string
	}{
		{domainerror.ErrServiceNotFound, "service not found"},
		{domainerror.ErrQueryMalformed, "query parameters are malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.expectedMessage, func(t *testing.T) {
			st, _ := status.FromError(toGRPCError(tt.err))

			if st.Message() != tt.expectedMessage {
				t.Errorf("message = %q, want %q", st.Message(), tt.expectedMessage)
			}
		})
	}
}
