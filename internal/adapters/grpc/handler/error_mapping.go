package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/equipment"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errorDomain は ErrorInfo に載せるエラードメインです。
const errorDomain = "workforce.lifecycle"

// ToStatusError はユースケースのエラーを gRPC ステータスに変換します。
// ビジネスルール違反にはルール名を ErrorInfo.Reason として添付します。
func ToStatusError(err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		return st.Err()
	}

	var code codes.Code
	switch {
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, employee.ErrEmailAlreadyExists),
		errors.Is(err, equipment.ErrSerialNumberExists):
		code = codes.AlreadyExists
	case errors.Is(err, shared.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, shared.ErrConflict):
		code = codes.Aborted
	case shared.IsInvariant(err):
		code = codes.InvalidArgument
	case shared.IsRuleConflict(err):
		code = codes.FailedPrecondition
	default:
		return status.Error(codes.Internal, err.Error())
	}

	st := status.New(code, err.Error())
	if rule := shared.RuleOf(err); rule != "" {
		if detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{Reason: rule, Domain: errorDomain}); detailErr == nil {
			st = detailed
		}
	}
	return st.Err()
}

// UnaryErrorInterceptor はハンドラが返したエラーを ToStatusError で変換します。
func UnaryErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, ToStatusError(err)
		}
		return resp, nil
	}
}
