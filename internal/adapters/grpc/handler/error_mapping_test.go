package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/leave"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/team"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatusError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code codes.Code
		rule string
	}{
		{name: "nil", err: nil, code: codes.OK},
		{name: "invariant", err: employee.ErrInvalidTerminationType, code: codes.InvalidArgument, rule: "employee.termination_type"},
		{name: "rule conflict", err: fmt.Errorf("approve: %w", leave.ErrOverlappingLeave), code: codes.FailedPrecondition, rule: "leave.overlap"},
		{name: "duplicate", err: employee.ErrEmailAlreadyExists, code: codes.AlreadyExists, rule: "employee.email_unique"},
		{name: "not found", err: team.ErrTeamNotFound, code: codes.NotFound},
		{name: "write conflict", err: fmt.Errorf("%w: serialization failure", shared.ErrConflict), code: codes.Aborted},
		{name: "deadline", err: context.DeadlineExceeded, code: codes.DeadlineExceeded},
		{name: "status passthrough", err: status.Error(codes.Unauthenticated, "no token"), code: codes.Unauthenticated},
		{name: "unknown", err: errors.New("boom"), code: codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			st := status.Convert(ToStatusError(tc.err))
			if st.Code() != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, st.Code())
			}

			var reason string
			for _, d := range st.Details() {
				if info, ok := d.(*errdetails.ErrorInfo); ok {
					reason = info.GetReason()
				}
			}
			if reason != tc.rule {
				t.Fatalf("expected reason %q, got %q", tc.rule, reason)
			}
		})
	}
}

func TestUnaryErrorInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := UnaryErrorInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/workforce.v1.Lifecycle/GetEmployee"}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, employee.ErrEmployeeNotFound
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	resp, err := interceptor(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result %v, %v", resp, err)
	}
}
