package leave

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newVacationBalance(t *testing.T) *Balance {
	t.Helper()
	b, err := NewBalance(BalanceKey{EmployeeID: "EMP-2025-0001", Year: 2025, Type: TypeVacation}, DefaultPolicies().For(TypeVacation))
	require.NoError(t, err)
	return b
}

func requireBalance(t *testing.T, b *Balance, used, pending, available string) {
	t.Helper()
	require.True(t, b.Used().Equal(d(used)), "used: want %s, got %s", used, b.Used())
	require.True(t, b.Pending().Equal(d(pending)), "pending: want %s, got %s", pending, b.Pending())
	require.True(t, b.Available().Equal(d(available)), "available: want %s, got %s", available, b.Available())
	require.False(t, b.Available().IsNegative())
}

func TestBalance_RequestApproveCancelRoundTrip(t *testing.T) {
	t.Parallel()

	b := newVacationBalance(t)
	require.NoError(t, b.Accrue(d("10")))
	requireBalance(t, b, "0", "0", "10")

	require.NoError(t, b.AddToPending(d("5")))
	requireBalance(t, b, "0", "5", "5")

	require.NoError(t, b.Deduct(d("5")))
	requireBalance(t, b, "5", "0", "5")

	require.NoError(t, b.Restore(d("5")))
	requireBalance(t, b, "0", "0", "10")
}

func TestBalance_InsufficientLeavesPendingUnchanged(t *testing.T) {
	t.Parallel()

	b := newVacationBalance(t)
	require.NoError(t, b.Accrue(d("3")))
	require.NoError(t, b.AddToPending(d("2")))

	err := b.AddToPending(d("1.5"))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	requireBalance(t, b, "0", "2", "1")

	require.NoError(t, b.AddToPending(d("1")))
	requireBalance(t, b, "0", "3", "0")
}

func TestBalance_Underflows(t *testing.T) {
	t.Parallel()

	b := newVacationBalance(t)
	require.NoError(t, b.Accrue(d("4")))

	require.ErrorIs(t, b.Deduct(d("1")), ErrPendingUnderflow)
	require.ErrorIs(t, b.RemoveFromPending(d("1")), ErrPendingUnderflow)
	require.ErrorIs(t, b.Restore(d("1")), ErrUsedUnderflow)
	require.ErrorIs(t, b.Accrue(d("0")), ErrInvalidDays)
	require.ErrorIs(t, b.AddToPending(d("-1")), ErrInvalidDays)
	requireBalance(t, b, "0", "0", "4")
}

func TestBalance_Adjust(t *testing.T) {
	t.Parallel()

	b := newVacationBalance(t)
	require.NoError(t, b.Accrue(d("2")))

	require.NoError(t, b.Adjust(d("3")))
	requireBalance(t, b, "0", "0", "5")

	require.ErrorIs(t, b.Adjust(d("-4")), ErrAdjustmentUnderflow)
	require.NoError(t, b.Adjust(d("-3")))
	require.True(t, b.Adjusted().IsZero())
	require.ErrorIs(t, b.Adjust(decimal.Zero), ErrInvalidDays)
}

func TestBalance_CloseYear(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		accrued   string
		pending   string
		wantCarry string
		wantLost  string
	}{
		{name: "above cap", accrued: "12", pending: "0", wantCarry: "5", wantLost: "12"},
		{name: "below cap", accrued: "3.5", pending: "0", wantCarry: "3.5", wantLost: "3.5"},
		{name: "pending excluded", accrued: "6", pending: "4", wantCarry: "2", wantLost: "2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b := newVacationBalance(t)
			require.NoError(t, b.Accrue(d(tc.accrued)))
			if !d(tc.pending).IsZero() {
				require.NoError(t, b.AddToPending(d(tc.pending)))
			}

			carry, err := b.CloseYear()
			require.NoError(t, err)
			require.True(t, carry.Equal(d(tc.wantCarry)), "carry: want %s, got %s", tc.wantCarry, carry)
			require.True(t, b.Forfeited().Equal(d(tc.wantLost)), "forfeited: want %s, got %s", tc.wantLost, b.Forfeited())
			require.True(t, b.Available().IsZero())
		})
	}

	empty := newVacationBalance(t)
	carry, err := empty.CloseYear()
	require.NoError(t, err)
	require.True(t, carry.IsZero())
}

func TestBalance_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	b := newVacationBalance(t)
	require.NoError(t, b.Accrue(d("8")))
	require.NoError(t, b.AddToPending(d("2")))
	require.NoError(t, b.CarryOver(d("1")))

	restored := ReconstituteBalance(b.Snapshot())
	require.Equal(t, b.Key(), restored.Key())
	require.True(t, restored.Available().Equal(d("7")))
	require.True(t, restored.MaxCarryOver().Equal(d("5")))
}

func TestPolicies(t *testing.T) {
	t.Parallel()

	policies := DefaultPolicies()
	accruing := policies.Accruing()
	require.Len(t, accruing, 3)
	require.Equal(t, TypeVacation, accruing[0].Type)
	require.True(t, policies.For(TypePersonal).AccrualRate.Equal(d("0.5")))
	require.False(t, policies.For(TypeUnpaid).Accrues())

	_, err := NewBalance(BalanceKey{EmployeeID: "bad", Year: 2025, Type: TypeVacation}, policies.For(TypeVacation))
	require.ErrorIs(t, err, ErrInvalidEmployeeID)

	days, err := ParseDays(" 2.5 ")
	require.NoError(t, err)
	require.True(t, days.Equal(d("2.5")))
	_, err = ParseDays("two")
	require.ErrorIs(t, err, ErrInvalidDays)

	days, err = ParseDays("2.25")
	require.NoError(t, err)
	require.Equal(t, "2.25", days.String())
	days, err = ParseDays("1.500")
	require.NoError(t, err)
	require.True(t, days.Equal(d("1.5")))
	_, err = ParseDays("2.255")
	require.ErrorIs(t, err, ErrInvalidDays)
}
