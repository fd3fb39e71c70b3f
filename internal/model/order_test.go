package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderShipped, true}, // forward skips allowed
		{OrderPending, OrderDelivered, true},
		{OrderPending, OrderCancelled, true},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderShipped, OrderDelivered, true},

		{OrderPending, OrderPending, false}, // no self-transition
		{OrderProcessing, OrderPending, false},
		{OrderShipped, OrderProcessing, false},
		{OrderShipped, OrderCancelled, false}, // too late to cancel
		{OrderDelivered, OrderShipped, false},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderCancelled, OrderDelivered, false},
		{OrderPending, OrderStatus("LOST"), false},
		{OrderStatus("LOST"), OrderShipped, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled} {
		require.True(t, ValidStatus(s), string(s))
	}
	require.False(t, ValidStatus(OrderStatus("LOST")))
	require.False(t, ValidStatus(OrderStatus("")))
}

func TestCancellable(t *testing.T) {
	require.True(t, Cancellable(OrderPending))
	require.True(t, Cancellable(OrderProcessing))
	require.False(t, Cancellable(OrderShipped))
	require.False(t, Cancellable(OrderDelivered))
	require.False(t, Cancellable(OrderCancelled))
}
