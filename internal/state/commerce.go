package state

import (
	"context"

	"github.com/R3E-Network/courseclient/internal/api"
)

var (
	orderSlot = slot[api.Order]{
		name: "orders/create",
		pick: func(st *RootState) *Request[api.Order] { return &st.Orders.Created },
	}
	myOrdersSlot = slot[[]api.Order]{
		name: "orders/mine",
		pick: func(st *RootState) *Request[[]api.Order] { return &st.Orders.Mine },
	}
	intentSlot = slot[api.PaymentIntent]{
		name: "payment/intent",
		pick: func(st *RootState) *Request[api.PaymentIntent] { return &st.Payment.Intent },
	}
	stripeSlot = slot[api.StripeConfig]{
		name: "config/stripe",
		pick: func(st *RootState) *Request[api.StripeConfig] { return &st.Config.Stripe },
	}
	policySlot = slot[api.Policy]{
		name: "config/policy",
		pick: func(st *RootState) *Request[api.Policy] { return &st.Config.Policy },
	}
)

// CreateOrder places an order.
func (s *Store) CreateOrder(ctx context.Context, o api.OrderRequest) api.Result[api.Order] {
	return run(ctx, s, orderSlot, func(ctx context.Context) api.Result[api.Order] {
		return s.backend.CreateOrder(ctx, o)
	}, nil)
}

// FetchMyOrders loads the signed-in user's orders.
func (s *Store) FetchMyOrders(ctx context.Context) api.Result[[]api.Order] {
	return run(ctx, s, myOrdersSlot, s.backend.MyOrders, nil)
}

// CreatePaymentIntent requests a payment intent for amount in currency units.
func (s *Store) CreatePaymentIntent(ctx context.Context, amount float64, currency string) api.Result[api.PaymentIntent] {
	return run(ctx, s, intentSlot, func(ctx context.Context) api.Result[api.PaymentIntent] {
		return s.backend.CreatePaymentIntent(ctx, amount, currency)
	}, nil)
}

// FetchStripeConfig loads the publishable payment key.
func (s *Store) FetchStripeConfig(ctx context.Context) api.Result[api.StripeConfig] {
	return run(ctx, s, stripeSlot, s.backend.StripeConfig, nil)
}

// FetchPolicy loads a policy document.
func (s *Store) FetchPolicy(ctx context.Context, policyType string) api.Result[api.Policy] {
	return run(ctx, s, policySlot, func(ctx context.Context) api.Result[api.Policy] {
		return s.backend.Policy(ctx, policyType)
	}, nil)
}
