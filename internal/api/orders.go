package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// CreateOrder places an order.
func (g *Gateway) CreateOrder(ctx context.Context, o OrderRequest) Result[Order] {
	return invoke[Order](ctx, g, request{
		op:       "create_order",
		method:   http.MethodPost,
		path:     "/orders",
		body:     o,
		auth:     true,
		pluck:    []string{"order"},
		fallback: "Could not place the order.",
	})
}

// MyOrders lists the signed-in user's orders.
func (g *Gateway) MyOrders(ctx context.Context) Result[[]Order] {
	return invoke[[]Order](ctx, g, request{
		op:       "my_orders",
		method:   http.MethodGet,
		path:     "/orders/myorders",
		auth:     true,
		pluck:    []string{"orders"},
		fallback: "Could not load your orders.",
	})
}

// MinorUnits converts a decimal currency amount to integer minor units.
func MinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreatePaymentIntent asks the server for a card payment intent of amount
// (decimal currency units). The endpoint answers outside the usual envelope,
// with either a bare secret string or an object holding clientSecret; both
// are adapted here into a Result.
func (g *Gateway) CreatePaymentIntent(ctx context.Context, amount float64, currency string) Result[PaymentIntent] {
	const op = "create_payment_intent"
	const fallback = "Could not start the payment."

	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return failWith[PaymentIntent](invalidError(op, fmt.Errorf("amount must be positive"), fallback))
	}
	cents := MinorUnits(amount)
	body := map[string]any{"amount": cents}
	if c := strings.TrimSpace(currency); c != "" {
		body["currency"] = strings.ToLower(c)
	}

	res := invoke[json.RawMessage](ctx, g, request{
		op:       op,
		method:   http.MethodPost,
		path:     "/orders/create-payment-intent",
		body:     body,
		auth:     true,
		fallback: fallback,
	})
	if !res.Success {
		return Result[PaymentIntent]{Message: res.Message, err: res.err}
	}

	secret := gjson.ParseBytes(res.Data)
	if secret.IsObject() {
		secret = secret.Get("clientSecret")
		if !secret.Exists() {
			secret = gjson.GetBytes(res.Data, "client_secret")
		}
	}
	if secret.Type != gjson.String || strings.TrimSpace(secret.Str) == "" {
		return failWith[PaymentIntent](decodeError(op, http.StatusOK, fmt.Errorf("missing client secret"), fallback))
	}
	return OK(PaymentIntent{
		ClientSecret: secret.Str,
		Amount:       cents,
		Currency:     strings.ToLower(strings.TrimSpace(currency)),
	})
}
