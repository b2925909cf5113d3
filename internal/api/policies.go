package api

import (
	"context"
	"net/http"
)

// Policy fetches a policy document such as "privacy" or "terms".
func (g *Gateway) Policy(ctx context.Context, policyType string) Result[Policy] {
	return invoke[Policy](ctx, g, request{
		op:       "policy",
		method:   http.MethodGet,
		path:     "/policies/" + escape(policyType),
		pluck:    []string{"policy"},
		fallback: "Could not load the policy.",
	})
}

// StripeConfig fetches the publishable payment key.
func (g *Gateway) StripeConfig(ctx context.Context) Result[StripeConfig] {
	return invoke[StripeConfig](ctx, g, request{
		op:       "stripe_config",
		method:   http.MethodGet,
		path:     "/config/stripe",
		fallback: "Could not load payment settings.",
	})
}
