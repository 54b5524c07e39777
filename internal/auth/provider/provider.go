package provider

import "persona-auth/internal/auth"

// Strategy is the contract every registered authentication strategy
// implements. Strategies report outcomes only and must not create
// sessions or persist users.
type Strategy = auth.Strategy
