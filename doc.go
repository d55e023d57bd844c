// Package tradedesk provides the calculators behind a personal finance and
// trading dashboard. Every function in this package is a pure transformation
// of its inputs: nothing is persisted and nothing is fetched.
//
// The core functionalities include:
//   - Paycheck: gross-to-net computation with pre-tax and post-tax deductions,
//     federal brackets, state, local and payroll taxes.
//   - What-If: the marginal-rate projection of a contribution change on net
//     pay, without re-running the full tax computation.
//   - Retirement: required minimum distributions and FIRE projections.
//   - Real Estate: mortgage amortization and rental property returns.
//   - Options: covered call analysis and Black-Scholes pricing.
//   - Analytics: return statistics, moving-average backtests and walk-forward
//     analysis.
//   - Journal and Risk: trade records, journal statistics, position sizing and
//     risk rule checks.
//
// Infrastructure (storage, market data, LLM trade plans, HTTP API and CLI)
// lives in sub packages and only depends on the types defined here.
package tradedesk
