// Package policy implements the allocator selection rule table.
//
// ARCHITECTURE:
//
// Decide is a pure, total, deterministic function from (Profile, Snapshot)
// to exactly one Decision. Rules are evaluated in declaration order and the
// first match wins; the final desktop rule always matches, so "no allocator
// could be chosen" is not a representable state.
//
// CRITICAL PATTERNS:
//
// Deterministic evaluation:
// The rule slice order NEVER changes after construction. Same inputs yield
// byte-identical reasons - golden tests depend on this.
//
// Build-time short-circuit:
// Only the last rule consults hardware. Every other outcome is fixed by the
// build profile alone, and its reason says "hardware not consulted".
//
// The mobile rule is configurable (Config.MobileRule) because platform
// guidance is genuinely split between "respect the hardened native
// allocator" and "plain system fallback". The table carries both readings
// rather than hard-coding one.
package policy
