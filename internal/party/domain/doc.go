// Package domain holds the party aggregate and the pure rules that govern
// it: roster membership, capacity and waiting-list behavior, and the
// recruiting/active/closed lifecycle. Functions here take a Party value and
// return a new one; persistence and display side effects live in the app
// layer.
package domain
