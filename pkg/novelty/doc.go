// Package novelty provides default stand-ins for the collaborators that give
// receipt entries their content: the text transformer, the coupon generator
// and the bonus policy. Register wires them into a core.Composer.
package novelty
