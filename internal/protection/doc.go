// Package protection determines whether a branch carries a status-check gate
// and which context strings that gate requires.
//
// Two mutually exclusive mechanisms are probed in order: the direct
// branch-protection record, then branch-targeting rulesets. A branch covered
// by neither is a valid terminal state, not an error.
package protection
