// Package classify reduces the facts gathered about one branch into a single
// compliance verdict. Rules are evaluated in strict priority order; the first
// matching rule supplies the reason.
package classify
