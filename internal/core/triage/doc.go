// Package triage evaluates a donor's intake answers into an eligibility
// verdict. Evaluation is pure: no I/O, no clock reads, no shared state. The
// caller supplies today's date.
package triage
