// Package selection implements the multi-armed-bandit template selector for
// governance synthesis. Each registered template is an arm whose success
// probability is modeled by a Beta posterior; selection strategies balance
// exploiting templates known to perform well against exploring under-sampled
// ones.
//
// The selector owns all arm statistics. Outcomes enter exclusively through
// RecordOutcome, and strategies only ever see the arms that survived the
// per-request eligibility filter, so a selected template can never fall
// outside the caller's requested category.
package selection
