// Package retry provides attempt-counted retry and polling loops.
//
// A [Policy] bounds an operation by a number of attempts rather than by a
// wall-clock deadline: a budget of 360 attempts with a 10s delay is roughly an
// hour, but a slow individual call extends the total. [Policy.Do] retries an
// operation until it succeeds, returns a [Fatal] error, or the budget runs
// out. [Policy.Poll] repeats a condition check until it reports done.
//
// The delay is fixed by default. Setting a multiplier above 1 turns the policy
// into exponential backoff capped at MaxDelay; the attempt budget is unchanged.
package retry
