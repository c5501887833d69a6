// Package billing records payment events and applies the plan transition
// they imply: set the plan, reset the consumed counter, stamp the next
// billing date, append a Payment reference.
//
// Three entry points converge on that one transition: synchronous checkout
// verification against Paystack, the asynchronous signed Paystack webhook,
// and the zero-amount free-plan signup.
package billing
