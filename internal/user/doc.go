// Package user implements the credential store: the persisted user record
// holding identity, plan and quota counters, plus registration, login and
// profile management on top of it.
package user
