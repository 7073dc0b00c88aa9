// Package domain defines the entities, errors and events of the paper
// library service. Every user-owned entity carries the owner's id; the
// repositories scope every read and write by it.
package domain
