// Package repository contains the MySQL data access layer. This file
// defines sentinel errors shared across repositories so higher layers
// can branch on failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Repos
// translate sql.ErrNoRows into this so callers never depend on
// database/sql directly.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by user creation when the normalized
// email address is already registered.
var ErrEmailExists = errors.New("email already exists")

// ErrInsufficientStock is returned by the conditional stock decrement
// when the size row exists but holds fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrSizeNotFound is returned when a (product, size) pair has no
// stock row at all.
var ErrSizeNotFound = errors.New("size not found")

// ErrConflict is returned when a conditional update touched zero rows
// because another request changed the row first, e.g. two admins
// updating an order's status at the same moment.
var ErrConflict = errors.New("conflict")
