// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateSlug is returned when a post slug is already taken on the
// post's creation day.
var ErrDuplicateSlug = errors.New("a post with this slug already exists for this date")

// ErrDuplicate is returned when a unique name, email or username is taken.
var ErrDuplicate = errors.New("duplicate value")

// ErrDuplicateUsername and ErrDuplicateEmail tell which users column
// collided. Both match ErrDuplicate.
var (
	ErrDuplicateUsername = fmt.Errorf("username: %w", ErrDuplicate)
	ErrDuplicateEmail    = fmt.Errorf("email: %w", ErrDuplicate)
)

const uniqueViolation = "23505"

// uniqueConstraint returns the violated constraint name when err is a
// PostgreSQL unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// mapPostErr turns a slug-per-day violation into ErrDuplicateSlug.
func mapPostErr(err error) error {
	if name, ok := uniqueConstraint(err); ok && name == "idx_posts_slug_day" {
		return ErrDuplicateSlug
	}
	return err
}

// mapUserErr turns a users unique violation into the matching duplicate
// error. Other errors are returned unchanged.
func mapUserErr(err error) error {
	name, ok := uniqueConstraint(err)
	if !ok {
		return err
	}
	switch name {
	case "users_username_key":
		return ErrDuplicateUsername
	case "users_email_key":
		return ErrDuplicateEmail
	}
	return ErrDuplicate
}
