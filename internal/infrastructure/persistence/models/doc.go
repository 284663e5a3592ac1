// Package models holds the GORM rows behind the form aggregates and the
// outbox. Domain types carry no ORM tags; each row type converts with
// ToDomain and an XModelFromDomain constructor, and repositories only ever
// hand domain values across the package boundary.
//
// form.go maps templates with their groupings, fields and options, and
// submissions with their approvals and status history. outbox.go maps the
// transactional outbox table.
package models
