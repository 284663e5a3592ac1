// Package form contains the Forms bounded context.
// It owns form templates (groupings, fields and options), the submissions
// users fill in against them, and the approvals that close a submission.
//
// A submission moves DRAFT -> PENDING -> APPROVED | DENIED. Only the owner
// edits a DRAFT; an admin edit of a decided submission sends it back to
// PENDING so a decision never covers data it did not see.
package form
