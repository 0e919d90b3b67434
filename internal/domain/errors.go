package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed indicates an operation was attempted without its
	// required context (no resolved customer, no selected branch, empty
	// selection). The caller re-resolves context and retries.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrIllegalTransition indicates a requested order-status edge does not
	// exist or the acting role does not own it. The stored status is unchanged.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrConflictRetry indicates a serialization conflict on a partitioned
	// write. No partial state was committed; the operation is safe to retry.
	ErrConflictRetry = errors.New("conflict, retry")

	// ErrUpstreamUnavailable indicates the document store or a collaborator
	// did not respond. The operation must be treated as not-happened.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
