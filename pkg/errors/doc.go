// Package errors provides structured error types for better observability
// and programmatic error handling across zbxdiff.
//
// Domain failures carry a dedicated code so callers can branch on them
// without string matching:
//
//	cs, err := comparator.Compare(current, previous)
//	if errors.CodeOf(err) == errors.ErrCodeDuplicateIdentity {
//	    // the snapshot store returned corrupt data
//	}
//
// Wrapped sentinels stay reachable through the standard library:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeDuplicateIdentity,
//	    "snapshot contains duplicate host id",
//	    ErrDuplicateIdentity,
//	    map[string]any{"host_id": "10084", "snapshot": "current"},
//	)
//	stderrors.Is(err, ErrDuplicateIdentity) // true
package errors
