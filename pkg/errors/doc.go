// Package errors provides structured error types for better observability
// and programmatic error handling across the exporter.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeUpstream,
//	    "failed to list hypervisors",
//	    cause,
//	    map[string]interface{}{
//	        "endpoint": computeURL,
//	        "cloud": cloudName,
//	    },
//	)
package errors
