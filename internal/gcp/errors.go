package gcp

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type grpcStatusError interface {
	GRPCStatus() *status.Status
}

// IsPermissionDenied reports whether an error from Firestore (gRPC) or
// Cloud Storage (HTTP) is a permission failure, unwrapping any context the
// callers added. The service maps these to a fixed user-facing message
// instead of passing the raw error through.
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	var serr grpcStatusError
	if errors.As(err, &serr) && serr.GRPCStatus().Code() == codes.PermissionDenied {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusForbidden {
		return true
	}
	return false
}
