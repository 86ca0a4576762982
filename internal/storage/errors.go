package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
)

// IsNoSuchKey reports whether a MinIO/S3 error means the object does not exist.
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		code := strings.ToLower(strings.TrimSpace(resp.Code))
		return code == "nosuchkey" || code == "notfound"
	}
	// 网关可能只留下错误文本
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nosuchkey") || strings.Contains(msg, "specified key does not exist")
}

// objectError maps a MinIO failure for name onto the Store contract: missing objects
// become ErrNotFound, everything else is wrapped with the operation.
func objectError(op, name string, err error) error {
	if IsNoSuchKey(err) {
		return ErrNotFound
	}
	return fmt.Errorf("%s object %q: %w", op, name, err)
}
