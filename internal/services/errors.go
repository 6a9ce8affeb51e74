package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/Mathew1327/Construction-tracker/pkg/errors"
)

var (
	// ErrRoleNotFound indicates the requested role does not exist.
	ErrRoleNotFound = apperrors.New("ROLE_NOT_FOUND", "Role not found", http.StatusNotFound)
	// ErrPermissionNotFound indicates no permission carries the requested name.
	ErrPermissionNotFound = apperrors.New("PERMISSION_NOT_FOUND", "Permission not found", http.StatusNotFound)
	// ErrSystemRoleImmutable prevents renaming or deactivating seeded roles.
	ErrSystemRoleImmutable = apperrors.New("ROLE_IMMUTABLE", "System roles cannot be renamed or deactivated", http.StatusBadRequest)

	ErrUserNotFound     = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	ErrProjectNotFound  = apperrors.New("PROJECT_NOT_FOUND", "Project not found", http.StatusNotFound)
	ErrPhaseNotFound    = apperrors.New("PHASE_NOT_FOUND", "Phase not found", http.StatusNotFound)
	ErrVendorNotFound   = apperrors.New("VENDOR_NOT_FOUND", "Vendor not found", http.StatusNotFound)
	ErrDocumentNotFound = apperrors.New("DOCUMENT_NOT_FOUND", "Document not found", http.StatusNotFound)
)

// permissionNotFound names the unresolved permission while still matching
// ErrPermissionNotFound through errors.Is.
func permissionNotFound(name string) *apperrors.AppError {
	return &apperrors.AppError{
		Code:       ErrPermissionNotFound.Code,
		Message:    fmt.Sprintf("Permission %q not found", name),
		StatusCode: ErrPermissionNotFound.StatusCode,
	}
}

// gatewayError classifies a failed database round trip.
func gatewayError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Gateway(op, err)
}

// notFoundOr maps gorm.ErrRecordNotFound to notFound and anything else to a gateway error.
func notFoundOr(notFound *apperrors.AppError, op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return gatewayError(op, err)
}

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}
