package response

import (
	"net/http"

	"library-api/internal/domain"
)

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindUnauthorized: http.StatusUnauthorized,
	domain.KindForbidden:    http.StatusForbidden,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindConflict:     http.StatusConflict,
	domain.KindInternal:     http.StatusInternalServerError,
}

func StatusOf(err error) int {
	if s, ok := statusByKind[domain.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
