package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"greenia/internal/models"
)

type paginationParams struct {
	page     int
	pageSize int
	limit    int
	offset   int
}

// parsePaginationParams reads ?page= (1-based) and ?page_size=, capping page_size at max.
func parsePaginationParams(r *http.Request, defaultSize, maxSize int) (paginationParams, error) {
	p := paginationParams{page: 1, pageSize: defaultSize}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errors.New("page must be a positive integer")
		}
		p.page = n
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, errors.New("page_size must be a positive integer")
		}
		p.pageSize = n
	}
	if p.pageSize > maxSize {
		p.pageSize = maxSize
	}
	p.limit = p.pageSize
	p.offset = (p.page - 1) * p.pageSize
	return p, nil
}

func writePaginatedResponse(w http.ResponseWriter, status int, data any, page, pageSize, total int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	writeJSON(w, status, models.PaginatedResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	})
}
