package service

import (
	"math"

	"github.com/cascadia-commons/portal-api/internal/dto"
)

const defaultPageSize = 20
const maxPageSize = 100

func maxInt(value, floor int) int {
	if value < floor {
		return floor
	}
	return value
}

func clampPageSize(pageSize int) int {
	if pageSize <= 0 {
		return defaultPageSize
	}
	if pageSize > maxPageSize {
		return maxPageSize
	}
	return pageSize
}

func buildPagination(page, pageSize int, total int64) dto.PaginationMeta {
	meta := dto.PaginationMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		meta.TotalPages = 1
	}
	return meta
}
