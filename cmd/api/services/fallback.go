package services

import (
	"fmt"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/dto"
	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// 실패 시에도 항상 형태가 온전한 값을 돌려준다. 에러는 함께 반환되어 핸들러가 error 필드로 싣는다.

func emptyPage() dto.PageResult {
	return dto.EmptyPage[models.ContentItem]()
}

func zeroCounts(categories []string) dto.CategoryCountsDTO {
	return dto.ZeroCounts(categories)
}

// recoverInto converts a panic in a service operation into *err.
// Must be deferred directly.
func recoverInto(op string, err *error) {
	if r := recover(); r != nil {
		logger.ErrorWithFields("recovered panic", logger.Fields{"operation": op, "panic": fmt.Sprint(r)})
		*err = fmt.Errorf("%s: internal error: %v", op, r)
	}
}

// fallbackPage replaces *res with the empty page when the operation failed.
// Defer it before recoverInto so it observes recovered panics.
func fallbackPage(res *dto.PageResult, err *error) {
	if *err != nil {
		*res = emptyPage()
	}
}

func fallbackItems(res *[]models.ContentItem, err *error) {
	if *err != nil || *res == nil {
		*res = []models.ContentItem{}
	}
}
