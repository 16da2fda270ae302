package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/cache"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/clients/notionclient"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/dto"
	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// CategoryService computes per-category counts.
type CategoryService struct {
	source     Source
	cache      *cache.Cache
	policy     cache.Options
	categories map[string][]string
}

func NewCategoryService(source Source, c *cache.Cache, cfg config.AppConfig) *CategoryService {
	return &CategoryService{
		source:     source,
		cache:      c,
		policy:     PoliciesFromConfig(cfg.Cache).Counts,
		categories: cfg.Content.Categories,
	}
}

// partialCounts carries a result in which some counts failed. It travels as an error so
// the cache neither stores it nor hides an older complete result.
type partialCounts struct {
	counts dto.CategoryCountsDTO
	failed int
	err    error
}

func (p *partialCounts) Error() string {
	return fmt.Sprintf("%d count(s) failed: %v", p.failed, p.err)
}

func (p *partialCounts) Unwrap() error { return p.err }

// CountsByCategory counts the published items of ct per known category, concurrently.
//
// A category whose count fails is reported as 0 and the result is not cached; a stale
// complete result is preferred when one exists. An error is returned only when every
// count failed; the result is then all zeros.
func (s *CategoryService) CountsByCategory(ctx context.Context, ct models.ContentType) (res dto.CategoryCountsDTO, err error) {
	categories := s.categories[string(ct)]
	defer func() {
		if err != nil {
			res = zeroCounts(categories)
		}
	}()
	defer recoverInto("CountsByCategory", &err)

	if err := validType(ct); err != nil {
		return res, err
	}
	key := cache.Key(string(ct), scopeCounts, "", "", 0, 0)
	res, err = cache.GetOrFetch(ctx, s.cache, key, s.policy, func(ctx context.Context) (dto.CategoryCountsDTO, error) {
		return s.fanOut(ctx, ct, categories)
	})
	var partial *partialCounts
	if errors.As(err, &partial) {
		res, err = partial.counts, nil
	}
	if err != nil {
		logFailure("CountsByCategory", ct, err)
	}
	return res, err
}

func (s *CategoryService) fanOut(ctx context.Context, ct models.ContentType, categories []string) (dto.CategoryCountsDTO, error) {
	counts := make([]int, len(categories))
	errs := make([]error, len(categories)+1)
	var total int

	// 개별 작업은 에러를 반환하지 않는다. 실패한 카테고리는 0으로 남고 로그만 남긴다.
	var g errgroup.Group
	for i, name := range categories {
		i, name := i, name
		g.Go(func() error {
			n, err := s.source.Count(ctx, notionclient.Filter{ContentType: ct, Category: name})
			if err != nil {
				errs[i] = err
				logger.WarnWithFields("category count failed", logger.Fields{
					"content_type": string(ct),
					"category":     name,
					"error":        err.Error(),
				})
				return nil
			}
			counts[i] = n
			return nil
		})
	}
	g.Go(func() error {
		n, err := s.source.Count(ctx, notionclient.Filter{ContentType: ct})
		if err != nil {
			errs[len(categories)] = err
			logger.WarnWithFields("total count failed", logger.Fields{
				"content_type": string(ct),
				"error":        err.Error(),
			})
			return nil
		}
		total = n
		return nil
	})
	_ = g.Wait()

	failed := 0
	for _, e := range errs {
		if e != nil {
			failed++
		}
	}
	if failed == len(errs) {
		return zeroCounts(categories), errors.Join(errs...)
	}

	out := zeroCounts(categories)
	for i := range categories {
		out.Categories[i].Count = counts[i]
	}
	out.Categorized = out.Categories.Sum()
	out.Total = total
	if errs[len(categories)] != nil || total < out.Categorized {
		out.Total = out.Categorized
	}
	if failed > 0 {
		return dto.CategoryCountsDTO{}, &partialCounts{counts: out, failed: failed, err: errors.Join(errs...)}
	}
	return out, nil
}

// TotalCount returns the number of published items of ct.
func (s *CategoryService) TotalCount(ctx context.Context, ct models.ContentType) (n int, err error) {
	defer recoverInto("TotalCount", &err)

	if err := validType(ct); err != nil {
		return 0, err
	}
	key := cache.Key(string(ct), scopeTotal, "", "", 0, 0)
	n, err = cache.GetOrFetch(ctx, s.cache, key, s.policy, func(ctx context.Context) (int, error) {
		return s.source.Count(ctx, notionclient.Filter{ContentType: ct})
	})
	if err != nil {
		logFailure("TotalCount", ct, err)
		return 0, err
	}
	return n, nil
}
