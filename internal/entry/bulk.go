package entry

import (
	"context"
	"errors"
	"fmt"

	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"golang.org/x/sync/errgroup"
)

// Failure 记录批量操作中失败的一项
type Failure struct {
	// Index 是该项在请求中的位置
	Index int `json:"index"`
	// ID 是条目ID；批量创建失败时为空
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`

	err error
}

// Unwrap 返回原始错误
func (f Failure) Unwrap() error { return f.err }

// BulkResult 是批量操作的结果。每一项独立执行，失败项不会回滚已成功的项。
// Succeeded 和 Failed 都按请求中的顺序排列。
type BulkResult struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// Partial 报告是否有任何一项失败
func (r BulkResult) Partial() bool {
	return len(r.Failed) > 0
}

// Summary 返回形如 "2 succeeded, 1 failed" 的摘要
func (r BulkResult) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed", len(r.Succeeded), len(r.Failed))
}

type outcome struct {
	id  string
	err error
}

// runBulk 以受限并发执行 n 个互相独立的操作。
// 使用不带 context 的 errgroup：一项失败不能取消其他项。
func (s *Service) runBulk(ctx context.Context, ids []string, n int, op func(ctx context.Context, i int) (string, error)) BulkResult {
	outcomes := make([]outcome, n)
	var g errgroup.Group
	g.SetLimit(s.opts.BulkConcurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			id, err := op(ctx, i)
			outcomes[i] = outcome{id: id, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := BulkResult{Succeeded: []string{}, Failed: []Failure{}}
	for i, o := range outcomes {
		if o.err == nil {
			result.Succeeded = append(result.Succeeded, o.id)
			continue
		}
		f := Failure{Index: i, Error: o.err.Error(), err: o.err}
		if ids != nil {
			f.ID = ids[i]
		}
		result.Failed = append(result.Failed, f)
	}
	return result
}

func (s *Service) checkBulkSize(n int) error {
	if n == 0 {
		return apperr.Invalid("no entries selected")
	}
	if n > s.opts.MaxBulkSize {
		return apperr.Invalid("at most %d entries can be changed at once", s.opts.MaxBulkSize)
	}
	return nil
}

// BulkDelete 对每个ID独立执行删除，不是事务：部分失败时已删除的条目不会恢复。
func (s *Service) BulkDelete(ctx context.Context, ids []string) (BulkResult, error) {
	if err := s.checkBulkSize(len(ids)); err != nil {
		return BulkResult{}, err
	}
	return s.runBulk(ctx, ids, len(ids), func(ctx context.Context, i int) (string, error) {
		return ids[i], s.repo.Delete(ctx, ids[i])
	}), nil
}

// BulkUpdate 把同一个补丁独立地应用到每个条目上。
func (s *Service) BulkUpdate(ctx context.Context, ids []string, patch map[string]any) (BulkResult, error) {
	if err := s.checkBulkSize(len(ids)); err != nil {
		return BulkResult{}, err
	}
	return s.runBulk(ctx, ids, len(ids), func(ctx context.Context, i int) (string, error) {
		_, err := s.UpdateEntry(ctx, ids[i], patch)
		return ids[i], err
	}), nil
}

// BulkCreate 独立地创建多行。插入序号在开始前一次性预留，
// 所以并发创建的行仍按请求顺序排列。Succeeded 中是新条目的ID。
func (s *Service) BulkCreate(ctx context.Context, schemaID string, rows []map[string]any, createdBy string) (BulkResult, error) {
	if err := s.checkBulkSize(len(rows)); err != nil {
		return BulkResult{}, err
	}
	sc, err := s.schemas.GetSchema(ctx, schemaID)
	if err != nil {
		return BulkResult{}, err
	}
	base, err := s.repo.NextOrder(ctx, schemaID)
	if err != nil {
		return BulkResult{}, err
	}
	return s.runBulk(ctx, nil, len(rows), func(ctx context.Context, i int) (string, error) {
		e, err := s.create(ctx, sc, rows[i], base+int64(i), createdBy)
		if err != nil {
			return "", err
		}
		return e.ID, nil
	}), nil
}

// BulkDuplicate 独立地复制多个条目。Succeeded 中是副本的ID。
func (s *Service) BulkDuplicate(ctx context.Context, schemaID string, ids []string, createdBy string) (BulkResult, error) {
	if err := s.checkBulkSize(len(ids)); err != nil {
		return BulkResult{}, err
	}
	sc, err := s.schemas.GetSchema(ctx, schemaID)
	if err != nil {
		return BulkResult{}, err
	}
	base, err := s.repo.NextOrder(ctx, schemaID)
	if err != nil {
		return BulkResult{}, err
	}
	result := s.runBulk(ctx, ids, len(ids), func(ctx context.Context, i int) (string, error) {
		e, err := s.duplicate(ctx, sc, ids[i], base+int64(i), createdBy)
		if err != nil {
			return "", err
		}
		return e.ID, nil
	})
	return result, nil
}

// IsNotFound 报告失败项是否因为条目不存在
func (f Failure) IsNotFound() bool {
	return errors.Is(f.err, apperr.ErrNotFound)
}
