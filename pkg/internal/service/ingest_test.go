package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/ingestvault/pkg/internal/model"
	"github.com/yeisme/ingestvault/pkg/internal/query"
	"github.com/yeisme/ingestvault/pkg/internal/storage/db"
	"github.com/yeisme/ingestvault/pkg/internal/types"
)

// fakeSigner 记录签名调用并返回可预测的 URL，便于断言.
type fakeSigner struct {
	calls   int
	failAt  int // 第 n 次调用返回错误，0 表示不失败
	lastErr error
}

func (f *fakeSigner) PresignedGetURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	f.calls++
	if f.failAt > 0 && f.calls >= f.failAt {
		f.lastErr = errors.New("signature backend down")
		return "", f.lastErr
	}

	return fmt.Sprintf("https://signed.example/%s/%s", bucket, key), nil
}

// newTestService 构建基于内存 sqlite 的服务实例，门禁默认放行.
func newTestService(t *testing.T) (*IngestService, *fakeSigner) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := gdb.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	signer := &fakeSigner{}

	svc := &IngestService{
		dbClient:      &db.Client{DB: gdb},
		gate:          func(context.Context) bool { return true },
		newSigner:     func(string) (ObjectSigner, error) { return signer, nil },
		presignExpiry: 15 * time.Minute,
	}

	return svc, signer
}

func seedSource(t *testing.T, svc *IngestService, id uint) {
	t.Helper()

	src := model.Source{ID: id, Name: fmt.Sprintf("source-%d", id), RGeom: "POLYGON((...))"}
	if err := svc.dbClient.Create(&src).Error; err != nil {
		t.Fatalf("seed source: %v", err)
	}
}

func createProcess(t *testing.T, svc *IngestService, sourceID uint, tags ...string) *types.IngestProcessResponse {
	t.Helper()

	res, err := svc.Create(context.Background(), &types.CreateIngestProcessRequest{
		State:    model.IngestStatePending,
		SourceID: sourceID,
		Tags:     tags,
	})
	if err != nil {
		t.Fatalf("create process: %v", err)
	}

	return res
}

// TestCreateAtomic 创建成功后：对象组存在且为空，按 id 重读字段一致.
func TestCreateAtomic(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7, "batch-1")

	if res.ID == 0 || res.ObjectGroupID == 0 || res.CreatedOn.IsZero() {
		t.Fatalf("expected server-assigned id/object_group_id/created_on, got %+v", res)
	}

	if !reflect.DeepEqual(res.Tags, []string{"batch-1"}) {
		t.Errorf("expected tags [batch-1], got %v", res.Tags)
	}

	if res.Source == nil || res.Source.ID != 7 {
		t.Errorf("expected source 7 attached, got %+v", res.Source)
	}

	// 对象组存在且为空
	var group model.ObjectGroup
	if err := svc.dbClient.First(&group, res.ObjectGroupID).Error; err != nil {
		t.Fatalf("object group %d not found: %v", res.ObjectGroupID, err)
	}

	var objects int64
	if err := svc.dbClient.Model(&model.Object{}).Where("object_group_id = ?", group.ID).Count(&objects).Error; err != nil {
		t.Fatalf("count objects: %v", err)
	}

	if objects != 0 {
		t.Errorf("expected empty object group, got %d objects", objects)
	}

	// 立即可按 id 取回且字段一致
	got, err := svc.Get(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("get after create: %v", err)
	}

	if got.ID != res.ID || got.ObjectGroupID != res.ObjectGroupID ||
		got.State != res.State || !reflect.DeepEqual(got.Tags, res.Tags) {
		t.Errorf("get after create mismatch: got %+v want %+v", got, res)
	}

	if got.SourceID == nil || *got.SourceID != 7 {
		t.Errorf("expected source_id 7, got %v", got.SourceID)
	}
}

// TestCreateUnknownSource 未知 source_id 以校验错误拒绝，且不留下任何新实体.
func TestCreateUnknownSource(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), &types.CreateIngestProcessRequest{
		State:    model.IngestStatePending,
		SourceID: 42,
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	var procs, groups int64

	svc.dbClient.Model(&model.IngestProcess{}).Count(&procs)
	svc.dbClient.Model(&model.ObjectGroup{}).Count(&groups)

	if procs != 0 || groups != 0 {
		t.Errorf("expected no entities persisted, got %d processes, %d groups", procs, groups)
	}
}

// TestCreateForbidden 门禁拒绝时整个操作失败，不产生写入.
func TestCreateForbidden(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 1)

	svc.gate = func(context.Context) bool { return false }

	_, err := svc.Create(context.Background(), &types.CreateIngestProcessRequest{
		State:    model.IngestStatePending,
		SourceID: 1,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	var groups int64

	svc.dbClient.Model(&model.ObjectGroup{}).Count(&groups)

	if groups != 0 {
		t.Errorf("expected no object group created on denial, got %d", groups)
	}
}

// TestPatchSparse 只更新显式提供的字段，其余保持不变.
func TestPatchSparse(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7, "batch-1")

	comments := "reviewed"

	patched, err := svc.Patch(context.Background(), res.ID, &types.PatchIngestProcessRequest{
		Comments: &comments,
	})
	if err != nil {
		t.Fatalf("patch: %v", err)
	}

	if patched.Comments == nil || *patched.Comments != "reviewed" {
		t.Errorf("expected comments updated, got %v", patched.Comments)
	}

	if patched.State != model.IngestStatePending {
		t.Errorf("state should be untouched, got %s", patched.State)
	}

	if patched.SourceID == nil || *patched.SourceID != 7 {
		t.Errorf("source_id should be untouched, got %v", patched.SourceID)
	}

	if !reflect.DeepEqual(patched.Tags, []string{"batch-1"}) {
		t.Errorf("tags should be untouched, got %v", patched.Tags)
	}

	// 完成流程：state + completed_on
	state := model.IngestStateComplete
	completed := time.Now().UTC().Truncate(time.Second)

	patched, err = svc.Patch(context.Background(), res.ID, &types.PatchIngestProcessRequest{
		State:       &state,
		CompletedOn: &completed,
	})
	if err != nil {
		t.Fatalf("patch completion: %v", err)
	}

	if patched.State != model.IngestStateComplete || patched.CompletedOn == nil {
		t.Errorf("expected complete state with completed_on, got %+v", patched)
	}

	if patched.Comments == nil || *patched.Comments != "reviewed" {
		t.Errorf("earlier patch should persist, got %v", patched.Comments)
	}
}

// TestPatchNotFound 目标 id 不存在时报 NotFound，而不是拼装空响应.
func TestPatchNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	comments := "x"

	_, err := svc.Patch(context.Background(), 999, &types.PatchIngestProcessRequest{Comments: &comments})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestPatchEmptyIsNoop 空字段集合是合法 no-op，返回未变化的当前行.
func TestPatchEmptyIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7)

	got, err := svc.Patch(context.Background(), res.ID, &types.PatchIngestProcessRequest{})
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}

	if got.State != res.State || got.ObjectGroupID != res.ObjectGroupID {
		t.Errorf("no-op patch changed the row: got %+v want %+v", got, res)
	}
}

// TestTagRoundTrip 加一个标签再删掉，回到原始列表.
func TestTagRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7, "batch-1")
	ctx := context.Background()

	tags, err := svc.AddTag(ctx, res.ID, "alpha")
	if err != nil {
		t.Fatalf("add tag: %v", err)
	}

	if !reflect.DeepEqual(tags, []string{"batch-1", "alpha"}) {
		t.Errorf("expected [batch-1 alpha], got %v", tags)
	}

	tags, err = svc.DeleteTag(ctx, res.ID, "alpha")
	if err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	if !reflect.DeepEqual(tags, res.Tags) {
		t.Errorf("expected tags restored to %v, got %v", res.Tags, tags)
	}
}

// TestTagDuplicatesAllowedAndDeletedByValue 重复标签可以共存，按值删除会清掉全部重复行.
func TestTagDuplicatesAllowedAndDeletedByValue(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7)
	ctx := context.Background()

	if _, err := svc.AddTag(ctx, res.ID, "dup"); err != nil {
		t.Fatalf("add tag: %v", err)
	}

	tags, err := svc.AddTag(ctx, res.ID, "dup")
	if err != nil {
		t.Fatalf("add duplicate tag: %v", err)
	}

	if !reflect.DeepEqual(tags, []string{"dup", "dup"}) {
		t.Errorf("expected duplicate rows preserved, got %v", tags)
	}

	tags, err = svc.DeleteTag(ctx, res.ID, "dup")
	if err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	if len(tags) != 0 {
		t.Errorf("delete by value should remove all duplicates, got %v", tags)
	}
}

// TestDeleteAbsentTag 删除不存在的标签是 no-op，返回未变化的列表.
func TestDeleteAbsentTag(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7, "keep")

	tags, err := svc.DeleteTag(context.Background(), res.ID, "missing")
	if err != nil {
		t.Fatalf("delete absent tag: %v", err)
	}

	if !reflect.DeepEqual(tags, []string{"keep"}) {
		t.Errorf("expected unchanged list [keep], got %v", tags)
	}
}

// TestTagOpsNotFound 标签操作在流程不存在时报 NotFound.
func TestTagOpsNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddTag(ctx, 404, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddTag: expected ErrNotFound, got %v", err)
	}

	if _, err := svc.DeleteTag(ctx, 404, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTag: expected ErrNotFound, got %v", err)
	}
}

// TestGetNotFound 详情读在 id 不存在时报 NotFound，绝不返回空成功.
func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Get(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestListFilterAndPaginate 过滤与 offset 分页.
func TestListFilterAndPaginate(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	ctx := context.Background()

	for i := 0; i < 5; i++ {
		createProcess(t, svc, 7)
	}

	state := model.IngestStateRunning
	if _, err := svc.Patch(ctx, 2, &types.PatchIngestProcessRequest{State: &state}); err != nil {
		t.Fatalf("patch state: %v", err)
	}

	q := &query.Query{Page: 0, PageSize: 50, Predicates: []query.Predicate{
		{Column: "state", Op: query.OpEq, Values: []string{"running"}},
	}}

	res, err := svc.List(ctx, q)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}

	if len(res) != 1 || res[0].ID != 2 {
		t.Errorf("expected exactly process 2, got %+v", res)
	}

	// 第二页：page_size=2, page=2 → 偏移 4，剩 1 条
	res, err = svc.List(ctx, &query.Query{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}

	if len(res) != 1 {
		t.Errorf("expected 1 result on last page, got %d", len(res))
	}
}
