package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yeisme/ingestvault/pkg/internal/model"
)

func seedObjects(t *testing.T, svc *IngestService, groupID uint, keys ...string) {
	t.Helper()

	for _, key := range keys {
		obj := model.Object{
			ObjectGroupID: groupID,
			Host:          "minio-1.internal:9000",
			Bucket:        "ingest",
			Key:           key,
		}
		if err := svc.dbClient.Create(&obj).Error; err != nil {
			t.Fatalf("seed object %s: %v", key, err)
		}
	}
}

// TestListObjectsEmptyGroup 空对象组直接返回空列表，不触发任何签名调用.
func TestListObjectsEmptyGroup(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7)

	factoryCalled := false
	svc.newSigner = func(string) (ObjectSigner, error) {
		factoryCalled = true
		return nil, errors.New("must not be called")
	}

	objs, err := svc.ListObjects(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("list objects: %v", err)
	}

	if len(objs) != 0 {
		t.Errorf("expected empty list, got %d objects", len(objs))
	}

	if factoryCalled {
		t.Error("signer factory must not be called for an empty group")
	}
}

// TestListObjectsEnriched 每个对象都带上新计算的下载链接.
func TestListObjectsEnriched(t *testing.T) {
	svc, signer := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7)
	seedObjects(t, svc, res.ObjectGroupID, "a.tif", "b.tif", "c.tif")

	objs, err := svc.ListObjects(context.Background(), res.ID)
	if err != nil {
		t.Fatalf("list objects: %v", err)
	}

	if len(objs) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(objs))
	}

	for _, obj := range objs {
		if obj.PreSignedURL == "" || !strings.Contains(obj.PreSignedURL, obj.Key) {
			t.Errorf("object %s missing presigned url: %q", obj.Key, obj.PreSignedURL)
		}

		if obj.Host != "minio-1.internal:9000" || obj.Bucket != "ingest" {
			t.Errorf("object location not preserved: %+v", obj)
		}
	}

	if signer.calls != 3 {
		t.Errorf("expected 3 sign calls, got %d", signer.calls)
	}
}

// TestListObjectsAllOrNothing 任一对象签名失败，整个调用失败，不返回部分结果.
func TestListObjectsAllOrNothing(t *testing.T) {
	svc, signer := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7)
	seedObjects(t, svc, res.ObjectGroupID, "a.tif", "b.tif", "c.tif")

	signer.failAt = 2

	objs, err := svc.ListObjects(context.Background(), res.ID)

	var dependencyErr *DependencyError
	if !errors.As(err, &dependencyErr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}

	if !errors.Is(err, signer.lastErr) {
		t.Errorf("expected the underlying cause to be wrapped, got %v", err)
	}

	if objs != nil {
		t.Errorf("no partial results allowed, got %v", objs)
	}
}

// TestListObjectsSignerFactoryFailure 建连失败同样整体失败.
func TestListObjectsSignerFactoryFailure(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	res := createProcess(t, svc, 7)
	seedObjects(t, svc, res.ObjectGroupID, "a.tif")

	svc.newSigner = func(string) (ObjectSigner, error) {
		return nil, errors.New("endpoint unreachable")
	}

	_, err := svc.ListObjects(context.Background(), res.ID)

	var dependencyErr *DependencyError
	if !errors.As(err, &dependencyErr) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
}

// TestListObjectsNotFound 流程不存在时报 NotFound.
func TestListObjectsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.ListObjects(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
