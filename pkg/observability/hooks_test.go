package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	m := NoopMapperHooks{}
	m.OnSolve(ctx, "video", time.Millisecond, nil)
	m.OnSolve(ctx, "video", time.Millisecond, errors.New("degenerate"))
	m.OnDragStart(ctx, "video", 2)
	m.OnDragEnd(ctx, "video", 2, 17)

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "video", true)
	s.OnSave(ctx, "video", 31)
	s.OnError(ctx, "get", "video", errors.New("connection refused"))

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/v1/points/video")
	h.OnResponse(ctx, "GET", "/v1/points/video", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Mapper().(NoopMapperHooks); !ok {
		t.Error("Mapper() should return NoopMapperHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customMapper := &testMapperHooks{}
	SetMapperHooks(customMapper)
	if Mapper() != customMapper {
		t.Error("SetMapperHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Mapper().(NoopMapperHooks); !ok {
		t.Error("Reset() should restore NoopMapperHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)
	SetStoreHooks(nil)

	if Store() != custom {
		t.Error("SetStoreHooks(nil) should be ignored")
	}
}

type testMapperHooks struct{ NoopMapperHooks }
type testStoreHooks struct{ NoopStoreHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
