package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	e := NoopExtractionHooks{}
	e.OnWalkComplete(ctx, "/drop", 12, 1, time.Second, nil)
	e.OnStepStart(ctx, "dar", ":app-1.0")
	e.OnStepComplete(ctx, "dar", ":app-1.0", "succeeded", time.Second, nil)
	e.OnManifestRewrite(ctx, "/out/app/pom.xml", 3, errors.New("boom"))

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/extractions")
	h.OnResponse(ctx, "POST", "/v1/extractions", 200, time.Second)
	h.OnError(ctx, "POST", "/v1/extractions", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Extraction().(NoopExtractionHooks); !ok {
		t.Error("Extraction() should return NoopExtractionHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customExtraction := &testExtractionHooks{}
	SetExtractionHooks(customExtraction)
	if Extraction() != customExtraction {
		t.Error("SetExtractionHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Extraction().(NoopExtractionHooks); !ok {
		t.Error("Reset() should restore NoopExtractionHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testExtractionHooks{}
	SetExtractionHooks(custom)
	SetExtractionHooks(nil)

	if Extraction() != custom {
		t.Error("SetExtractionHooks(nil) should be ignored")
	}
}

type testExtractionHooks struct{ NoopExtractionHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
