package mirrorfs

import (
	"errors"
	"io/fs"
	"sync/atomic"
	"testing"
)

func newTestPipeline(fsys FileSystem, jsonOn bool) *pipeline {
	var flag atomic.Bool
	flag.Store(jsonOn)
	return &pipeline{
		fsys:    fsys,
		dir:     "/watch",
		jsonOn:  &flag,
		jsonExt: DefaultJSONExtension,
	}
}

func TestPipelineRegularFile(t *testing.T) {
	fsys := newFakeFS()
	fsys.write("/watch/a.txt", []byte("hello"))

	out := newTestPipeline(fsys, false).run("a.txt")
	if out.err != nil {
		t.Fatalf("run() error: %v", out.err)
	}
	if out.content == nil || string(out.content.Bytes()) != "hello" {
		t.Fatalf("content = %v", out.content)
	}
	if _, ok := out.content.JSON(); ok {
		t.Error("non-JSON entry should not carry a decoded value")
	}
}

func TestPipelineVanishedIsNoContent(t *testing.T) {
	out := newTestPipeline(newFakeFS(), false).run("gone.txt")
	if out.err != nil {
		t.Fatalf("vanished entry should not error: %v", out.err)
	}
	if out.content != nil {
		t.Fatalf("vanished entry content = %v, want nil", out.content)
	}
}

func TestPipelineDirectoryIsNoContent(t *testing.T) {
	fsys := newFakeFS()
	fsys.mkdir("/watch/sub")

	out := newTestPipeline(fsys, false).run("sub")
	if out.err != nil {
		t.Fatalf("directory entry should not error: %v", out.err)
	}
	if out.content != nil {
		t.Fatalf("directory entry content = %v, want nil", out.content)
	}
}

func TestPipelineStatFaultIsError(t *testing.T) {
	fsys := newFakeFS()
	fsys.statErr["/watch/locked.txt"] = fs.ErrPermission

	out := newTestPipeline(fsys, false).run("locked.txt")
	if out.err == nil {
		t.Fatal("permission fault should surface as an error")
	}
	if !errors.Is(out.err, fs.ErrPermission) {
		t.Fatalf("error = %v, want wrapped fs.ErrPermission", out.err)
	}
}

func TestPipelineReadFaultIsError(t *testing.T) {
	fsys := newFakeFS()
	fsys.write("/watch/flaky.txt", []byte("x"))
	fsys.readErr["/watch/flaky.txt"] = errors.New("input/output error")

	out := newTestPipeline(fsys, false).run("flaky.txt")
	if out.err == nil {
		t.Fatal("read fault should surface as an error")
	}
}

func TestPipelineVanishedBetweenProbeAndRead(t *testing.T) {
	fsys := newFakeFS()
	fsys.write("/watch/brief.txt", []byte("x"))
	fsys.readErr["/watch/brief.txt"] = fs.ErrNotExist

	out := newTestPipeline(fsys, false).run("brief.txt")
	if out.err != nil {
		t.Fatalf("vanish mid-read should not error: %v", out.err)
	}
	if out.content != nil {
		t.Fatalf("content = %v, want nil", out.content)
	}
}

func TestPipelineJSONDecode(t *testing.T) {
	fsys := newFakeFS()
	fsys.write("/watch/data.json", []byte(`{"a": 1}`))

	out := newTestPipeline(fsys, true).run("data.json")
	if out.err != nil {
		t.Fatalf("run() error: %v", out.err)
	}
	value, ok := out.content.JSON()
	if !ok {
		t.Fatal("JSON entry should carry a decoded value")
	}
	object, ok := value.(map[string]any)
	if !ok || object["a"] != float64(1) {
		t.Fatalf("decoded = %v", value)
	}
}

func TestPipelineJSONExtensionCaseInsensitive(t *testing.T) {
	fsys := newFakeFS()
	fsys.write("/watch/DATA.JSON", []byte(`[1, 2]`))

	out := newTestPipeline(fsys, true).run("DATA.JSON")
	if out.err != nil {
		t.Fatalf("run() error: %v", out.err)
	}
	if _, ok := out.content.JSON(); !ok {
		t.Error("uppercase .JSON should match the marker")
	}
}

func TestPipelineMalformedJSONIsError(t *testing.T) {
	fsys := newFakeFS()
	fsys.write("/watch/bad.json", []byte(`{"a":`))

	out := newTestPipeline(fsys, true).run("bad.json")
	if out.err == nil {
		t.Fatal("malformed JSON should surface as an error")
	}
}

func TestPipelineJSONDisabledReturnsRaw(t *testing.T) {
	fsys := newFakeFS()
	fsys.write("/watch/data.json", []byte(`{"a": 1}`))

	out := newTestPipeline(fsys, false).run("data.json")
	if out.err != nil {
		t.Fatalf("run() error: %v", out.err)
	}
	if _, ok := out.content.JSON(); ok {
		t.Error("decoding disabled, entry should stay raw")
	}
	if string(out.content.Bytes()) != `{"a": 1}` {
		t.Fatalf("raw = %q", out.content.Bytes())
	}
}
