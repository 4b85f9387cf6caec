package interceptors

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type pageRequest struct {
	Path string `json:"path"`
}

func TestFingerprint_Stable(t *testing.T) {
	a, err := Fingerprint("/rawr.Pages/Render", "", pageRequest{Path: "/page1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := Fingerprint("/rawr.Pages/Render", "", pageRequest{Path: "/page1"})
	if a != b {
		t.Fatalf("fingerprint not stable: %q != %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("got %d hex chars, want 64", len(a))
	}
}

func TestFingerprint_Distinguishes(t *testing.T) {
	base, _ := Fingerprint("/rawr.Pages/Render", "", pageRequest{Path: "/page1"})
	for name, fp := range map[string]func() (string, error){
		"method":  func() (string, error) { return Fingerprint("/rawr.Pages/Other", "", pageRequest{Path: "/page1"}) },
		"tenant":  func() (string, error) { return Fingerprint("/rawr.Pages/Render", "acme", pageRequest{Path: "/page1"}) },
		"payload": func() (string, error) { return Fingerprint("/rawr.Pages/Render", "", pageRequest{Path: "/page2"}) },
	} {
		got, err := fp()
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if got == base {
			t.Fatalf("%s: fingerprint did not change", name)
		}
	}
}

func TestFingerprint_ProtoMapOrderIndependent(t *testing.T) {
	a, err := structpb.NewStruct(map[string]any{"a": 1, "b": "two", "c": true})
	if err != nil {
		t.Fatal(err)
	}
	b := proto.Clone(a).(*structpb.Struct)

	fa, err := Fingerprint("/svc/M", "", a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fb, _ := Fingerprint("/svc/M", "", b)
	if fa != fb {
		t.Fatalf("got %q and %q, want equal", fa, fb)
	}
}

func TestFingerprint_Unencodable(t *testing.T) {
	if _, err := Fingerprint("/svc/M", "", make(chan int)); err == nil {
		t.Fatal("expected error for unencodable request")
	}
}

func TestCloneResponse(t *testing.T) {
	orig := structpb.NewStringValue("x")
	got := cloneResponse(orig).(*structpb.Value)
	if got == orig {
		t.Fatal("proto response was not cloned")
	}
	if !proto.Equal(got, orig) {
		t.Fatal("clone differs from original")
	}
	if cloneResponse("plain") != "plain" {
		t.Fatal("non-proto value changed")
	}
}

type cachedPage struct{ html string }

func (p *cachedPage) Clone() any { c := *p; return &c }

func TestCloneResponse_Cloner(t *testing.T) {
	orig := &cachedPage{html: "<h1>home</h1>"}
	got := cloneResponse(orig).(*cachedPage)
	if got == orig {
		t.Fatal("cloner response was not cloned")
	}
	got.html = "mutated"
	if orig.html != "<h1>home</h1>" {
		t.Fatalf("got %q, cached value was mutated", orig.html)
	}
}
