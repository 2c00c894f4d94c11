package uploads_test

import (
	"context"
	"errors"
	"testing"

	app "github.com/mattdimens/vehicle-analyzer-sub000/internal/application/uploads"
	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/uploads"
)

type fakeIssuer struct {
	gotName        string
	gotContentType string
	err            error
}

func (f *fakeIssuer) IssueSlot(ctx context.Context, objectName, contentType string) (*uploads.Slot, error) {
	f.gotName = objectName
	f.gotContentType = contentType
	if f.err != nil {
		return nil, f.err
	}
	return &uploads.Slot{SignedURL: "https://s/" + objectName, Path: objectName}, nil
}

func TestRequest_PassesKeyThroughUnchanged(t *testing.T) {
	t.Parallel()
	issuer := &fakeIssuer{}
	svc := app.NewService(issuer)

	slot, err := svc.Request(context.Background(), "uploads/abc-truck.jpg", "image/jpeg")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	// The caller owns namespacing; the broker must not rewrite the key.
	if issuer.gotName != "uploads/abc-truck.jpg" || slot.Path != "uploads/abc-truck.jpg" {
		t.Errorf("key rewritten: issued=%q path=%q", issuer.gotName, slot.Path)
	}
	if issuer.gotContentType != "image/jpeg" {
		t.Errorf("contentType = %q", issuer.gotContentType)
	}
}

func TestRequest_StorageErrorSurfaces(t *testing.T) {
	t.Parallel()
	svc := app.NewService(&fakeIssuer{err: errors.New("bucket quota exceeded")})

	if _, err := svc.Request(context.Background(), "a.jpg", "image/png"); err == nil {
		t.Fatal("expected the provider error to surface, no retry")
	}
}
