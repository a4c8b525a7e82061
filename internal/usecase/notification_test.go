package usecase

import (
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/foodrush/internal/domain/errors"
	testhelpers "github.com/polkiloo/foodrush/internal/test"
)

func TestNotificationBroadcast(t *testing.T) {
	pub := &testhelpers.PublisherStub{Delivered: true}
	uc := NewNotificationUseCase(pub, discardLogger())

	delivered, err := uc.Broadcast("maintenance", map[string]string{"at": "02:00"})
	if err != nil || !delivered {
		t.Fatalf("delivered=%v err=%v", delivered, err)
	}
	if got := pub.Targets("maintenance"); len(got) != 1 || got[0] != "broadcast" {
		t.Fatalf("unexpected targets %v", got)
	}
	if _, err := uc.Broadcast(" ", nil); !errors.Is(err, domainErrors.ErrInvalidEvent) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNotificationSend(t *testing.T) {
	pub := &testhelpers.PublisherStub{}
	uc := NewNotificationUseCase(pub, discardLogger())

	delivered, err := uc.Send("rider:r7", "promo", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if delivered {
		t.Fatal("expected delivered=false from publisher")
	}
	if got := pub.Targets("promo"); len(got) != 1 || got[0] != "rider:r7" {
		t.Fatalf("unexpected targets %v", got)
	}

	for _, room := range []string{"rider", "kitchen:1", "customer:"} {
		if _, err := uc.Send(room, "promo", nil); !errors.Is(err, domainErrors.ErrInvalidRoom) {
			t.Fatalf("room %q: expected invalid room, got %v", room, err)
		}
	}
}
