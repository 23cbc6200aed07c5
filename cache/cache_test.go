package cache

import (
	"fmt"
	"testing"

	"github.com/use-agent/reelist/models"
)

func TestCache_GetSet(t *testing.T) {
	c := New(10)
	resp := &models.VideoListResponse{Success: true, Username: "creator"}

	key := Key("creator", 50, "browser")
	c.Set(key, resp)

	got, hit := c.Get(key, 60_000)
	if !hit {
		t.Fatal("expected cache hit")
	}
	if got.Username != "creator" {
		t.Errorf("cached username = %q", got.Username)
	}
}

func TestCache_MissWhenDisabled(t *testing.T) {
	c := New(10)
	key := Key("creator", 50, "browser")
	c.Set(key, &models.VideoListResponse{})

	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 must never hit")
	}
	if _, hit := c.Get(key, -1); hit {
		t.Error("negative maxAge must never hit")
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := New(10)
	if _, hit := c.Get(Key("nobody", 50, "browser"), 60_000); hit {
		t.Error("unknown key must miss")
	}
}

func TestKey_DiscriminatesParameters(t *testing.T) {
	base := Key("creator", 50, "browser")
	if Key("creator", 100, "browser") == base {
		t.Error("different caps must produce different keys")
	}
	if Key("creator", 50, "http") == base {
		t.Error("different fetch modes must produce different keys")
	}
	if Key("other", 50, "browser") == base {
		t.Error("different usernames must produce different keys")
	}
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c := New(3)
	for i := 0; i < 5; i++ {
		c.Set(Key(fmt.Sprintf("user%d", i), 50, "browser"), &models.VideoListResponse{})
	}

	c.mu.RLock()
	size := len(c.store)
	c.mu.RUnlock()
	if size > 3 {
		t.Errorf("cache grew to %d entries, capacity is 3", size)
	}
}
