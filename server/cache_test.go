package server

import (
	"errors"
	"testing"
	"time"
)

func TestResponseCacheStoresSuccess(t *testing.T) {
	c := newResponseCache(time.Minute)

	calls := 0
	fetch := func() ([]byte, int, error) {
		calls++
		return []byte("body"), 200, nil
	}

	body, status, err, hit := c.Do("k", fetch)
	if err != nil || hit || string(body) != "body" || status != 200 {
		t.Fatalf("first call: body=%q status=%d err=%v hit=%v", body, status, err, hit)
	}

	body, status, err, hit = c.Do("k", fetch)
	if err != nil || !hit || string(body) != "body" || status != 200 {
		t.Fatalf("second call: body=%q status=%d err=%v hit=%v", body, status, err, hit)
	}
	if calls != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestResponseCacheExpiry(t *testing.T) {
	c := newResponseCache(time.Minute)
	clock := time.Now()
	c.now = func() time.Time { return clock }

	calls := 0
	fetch := func() ([]byte, int, error) {
		calls++
		return []byte("x"), 200, nil
	}

	c.Do("k", fetch)
	clock = clock.Add(2 * time.Minute)
	_, _, _, hit := c.Do("k", fetch)
	if hit || calls != 2 {
		t.Errorf("expired entry served: hit=%v calls=%d", hit, calls)
	}
}

func TestResponseCacheSkipsErrorsAndFailures(t *testing.T) {
	c := newResponseCache(time.Minute)

	boom := errors.New("boom")
	calls := 0
	_, _, err, _ := c.Do("k", func() ([]byte, int, error) {
		calls++
		return nil, 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	c.Do("k", func() ([]byte, int, error) {
		calls++
		return []byte("ok"), 200, nil
	})
	if calls != 2 {
		t.Errorf("error results must not be cached, calls = %d", calls)
	}

	// client errors are recomputed too
	calls = 0
	c.Do("e", func() ([]byte, int, error) {
		calls++
		return []byte("nope"), 404, nil
	})
	c.Do("e", func() ([]byte, int, error) {
		calls++
		return []byte("nope"), 404, nil
	})
	if calls != 2 {
		t.Errorf("status >= 400 must not be cached, calls = %d", calls)
	}
}

func TestResponseCacheDisabled(t *testing.T) {
	c := newResponseCache(0)

	calls := 0
	fetch := func() ([]byte, int, error) {
		calls++
		return []byte("x"), 200, nil
	}
	c.Do("k", fetch)
	_, _, _, hit := c.Do("k", fetch)
	if hit || calls != 2 {
		t.Errorf("zero TTL must disable storage: hit=%v calls=%d", hit, calls)
	}
}

func TestResponseCacheInvalidate(t *testing.T) {
	c := newResponseCache(time.Minute)

	calls := 0
	fetch := func() ([]byte, int, error) {
		calls++
		return []byte("x"), 200, nil
	}
	c.Do("k", fetch)
	c.Invalidate("k")
	c.Do("k", fetch)
	if calls != 2 {
		t.Errorf("invalidate did not drop the entry, calls = %d", calls)
	}
}
