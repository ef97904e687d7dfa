package guard

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestController(cfg Config) (*Controller, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_724_741_000, 0)}
	return New(cfg, WithClock(clk.now)), clk
}

func TestThrottleWindow(t *testing.T) {
	c, clk := newTestController(Config{Limit: 3, Period: 60 * time.Second, MaxPerMinute: 0})

	for i := 0; i < 3; i++ {
		if v := c.Check(1); v != Allow {
			t.Fatalf("check %d = %v", i, v)
		}
		clk.advance(time.Second)
	}
	if v := c.Check(1); v != RateLimited {
		t.Fatalf("4th check = %v, want RateLimited", v)
	}

	// The window slides: once the first event ages out, one slot frees up.
	clk.advance(58 * time.Second)
	if v := c.Check(1); v != Allow {
		t.Fatalf("check after window = %v, want Allow", v)
	}
}

func TestThrottleIsPerUser(t *testing.T) {
	c, _ := newTestController(Config{Limit: 1, Period: time.Minute})
	if v := c.Check(1); v != Allow {
		t.Fatalf("user 1 = %v", v)
	}
	if v := c.Check(1); v != RateLimited {
		t.Fatalf("user 1 second = %v", v)
	}
	if v := c.Check(2); v != Allow {
		t.Fatalf("user 2 = %v", v)
	}
}

func TestFloodAutoBan(t *testing.T) {
	c, _ := newTestController(Config{Limit: 1000, Period: time.Minute, MaxPerMinute: 5})

	var v Verdict
	for i := 0; i < 6; i++ {
		v = c.Check(9)
	}
	if v != AutoBanned {
		t.Fatalf("6th check = %v, want AutoBanned", v)
	}
	if !c.IsBanned(9) {
		t.Fatal("user not blacklisted after auto-ban")
	}
	if v := c.Check(9); v != Blacklisted {
		t.Fatalf("check after ban = %v, want Blacklisted", v)
	}
}

func TestPauseBeatsEverything(t *testing.T) {
	c, _ := newTestController(Config{Limit: 10, Period: time.Minute})
	c.Ban(5)
	c.Pause()
	if c.Running() {
		t.Fatal("running after pause")
	}
	if v := c.Check(5); v != Paused {
		t.Fatalf("banned user while paused = %v, want Paused", v)
	}
	c.Resume()
	if v := c.Check(5); v != Blacklisted {
		t.Fatalf("banned user after resume = %v, want Blacklisted", v)
	}
}

func TestBanUnban(t *testing.T) {
	c, _ := newTestController(Config{Limit: 10, Period: time.Minute})
	c.Ban(7)
	if !c.IsBanned(7) {
		t.Fatal("not banned after Ban")
	}
	if !c.Unban(7) {
		t.Fatal("Unban reported absent")
	}
	if c.Unban(7) {
		t.Fatal("second Unban reported present")
	}
	if v := c.Check(7); v != Allow {
		t.Fatalf("check after unban = %v", v)
	}
}

func TestLoadAndSnapshot(t *testing.T) {
	c, _ := newTestController(Config{Limit: 10, Period: time.Minute})
	c.Load([]int64{1, 2, 3})
	if got := c.Blacklist(); len(got) != 3 {
		t.Fatalf("blacklist = %v", got)
	}
	if !c.IsBanned(2) {
		t.Fatal("loaded id not banned")
	}
}
