package generate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		FragmentBuffer: 8,
		IdleTimeout:    2 * time.Second,
	}
}

func TestGenerationFinalizes(t *testing.T) {
	m := NewManager(testConfig())

	gen, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		for _, f := range []string{"Hello", ", ", "world"} {
			if err := emit(f); err != nil {
				return 0, err
			}
		}
		return 3, nil
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var got []string
	for f := range gen.Fragments() {
		got = append(got, f)
	}
	res := gen.Wait()

	if res.Outcome != OutcomeFinalized {
		t.Fatalf("outcome = %s, want finalized", res.Outcome)
	}
	if res.Text != "Hello, world" {
		t.Errorf("transcript = %q", res.Text)
	}
	if res.FragmentCount != 3 || len(got) != 3 {
		t.Errorf("fragment counts: result %d, received %d", res.FragmentCount, len(got))
	}
	if m.Busy("s1") {
		t.Error("session still busy after completion")
	}
}

func TestSecondGenerationRejectedWhileBusy(t *testing.T) {
	m := NewManager(testConfig())
	release := make(chan struct{})

	gen, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		<-release
		return 0, nil
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !m.Busy("s1") {
		t.Error("session must report busy while producing")
	}

	if _, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		return 0, nil
	}); !errors.Is(err, ErrBusy) {
		t.Fatalf("second start: err = %v, want ErrBusy", err)
	}

	// A different session is unaffected.
	other, err := m.Start(context.Background(), "s2", func(ctx context.Context, emit func(string) error) (int, error) {
		return 0, nil
	})
	if err != nil {
		t.Fatalf("other session rejected: %v", err)
	}
	for range other.Fragments() {
	}
	other.Wait()

	close(release)
	for range gen.Fragments() {
	}
	gen.Wait()

	// Lock is released; the session accepts work again.
	again, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		return 0, nil
	})
	if err != nil {
		t.Fatalf("restart after completion: %v", err)
	}
	for range again.Fragments() {
	}
	again.Wait()
}

func TestAbortMidGeneration(t *testing.T) {
	m := NewManager(testConfig())

	gen, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		count := 0
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return count, ctx.Err()
			default:
			}
			if err := emit("frag "); err != nil {
				return count, err
			}
			count++
			time.Sleep(10 * time.Millisecond)
		}
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	received := 0
	for f := range gen.Fragments() {
		_ = f
		received++
		if received == 2 {
			gen.Abort()
		}
	}
	res := gen.Wait()

	if res.Outcome != OutcomeAborted {
		t.Fatalf("outcome = %s, want aborted", res.Outcome)
	}
	if received < 2 {
		t.Errorf("received %d fragments before abort, want at least 2", received)
	}
	if m.Busy("s1") {
		t.Error("aborted session must release its lock")
	}

	// The session is immediately usable again.
	next, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		return 0, nil
	})
	if err != nil {
		t.Fatalf("start after abort: %v", err)
	}
	for range next.Fragments() {
	}
	if res := next.Wait(); res.Outcome != OutcomeFinalized {
		t.Errorf("fresh generation after abort: outcome = %s", res.Outcome)
	}
}

func TestEmptyGenerationIsValid(t *testing.T) {
	m := NewManager(testConfig())

	gen, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		return 0, nil
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for range gen.Fragments() {
	}
	res := gen.Wait()

	if res.Outcome != OutcomeFinalized {
		t.Fatalf("outcome = %s, want finalized", res.Outcome)
	}
	if res.Text != "" || res.FragmentCount != 0 {
		t.Errorf("empty generation: text %q, fragments %d", res.Text, res.FragmentCount)
	}
}

func TestStalledProducerAborts(t *testing.T) {
	m := NewManager(Config{FragmentBuffer: 8, IdleTimeout: 50 * time.Millisecond})

	gen, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		if err := emit("one"); err != nil {
			return 0, err
		}
		// Go quiet past the idle timeout.
		<-ctx.Done()
		return 1, ctx.Err()
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for range gen.Fragments() {
	}
	res := gen.Wait()

	if res.Outcome != OutcomeAborted {
		t.Fatalf("outcome = %s, want aborted", res.Outcome)
	}
	if !errors.Is(res.Err, ErrStalled) {
		t.Errorf("err = %v, want ErrStalled", res.Err)
	}
	if m.Busy("s1") {
		t.Error("stalled session must release its lock")
	}
}

func TestProducerErrorAborts(t *testing.T) {
	m := NewManager(testConfig())
	boom := errors.New("backend exploded")

	gen, err := m.Start(context.Background(), "s1", func(ctx context.Context, emit func(string) error) (int, error) {
		_ = emit("partial")
		return 1, boom
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	for range gen.Fragments() {
	}
	res := gen.Wait()

	if res.Outcome != OutcomeAborted {
		t.Fatalf("outcome = %s, want aborted", res.Outcome)
	}
	if !errors.Is(res.Err, boom) {
		t.Errorf("err = %v, want the producer's error", res.Err)
	}
	// The partial transcript is surfaced for logging; persistence is the
	// caller's decision.
	if res.Text != "partial" {
		t.Errorf("transcript = %q", res.Text)
	}
}
