package async

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mivranec/go-async/result"
)

func TestThen_ValueAlreadyReady(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()
	p.SetValue(5)

	out := Then(f, func(f *Future[int]) int {
		return f.MustGet() + 1
	})

	assert.Equal(t, 6, out.MustGet())

	p.Close()
	out.Close()
}

func TestThen_ValueBeforeReady(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	out := Then(f, func(f *Future[int]) string {
		return strconv.Itoa(f.MustGet() * 2)
	})
	require.False(t, out.IsReady())

	p.SetValue(21)
	assert.Equal(t, "42", out.MustGet())

	p.Close()
	out.Close()
}

func TestThen_ConsumesSource(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	out := Then(f, func(f *Future[int]) int { return f.MustGet() })

	assert.False(t, f.Valid())
	_, err := f.Get()
	require.ErrorIs(t, err, ErrNoState)

	p.SetValue(1)
	p.Close()
	out.Close()
}

func TestThen_NilCallable(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	out := Then[int, int](f, nil)
	assert.False(t, out.Valid())
	// The source survives a nil-continuation no-op.
	assert.True(t, f.Valid())

	p.SetValue(1)
	assert.Equal(t, 1, f.MustGet())

	p.Close()
	f.Close()
}

func TestThen_OnInvalidFuture(t *testing.T) {
	var f Future[int]
	out := Then(&f, func(f *Future[int]) int { return 0 })

	_, err := out.Get()
	require.ErrorIs(t, err, ErrNoState)
	out.Close()
}

func TestThenResult(t *testing.T) {
	t.Run("value becomes value", func(t *testing.T) {
		p := NewPromise[int]()
		f := p.GetFuture()
		p.SetValue(2)

		out := ThenResult(f, func(f *Future[int]) result.Result[int] {
			return result.OfValue(f.MustGet() * 10)
		})
		assert.Equal(t, 20, out.MustGet())

		p.Close()
		out.Close()
	})

	t.Run("error becomes error", func(t *testing.T) {
		p := NewPromise[int]()
		f := p.GetFuture()
		p.SetValue(2)

		out := ThenResult(f, func(f *Future[int]) result.Result[int] {
			return result.OfError[int](assert.AnError)
		})
		_, err := out.Get()
		require.ErrorIs(t, err, assert.AnError)

		p.Close()
		out.Close()
	})
}

func TestThenFuture_PendingInner(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	inner := NewPromise[string]()

	out := ThenFuture(f, func(f *Future[int]) *Future[string] {
		require.Equal(t, 1, f.MustGet())
		return inner.GetFuture()
	})

	p.SetValue(1)

	// The outer future must not become ready before the inner promise
	// is fulfilled.
	require.False(t, out.WaitFor(20*time.Millisecond))

	inner.SetValue("flattened")
	assert.Equal(t, "flattened", out.MustGet())

	p.Close()
	inner.Close()
	out.Close()
}

func TestThenFuture_ReadyInner(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()
	p.SetValue(1)

	inner := NewPromise[int]()
	inner.SetValue(99)

	out := ThenFuture(f, func(f *Future[int]) *Future[int] {
		return inner.GetFuture()
	})
	assert.Equal(t, 99, out.MustGet())

	p.Close()
	inner.Close()
	out.Close()
}

func TestThenFuture_InnerError(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	inner := NewPromise[int]()

	out := ThenFuture(f, func(f *Future[int]) *Future[int] {
		return inner.GetFuture()
	})

	p.SetValue(1)
	inner.SetError(assert.AnError)

	_, err := out.Get()
	require.ErrorIs(t, err, assert.AnError)

	p.Close()
	inner.Close()
	out.Close()
}

func TestThenFuture_NilInner(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()
	p.SetValue(1)

	out := ThenFuture(f, func(f *Future[int]) *Future[int] {
		return nil
	})

	_, err := out.Get()
	require.ErrorIs(t, err, ErrNoState)

	p.Close()
	out.Close()
}

func TestThen_BrokenPromisePropagates(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	out := ThenResult(f, func(f *Future[int]) result.Result[string] {
		_, err := f.Get()
		return result.OfError[string](err)
	})

	// Closing the unset promise must run the pending continuation with
	// the broken state rather than leaking it.
	p.Close()

	_, err := out.Get()
	require.ErrorIs(t, err, ErrBrokenPromise)
	out.Close()
}

func TestThen_PanickingCallable(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	out := Then(f, func(f *Future[int]) int {
		panic("continuation boom")
	})

	p.SetValue(1)

	_, err := out.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "continuation boom")

	p.Close()
	out.Close()
}

func TestThen_ExecutorDispatch(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	var submissions atomic.Int32
	recording := ExecutorFunc(func(fn func()) {
		submissions.Add(1)
		fn()
	})
	require.NoError(t, f.SetExecutionContext(recording))

	out := Then(f, func(f *Future[int]) int { return f.MustGet() + 1 })
	// The context propagates down the chain.
	out2 := Then(out, func(f *Future[int]) int { return f.MustGet() + 1 })

	p.SetValue(1)
	assert.Equal(t, 3, out2.MustGet())
	assert.Equal(t, int32(2), submissions.Load())

	p.Close()
	out2.Close()
}

func TestThen_ExecutorDispatchWhenAlreadyReady(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()
	p.SetValue(1)

	var submissions atomic.Int32
	recording := ExecutorFunc(func(fn func()) {
		submissions.Add(1)
		fn()
	})
	require.NoError(t, f.SetExecutionContext(recording))

	out := Then(f, func(f *Future[int]) int { return f.MustGet() })
	assert.Equal(t, 1, out.MustGet())
	assert.Equal(t, int32(1), submissions.Load())

	p.Close()
	out.Close()
}

func TestThen_ChainedTransforms(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	doubled := Then(f, func(f *Future[int]) int { return f.MustGet() * 2 })
	asText := Then(doubled, func(f *Future[int]) string { return strconv.Itoa(f.MustGet()) })

	p.SetValue(8)
	assert.Equal(t, "16", asText.MustGet())

	p.Close()
	asText.Close()
}

func TestThen_ContinuationRunsOffProducerWhenExecutorSet(t *testing.T) {
	p := NewPromise[int]()
	f := p.GetFuture()

	done := make(chan struct{})
	var wg sync.WaitGroup
	background := ExecutorFunc(func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	})
	require.NoError(t, f.SetExecutionContext(background))

	out := Then(f, func(f *Future[int]) int {
		defer close(done)
		return f.MustGet()
	})

	p.SetValue(4)
	<-done
	assert.Equal(t, 4, out.MustGet())

	wg.Wait()
	p.Close()
	out.Close()
}
