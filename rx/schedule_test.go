package rx

import (
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/rxkit/errors"
	"github.com/kbukum/rxkit/logger"
	"github.com/kbukum/rxkit/scheduler"
	"github.com/kbukum/rxkit/testutil"
)

// inlineScheduler runs units on the caller and rejects every unit after limit.
type inlineScheduler struct {
	mu    sync.Mutex
	limit int
	runs  int
}

var errInlineFull = stderrors.New("inline scheduler full")

func (s *inlineScheduler) Execute(task func()) error {
	s.mu.Lock()
	if s.runs >= s.limit {
		s.mu.Unlock()
		return errInlineFull
	}
	s.runs++
	s.mu.Unlock()
	task()
	return nil
}

func TestRunOnDeliverOn_DeliveryRunsOnDeliveryPool(t *testing.T) {
	io := scheduler.NewElastic(scheduler.WithLogger(logger.Nop()))
	single := scheduler.NewSingle(scheduler.WithLogger(logger.Nop()))
	testutil.T(t).Setup(io, single)

	var (
		mu         sync.Mutex
		emitPools  []string
		deliverOn  []string
		emitWorker = func() {
			w, _ := scheduler.CurrentWorker()
			mu.Lock()
			emitPools = append(emitPools, w.Pool)
			mu.Unlock()
		}
	)

	src := Create(func(sink Sink[int]) error {
		emitWorker()
		for i := 1; i <= 5; i++ {
			sink.OnNext(i)
		}
		return nil
	}).RunOn(io)
	tens := Map(src, func(n int) (int, error) { return n * 10, nil })
	out := tens.Filter(func(n int) (bool, error) { return n%20 == 0, nil }).DeliverOn(single)

	rec := testutil.NewRecorder[int]().OnItem(func(int) {
		w, _ := scheduler.CurrentWorker()
		mu.Lock()
		deliverOn = append(deliverOn, w.Pool)
		mu.Unlock()
	})
	out.Subscribe(rec)

	if !rec.Wait(2 * time.Second) {
		t.Fatal("expected completion")
	}
	if got := rec.Items(); !intSliceEqual(got, []int{20, 40}) {
		t.Errorf("got %v, want [20 40]", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(emitPools) != 1 || emitPools[0] != "io" {
		t.Errorf("expected emission on io, got %v", emitPools)
	}
	if len(deliverOn) != 2 {
		t.Fatalf("expected 2 deliveries, got %v", deliverOn)
	}
	for _, p := range deliverOn {
		if p != "single" {
			t.Errorf("expected delivery on single, got %q", p)
		}
	}
}

func TestRunOn_SubscribeReturnsImmediately(t *testing.T) {
	io := scheduler.NewElastic(scheduler.WithLogger(logger.Nop()))
	testutil.T(t).Setup(io)

	release := make(chan struct{})
	rec := testutil.NewRecorder[int]()
	Create(func(sink Sink[int]) error {
		<-release
		sink.OnNext(1)
		return nil
	}).RunOn(io).Subscribe(rec)

	if rec.Terminals() != 0 {
		t.Fatal("expected Subscribe to return before the emission ran")
	}
	close(release)
	if !rec.Wait(2*time.Second) || !rec.Completed() {
		t.Fatal("expected completion")
	}
}

func TestRunOn_RejectedOnCaller(t *testing.T) {
	stopped := scheduler.NewComputation(scheduler.WithWorkers(1), scheduler.WithLogger(logger.Nop()))

	rec := testutil.NewRecorder[int]()
	Just(1, 2).RunOn(stopped).Subscribe(rec)

	// Delivered synchronously, before Subscribe returned.
	if !errors.HasCode(rec.Err(), errors.ErrCodeSchedulerStopped) {
		t.Errorf("expected SCHEDULER_STOPPED, got %v", rec.Err())
	}
	if len(rec.Items()) != 0 {
		t.Errorf("expected no values, got %v", rec.Items())
	}
}

func TestRunOn_NilScheduler(t *testing.T) {
	rec := testutil.NewRecorder[int]()
	Just(1).RunOn(nil).Subscribe(rec)
	if !errors.HasCode(rec.Err(), errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", rec.Err())
	}
}

func TestDeliverOn_PreservesOrderOnSingle(t *testing.T) {
	single := scheduler.NewSingle(scheduler.WithLogger(logger.Nop()))
	testutil.T(t).Setup(single)

	rec := testutil.NewRecorder[int]()
	FromSlice(seq(200)).DeliverOn(single).Subscribe(rec)

	if !rec.Wait(2 * time.Second) {
		t.Fatal("expected completion")
	}
	if got := rec.Items(); !intSliceEqual(got, seq(200)) {
		t.Errorf("expected values in submission order, got %v", got)
	}
}

func TestDeliverOn_ErrorIsDeliveredOnScheduler(t *testing.T) {
	single := scheduler.NewSingle(scheduler.WithLogger(logger.Nop()))
	testutil.T(t).Setup(single)

	want := stderrors.New("upstream")
	pool := make(chan string, 1)
	rec := testutil.NewRecorder[int]()
	Fail[int](want).DeliverOn(single).Subscribe(SinkFuncs[int]{
		Error: func(err error) {
			w, _ := scheduler.CurrentWorker()
			pool <- w.Pool
			rec.OnError(err)
		},
	})

	if !rec.Wait(2 * time.Second) {
		t.Fatal("expected an error")
	}
	if rec.Err() != want {
		t.Errorf("expected %v, got %v", want, rec.Err())
	}
	if p := <-pool; p != "single" {
		t.Errorf("expected error delivered on single, got %q", p)
	}
}

func TestDeliverOn_RejectionDeliveredOnce(t *testing.T) {
	sch := &inlineScheduler{limit: 2}
	rec := testutil.NewRecorder[int]()
	range1to(5).DeliverOn(sch).Subscribe(rec)

	if got := rec.Items(); !intSliceEqual(got, []int{1, 2}) {
		t.Errorf("got %v, want [1 2]", got)
	}
	if rec.Err() != errInlineFull {
		t.Errorf("expected the rejection error, got %v", rec.Err())
	}
	if rec.Terminals() != 1 || rec.Late() != 0 {
		t.Errorf("expected one terminal and no late values, got terminals=%d late=%d", rec.Terminals(), rec.Late())
	}
}

func TestDeliverOn_StoppedScheduler(t *testing.T) {
	stopped := scheduler.NewSingle(scheduler.WithLogger(logger.Nop()))
	rec := testutil.NewRecorder[int]()
	Just(1, 2, 3).DeliverOn(stopped).Subscribe(rec)

	if !errors.HasCode(rec.Err(), errors.ErrCodeSchedulerStopped) {
		t.Errorf("expected SCHEDULER_STOPPED, got %v", rec.Err())
	}
	if len(rec.Items()) != 0 || rec.Terminals() != 1 {
		t.Errorf("expected a single error and no values, got %v terminals=%d", rec.Items(), rec.Terminals())
	}
}
