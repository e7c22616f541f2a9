package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"foodshare/internal/adapter/repo"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequentialIDs) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%03d", s.n)
}

type countingRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *countingRecorder) RecordOperation(entity, operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = make(map[string]int)
	}
	r.calls[entity+"."+operation]++
}

type fixture struct {
	store      *repo.MemoryStore
	donations  *DonationService
	donors     *DonorService
	recipients *RecipientService
	recorder   *countingRecorder
	now        time.Time
}

func newFixture() *fixture {
	f := &fixture{store: repo.NewMemoryStore(), recorder: &countingRecorder{}, now: fixedNow}
	ids := &sequentialIDs{}
	opts := Options{
		Recorder: f.recorder,
		Now:      func() time.Time { return f.now },
		NewID:    ids.next,
	}
	log := zerolog.Nop()
	f.donations = NewDonationService(repo.NewDonationRepository(f.store), log, opts)
	f.donors = NewDonorService(repo.NewDonorRepository(f.store), log, opts)
	f.recipients = NewRecipientService(repo.NewRecipientRepository(f.store), log, opts)
	return f
}

func ptr[T any](v T) *T { return &v }
