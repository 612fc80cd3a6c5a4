/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package state_test

import (
	"context"
	"sync"
	"time"

	"github.com/BeeBeansTechnologies/sitcpy/state"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("State", func() {
	It("starts at NotStarted by default", func() {
		s := state.New()
		Expect(s.Current()).To(Equal(state.NotStarted))
	})

	It("moves forward one level at a time", func() {
		s := state.New()
		Expect(s.Transit(state.Starting)).To(BeTrue())
		Expect(s.Transit(state.Running)).To(BeTrue())
		Expect(s.Current()).To(Equal(state.Running))
	})

	It("rejects backward and sideways transitions", func() {
		s := state.New(state.Running)
		Expect(s.Transit(state.Starting)).To(BeFalse())
		Expect(s.Transit(state.Running)).To(BeFalse())
		Expect(s.Current()).To(Equal(state.Running))
	})

	It("races harmlessly: highest value wins", func() {
		s := state.New()
		var wg sync.WaitGroup
		for _, lvl := range []state.Level{state.Starting, state.Running, state.Stopping, state.Stopped} {
			wg.Add(1)
			go func(l state.Level) {
				defer wg.Done()
				s.Transit(l)
			}(lvl)
		}
		wg.Wait()
		Expect(s.Current()).To(Equal(state.Stopped))
	})

	It("Wait unblocks once the target level is reached", func() {
		s := state.New()
		done := make(chan bool, 1)
		go func() {
			done <- s.Wait(context.Background(), state.Running)
		}()

		time.Sleep(10 * time.Millisecond)
		s.Transit(state.Starting)
		s.Transit(state.Running)

		Eventually(done).Should(Receive(BeTrue()))
	})

	It("Wait with an already-expired context polls once", func() {
		s := state.New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(s.Wait(ctx, state.Running)).To(BeFalse())
	})

	It("Wait returns true immediately if already satisfied", func() {
		s := state.New(state.Running)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(s.Wait(ctx, state.Starting)).To(BeTrue())
	})

	It("Wait respects a timeout and returns false", func() {
		s := state.New()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()
		Expect(s.Wait(ctx, state.Running)).To(BeFalse())
	})
})
