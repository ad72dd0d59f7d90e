package game

import "time"

// Scheduler runs fn after a delay. Used to pace the computer side.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// TimerScheduler schedules on real timers.
type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// ImmediateScheduler runs fn synchronously and ignores the delay.
// Simulations and tests use it to play games without waiting.
type ImmediateScheduler struct{}

func (ImmediateScheduler) After(_ time.Duration, fn func()) {
	fn()
}
