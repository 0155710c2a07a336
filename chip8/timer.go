/*
 * Copyright 2026 Joshua Jones <joshua.jones.software@gmail.com>
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      www.apache.org
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package chip8

import "time"

// TimerRate is the period of one timer tick (60hz).
const TimerRate time.Duration = time.Second / 60

// Timer is an 8-bit counter that decays toward zero in wall-clock time. It
// remembers when its value last changed so decay does not depend on how often
// it is polled.
type Timer struct {
	value uint8
	last  time.Time
}

func (t *Timer) Value() uint8 {
	return t.value
}

// Set stores a new value and restarts decay from now.
func (t *Timer) Set(value uint8, now time.Time) {
	t.value = value
	t.last = now
}

// Update removes the whole ticks elapsed since the last change. It reports
// true only when this call brought the counter to zero.
func (t *Timer) Update(now time.Time) bool {
	if t.value == 0 {
		return false
	}

	ticks := now.Sub(t.last) / TimerRate
	if ticks <= 0 {
		return false
	}

	if ticks >= time.Duration(t.value) {
		t.value = 0
	} else {
		t.value -= uint8(ticks)
	}
	t.last = now

	return t.value == 0
}
