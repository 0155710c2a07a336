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

// SignalKind tells the execution loop what to do after an instruction.
type SignalKind uint8

const (
	Continue SignalKind = iota
	Halt
	Render
	TimerStarted
	AwaitKey
	SkipIfPressed
	SkipIfNotPressed
)

var signalNames = [...]string{
	Continue:         "continue",
	Halt:             "halt",
	Render:           "render",
	TimerStarted:     "timer started",
	AwaitKey:         "await key",
	SkipIfPressed:    "skip if pressed",
	SkipIfNotPressed: "skip if not pressed",
}

func (k SignalKind) String() string {
	if int(k) < len(signalNames) {
		return signalNames[k]
	}
	return "unknown"
}

type TimerID uint8

const (
	TimerDelay TimerID = iota
	TimerSound
)

func (t TimerID) String() string {
	if t == TimerSound {
		return "sound"
	}
	return "delay"
}

// Signal is the outcome of executing one instruction. Register is set for
// AwaitKey, Key for the skip kinds and Timer for TimerStarted.
type Signal struct {
	Kind     SignalKind
	Register uint8
	Key      uint8
	Timer    TimerID
}

var (
	proceed = Signal{Kind: Continue}
	render  = Signal{Kind: Render}
	halt    = Signal{Kind: Halt}
)
