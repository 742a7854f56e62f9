// SPDX-License-Identifier: EPL-2.0

package transcoder

// State is the phase of the last Transcode call.
type State int32

const (
	StateInit State = iota
	StateDecoding
	StateDraining
	StateFinished
	StateFailed
)

var stateNames = [...]string{
	StateInit:     "init",
	StateDecoding: "decoding",
	StateDraining: "draining",
	StateFinished: "finished",
	StateFailed:   "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
