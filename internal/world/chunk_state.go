package world

// ChunkState is the position of a chunk in its rebuild and upload cycle.
//
//	INITED -> NEED_UPDATE -> SCHED_UPDATE -> UPDATING -> NEED_FLUSH -> FLUSHING -> FLUSHED
//
// Any mutation sends a chunk back to NEED_UPDATE unless it is already
// SCHED_UPDATE. DEINITED is terminal.
type ChunkState int

const (
	StateInited ChunkState = iota
	StateNeedUpdate
	StateSchedUpdate
	StateUpdating
	StateNeedFlush
	StateFlushing
	StateFlushed
	StateDeinited
)

var stateNames = [...]string{
	StateInited:      "INITED",
	StateNeedUpdate:  "NEED_UPDATE",
	StateSchedUpdate: "SCHED_UPDATE",
	StateUpdating:    "UPDATING",
	StateNeedFlush:   "NEED_FLUSH",
	StateFlushing:    "FLUSHING",
	StateFlushed:     "FLUSHED",
	StateDeinited:    "DEINITED",
}

func (s ChunkState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Drawable reports whether the published GPU buffers of a chunk in this
// state may be drawn.
func (s ChunkState) Drawable() bool {
	switch s {
	case StateInited, StateNeedFlush, StateFlushed:
		return true
	}
	return false
}
