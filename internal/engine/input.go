package engine

// Input is a semantic player action. Mapping keys to inputs is the
// front end's concern.
type Input int

const (
	MoveLeft Input = iota
	MoveRight
	SoftDrop
	HardDrop
	RotateCW
	RotateCCW
	Hold
	Pause
	Quit
)

var inputNames = [...]string{
	MoveLeft:  "MoveLeft",
	MoveRight: "MoveRight",
	SoftDrop:  "SoftDrop",
	HardDrop:  "HardDrop",
	RotateCW:  "RotateCW",
	RotateCCW: "RotateCCW",
	Hold:      "Hold",
	Pause:     "Pause",
	Quit:      "Quit",
}

func (i Input) String() string {
	if i < 0 || int(i) >= len(inputNames) {
		return "Unknown"
	}
	return inputNames[i]
}

// State is the session lifecycle.
type State int

const (
	Ready State = iota
	Running
	Paused
	GameOver
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	case GameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

// EndReason says why a session reached GameOver.
type EndReason int

const (
	NotEnded EndReason = iota
	ToppedOut
	QuitByPlayer
)

func (r EndReason) String() string {
	switch r {
	case ToppedOut:
		return "top-out"
	case QuitByPlayer:
		return "quit"
	default:
		return "none"
	}
}
