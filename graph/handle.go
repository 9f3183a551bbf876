package graph

// Mode is how a graph executes traversals
type Mode uint8

const (
	// ModeStandard runs traversals against a random-access backend
	ModeStandard Mode = iota
	// ModeComputer runs traversals on a distributed graph-parallel computer
	ModeComputer
)

// String returns the mode name
func (m Mode) String() string {
	if m == ModeComputer {
		return "computer"
	}
	return "standard"
}

// Handle is the live graph a plan is bound to. It is read-only input to the
// optimizer: nothing in the optimizer mutates it.
type Handle struct {
	Name   string
	Config Config
	Mode   Mode
}

// NewHandle returns a standard-mode handle
func NewHandle(name string, cfg Config) *Handle {
	return &Handle{Name: name, Config: cfg, Mode: ModeStandard}
}

// OnComputer reports whether traversals run in graph-parallel mode
func (h *Handle) OnComputer() bool {
	return h != nil && h.Mode == ModeComputer
}
