package recovery

// Strategy decides what a multi-input task does when one input fails.
type Strategy interface {
	OnError(ctx Context, err error, location Location) Action
}

// Location identifies the failing input.
type Location struct {
	Source    string
	Index     int
	Component string
}

type Action int

const (
	ActionFail Action = iota
	ActionSkip
)

func (a Action) String() string { return []string{"fail", "skip"}[a] }

type Context interface{ Done() <-chan struct{} }

// ByName returns the strategy registered under name ("strict" or "lenient").
func ByName(name string) (Strategy, bool) {
	switch name {
	case "", "strict":
		return NewStrictStrategy(), true
	case "lenient":
		return NewLenientStrategy(), true
	}
	return nil, false
}
