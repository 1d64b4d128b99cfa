package flaggallery

import "strconv"

// CommandKind identifies an orchestrator command.
type CommandKind uint8

const (
	CommandNavigateForward  CommandKind = iota // next item, or into the gallery from the last one
	CommandNavigateBackward                    // previous item, or back out of the gallery
	CommandSelectItem                          // pointer click on an item (or NoItem for background)
	CommandDismiss                             // Escape: close the overlay, then leave focus
	CommandHover                               // pointer entered or left an item
)

func (k CommandKind) String() string {
	switch k {
	case CommandNavigateForward:
		return "forward"
	case CommandNavigateBackward:
		return "backward"
	case CommandSelectItem:
		return "select"
	case CommandDismiss:
		return "dismiss"
	case CommandHover:
		return "hover"
	default:
		return "command(" + strconv.Itoa(int(k)) + ")"
	}
}

// NoItem is the Index of a SelectItem command aimed at the background.
const NoItem = -1

// Command is the single entry point vocabulary of the orchestrator. Every
// input adapter (wheel, keys, tap zones, pointer, scripts) translates into
// these.
type Command struct {
	Kind  CommandKind
	Index int  // SelectItem, Hover
	Enter bool // Hover: true on enter, false on leave
}

// NavigateForward returns a forward navigation command.
func NavigateForward() Command { return Command{Kind: CommandNavigateForward} }

// NavigateBackward returns a backward navigation command.
func NavigateBackward() Command { return Command{Kind: CommandNavigateBackward} }

// SelectItem returns a click command on item index (NoItem for background).
func SelectItem(index int) Command { return Command{Kind: CommandSelectItem, Index: index} }

// Dismiss returns an Escape command.
func Dismiss() Command { return Command{Kind: CommandDismiss} }

// Hover returns a pointer enter (enter=true) or leave command for index.
func Hover(index int, enter bool) Command {
	return Command{Kind: CommandHover, Index: index, Enter: enter}
}

func (c Command) String() string {
	switch c.Kind {
	case CommandSelectItem:
		return "select(" + strconv.Itoa(c.Index) + ")"
	case CommandHover:
		if c.Enter {
			return "hover(" + strconv.Itoa(c.Index) + ")"
		}
		return "unhover(" + strconv.Itoa(c.Index) + ")"
	}
	return c.Kind.String()
}

// scrollAccumulator sums wheel deltas until their magnitude passes the
// threshold. Positive deltas scroll forward.
type scrollAccumulator struct {
	acc       float64
	threshold float64
}

// add accumulates delta and returns the direction (+1, -1) once |acc|
// exceeds the threshold, or 0.
func (s *scrollAccumulator) add(delta float64) int {
	s.acc += delta
	switch {
	case s.acc > s.threshold:
		return 1
	case s.acc < -s.threshold:
		return -1
	}
	return 0
}

func (s *scrollAccumulator) reset() { s.acc = 0 }
