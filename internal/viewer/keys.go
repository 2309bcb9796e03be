package viewer

// Action is what a key press does in the viewer.
type Action string

const (
	ActionNone        Action = ""
	ActionDown        Action = "down"
	ActionUp          Action = "up"
	ActionPageDown    Action = "page_down"
	ActionPageUp      Action = "page_up"
	ActionTop         Action = "top"
	ActionBottom      Action = "bottom"
	ActionToggle      Action = "toggle"
	ActionExpandAll   Action = "expand_all"
	ActionCollapseAll Action = "collapse_all"
	ActionSearch      Action = "search"
	ActionNextMatch   Action = "next_match"
	ActionHelp        Action = "help"
	ActionQuit        Action = "quit"
)

// DefaultKeyBindings maps key names, as reported by tea.KeyPressMsg.String,
// to actions.
var DefaultKeyBindings = map[string]Action{
	"j":      ActionDown,
	"down":   ActionDown,
	"k":      ActionUp,
	"up":     ActionUp,
	"pgdown": ActionPageDown,
	"pgup":   ActionPageUp,
	"g":      ActionTop,
	"home":   ActionTop,
	"G":      ActionBottom,
	"end":    ActionBottom,
	"enter":  ActionToggle,
	"space":  ActionToggle,
	"l":      ActionToggle,
	"e":      ActionExpandAll,
	"c":      ActionCollapseAll,
	"/":      ActionSearch,
	"n":      ActionNextMatch,
	"?":      ActionHelp,
	"q":      ActionQuit,
	"ctrl+c": ActionQuit,
}

// ActionForKey returns the action bound to key, or ActionNone.
func ActionForKey(bindings map[string]Action, key string) Action {
	if bindings == nil {
		bindings = DefaultKeyBindings
	}
	return bindings[key]
}

const helpText = "j/k move  enter toggle  e expand all  c collapse all  / search  n next  ? help  q quit"
