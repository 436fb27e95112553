package cmd

// SelectorResolver answers a target selector against the live player list,
// the "expand before the handler is invoked" step spec §6 requires. Each
// method answers one selector: AllPlayers for @a, NearestPlayer for @p,
// RandomPlayer for @r and Entities for @e.
type SelectorResolver interface {
	AllPlayers() []string
	NearestPlayer() (string, bool)
	RandomPlayer() (string, bool)
	Entities() []string
}

// ExpandSelectors replaces any @a, @p, @r, @e token in args with the one or
// more names resolver reports for it, leaving ordinary arguments untouched.
func ExpandSelectors(args []string, resolver SelectorResolver) []string {
	if resolver == nil {
		return args
	}
	out := make([]string, 0, len(args))
	for _, a := range args {
		switch a {
		case "@a":
			out = append(out, resolver.AllPlayers()...)
		case "@p":
			if name, ok := resolver.NearestPlayer(); ok {
				out = append(out, name)
			}
		case "@r":
			if name, ok := resolver.RandomPlayer(); ok {
				out = append(out, name)
			}
		case "@e":
			out = append(out, resolver.Entities()...)
		default:
			out = append(out, a)
		}
	}
	return out
}
