package editor

// Media is the ordered asset declaration a widget advertises so the host page
// can include every file once, in order.
type Media struct {
	Styles  []string `json:"styles"`
	Scripts []string `json:"scripts"`
}

// Merge appends the assets of other that m does not already list.  The
// first occurrence of a URL fixes its position.
func (m Media) Merge(other Media) Media {
	return Media{
		Styles:  mergeUnique(m.Styles, other.Styles),
		Scripts: mergeUnique(m.Scripts, other.Scripts),
	}
}

// IsZero reports whether m declares no assets.
func (m Media) IsZero() bool { return len(m.Styles) == 0 && len(m.Scripts) == 0 }

func (m Media) clone() Media {
	return Media{
		Styles:  append([]string(nil), m.Styles...),
		Scripts: append([]string(nil), m.Scripts...),
	}
}

func mergeUnique(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, u := range list {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}
