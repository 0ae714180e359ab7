package manifest

import (
	"fmt"
	"sort"
)

// Tristate is a flag that may be left unset so that it inherits a value.
type Tristate uint8

const (
	Unset Tristate = iota
	False
	True
)

// TristateOf converts b to an explicit Tristate.
func TristateOf(b bool) Tristate {
	if b {
		return True
	}
	return False
}

// IsSet reports whether t carries an explicit value.
func (t Tristate) IsSet() bool { return t != Unset }

// Enabled reports whether t is explicitly True.
func (t Tristate) Enabled() bool { return t == True }

// Or returns the explicit value of t, or def when t is Unset.
func (t Tristate) Or(def bool) bool {
	if t == Unset {
		return def
	}
	return t == True
}

func (t Tristate) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	default:
		return "unset"
	}
}

func (t Tristate) ptr() *bool {
	if t == Unset {
		return nil
	}
	b := t == True
	return &b
}

// Profile holds the build toggles of a named profile.
type Profile struct {
	Sanitizer Tristate
	Coverage  Tristate
}

// Override returns p with every flag that is set in o replaced by o's value.
// Flags left unset in o keep the value they have in p.
func (p Profile) Override(o Profile) Profile {
	if o.Sanitizer.IsSet() {
		p.Sanitizer = o.Sanitizer
	}
	if o.Coverage.IsSet() {
		p.Coverage = o.Coverage
	}
	return p
}

// withDefaults turns unset flags into False.
func (p Profile) withDefaults() Profile {
	if !p.Sanitizer.IsSet() {
		p.Sanitizer = False
	}
	if !p.Coverage.IsSet() {
		p.Coverage = False
	}
	return p
}

func (p Profile) String() string {
	return fmt.Sprintf("sanitizer=%s coverage=%s", p.Sanitizer, p.Coverage)
}

// DefaultProfileName names the profile used when none is requested.
const DefaultProfileName = "debug"

// Profiles maps a profile name to its toggles.
type Profiles map[string]Profile

// BuiltinProfiles returns a fresh copy of the profiles every manifest starts
// from.
func BuiltinProfiles() Profiles {
	return Profiles{
		"debug":     {Sanitizer: True, Coverage: True},
		"debug-opt": {Sanitizer: True, Coverage: True},
		"release":   {Sanitizer: False, Coverage: False},
	}
}

// Sync merges the profiles declared by a document into ps.
//
// A profile already present in ps only gets the flags that other sets
// explicitly. A profile unknown to ps is added with its unset flags
// defaulted to false.
func (ps Profiles) Sync(other Profiles) {
	for name, p := range other {
		if cur, ok := ps[name]; ok {
			ps[name] = cur.Override(p)
			continue
		}
		ps[name] = p.withDefaults()
	}
}

// Lookup returns the profile called name.
func (ps Profiles) Lookup(name string) (Profile, error) {
	p, ok := ps[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q: %w", name, ErrKeyNotFound)
	}
	return p, nil
}

// DefaultProfile returns the "debug" profile.
func (ps Profiles) DefaultProfile() (Profile, error) {
	return ps.Lookup(DefaultProfileName)
}

// Names returns the profile names in lexical order.
func (ps Profiles) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
