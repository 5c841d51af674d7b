package featureflag

// FeatureFlag is the set of flags enabled for this run.
type FeatureFlag map[Flag]struct{}

// New builds the flag set from raw flag names, usually straight from the
// environment.
func New(flags []string) FeatureFlag {
	set := make(FeatureFlag, len(flags))
	for _, f := range flags {
		set[Flag(f)] = struct{}{}
	}
	return set
}

// IsSet reports whether the flag is enabled.
func (f FeatureFlag) IsSet(flag Flag) bool {
	_, ok := f[flag]
	return ok
}

// IfSet runs do when the flag is enabled.
func (f FeatureFlag) IfSet(flag Flag, do func()) {
	if f.IsSet(flag) {
		do()
	}
}

// IfNotSet runs do when the flag is disabled.
func (f FeatureFlag) IfNotSet(flag Flag, do func()) {
	if !f.IsSet(flag) {
		do()
	}
}
