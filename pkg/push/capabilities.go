package push

// Capabilities describes host restrictions the pipeline can not lift itself.
type Capabilities interface {
	// BackgroundRestricted reports whether the host blocks background work for the app.
	BackgroundRestricted() bool
}

// IsAppRestricted reports whether background work is restricted. The pipeline
// never enforces it; hosts decide, e.g. by asking the user to lift the restriction.
func IsAppRestricted(c Capabilities) bool {
	if c == nil {
		return false
	}
	return c.BackgroundRestricted()
}

// StaticCapabilities is a fixed answer, typically from configuration.
type StaticCapabilities struct {
	Restricted bool
}

func (s StaticCapabilities) BackgroundRestricted() bool { return s.Restricted }
