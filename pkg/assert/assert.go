package assert

// NotNil panics when a singleton failed to build.
func NotNil(v interface{}) {
	if v == nil {
		panic("assert: singleton is nil after initialization")
	}
}

// NotCircular marks singleton constructors that must not be re-entered
// during assembly. Assembly is single-threaded, so this is a documentation
// point rather than a runtime check.
func NotCircular() {}
