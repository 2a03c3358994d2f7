package workers

// Worker is a background job owned by the Manager.
type Worker interface {
	Start() error

	// Stop blocks until in-flight work has finished.
	Stop()

	Name() string
}
