package vector

// NoopIndex implements Index without ever storing or matching anything. It
// is the fallback when the embedded SQLite extension can't be loaded, or
// when the vector index is deliberately disabled.
type NoopIndex struct{}

func (NoopIndex) Embed(string) ([]float32, error) {
	return nil, nil
}

func (NoopIndex) Upsert(string, []float32) error {
	return nil
}

func (NoopIndex) Query([]float32, int) ([]Match, error) {
	return nil, nil
}

func (NoopIndex) Close() error {
	return nil
}
