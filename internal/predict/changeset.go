package predict

// Changeset accumulates records that need persisting after a pipeline stage.
// Records enter the update list only when a tracked field actually changed,
// so an unchanged roster produces an empty changeset and zero writes.
type Changeset[T any] struct {
	UpdateList  []T
	CreateList  []T
	UpdateCount int
	CreateCount int
}

// Update appends a changed record to the update list.
func (c *Changeset[T]) Update(v T) {
	c.UpdateList = append(c.UpdateList, v)
	c.UpdateCount++
}

// Create appends a new record to the create list.
func (c *Changeset[T]) Create(v T) {
	c.CreateList = append(c.CreateList, v)
	c.CreateCount++
}

// Empty reports whether the changeset carries no pending writes.
func (c *Changeset[T]) Empty() bool {
	return len(c.UpdateList) == 0 && len(c.CreateList) == 0
}
