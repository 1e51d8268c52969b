package reviews

import "context"

// optimisticWrite is the one write cycle shared by every persistence path:
// apply locally first, confirm remotely, reconcile the server entity on
// success, roll the local change back on failure. The same helper serves
// inserts, updates and deletes so the pattern is not re-derived per
// entity type.
func optimisticWrite[T any](
	ctx context.Context,
	apply func(),
	remote func(context.Context) (T, error),
	reconcile func(T),
	rollback func(),
) (T, error) {
	apply()

	confirmed, err := remote(ctx)
	if err != nil {
		rollback()
		var zero T
		return zero, err
	}

	reconcile(confirmed)
	return confirmed, nil
}
