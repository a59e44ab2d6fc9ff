package memory

import "context"

// Transactor для хранилища в памяти: каждая операция ProductRepo атомарна сама по себе,
// поэтому fn просто выполняется.
type Transactor struct{}

func (Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
