package notification

import "context"

type LogRepository interface {
	Insert(ctx context.Context, item Log) error
}
