package ai

import "context"

type AiInterface interface {
	Name() string
	HandleText(ctx context.Context, msg string) (string, error)
}
