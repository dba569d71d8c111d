package port

import "context"

// Completer is a language model completion call: prompt in, text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the model.
	ModelName() string
}
