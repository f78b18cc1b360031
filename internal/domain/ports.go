package domain

import (
	"context"
	"io"
)

// GiftSource is the client-side view of the gift API.
type GiftSource interface {
	// TeamMembers lists the people a user may pick.
	TeamMembers(ctx context.Context) ([]string, error)
	// Trending opens the streamed text for member. The caller owns the body.
	Trending(ctx context.Context, member string) (io.ReadCloser, error)
	// GiftIdeas fetches the structured suggestions for member.
	GiftIdeas(ctx context.Context, member string) ([]GiftIdea, error)
}

// Advisor generates suggestions on the server side.
type Advisor interface {
	// Name identifies the advisor in logs ("mock", "openai").
	Name() string
	// StreamTrending writes generated text for member as it is produced.
	// Each call to emit carries the next fragment; emit returning an error
	// aborts generation.
	StreamTrending(ctx context.Context, member string, emit func(fragment string) error) error
	// GiftIdeas returns structured suggestions for member.
	GiftIdeas(ctx context.Context, member string) ([]GiftIdea, error)
}
