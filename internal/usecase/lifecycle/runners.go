package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gift-advisor/internal/domain"
	"gift-advisor/internal/usecase/textstream"
)

// streamRunner reads the trending endpoint and emits each decoded fragment.
func streamRunner(source domain.GiftSource, member string, logger *slog.Logger) RunFunc {
	return func(ctx context.Context, emit func(domain.Outcome) bool) domain.Outcome {
		body, err := source.Trending(ctx, member)
		if err != nil {
			return failure(ctx, err)
		}
		defer body.Close()

		alive := func() bool { return ctx.Err() == nil }
		var text strings.Builder
		for frag, err := range textstream.Fragments(body, textstream.WithAlive(alive)) {
			if frag != "" {
				text.WriteString(frag)
				if !emit(domain.PartialText(frag)) {
					return domain.Aborted()
				}
			}
			if err == nil {
				continue
			}
			if errors.Is(err, domain.ErrDecode) {
				logger.Warn("trending stream ended mid-character",
					"member", member,
					"request_id", domain.RequestIDFromContext(ctx),
					"error", err,
				)
				continue
			}
			return failure(ctx, err)
		}
		if ctx.Err() != nil {
			return domain.Aborted()
		}
		return domain.CompleteText(text.String())
	}
}

// listRunner fetches the structured gift ideas in one call.
func listRunner(source domain.GiftSource, member string) RunFunc {
	return func(ctx context.Context, _ func(domain.Outcome) bool) domain.Outcome {
		items, err := source.GiftIdeas(ctx, member)
		if err != nil {
			return failure(ctx, err)
		}
		return domain.CompleteItems(items)
	}
}

// failure maps errors caused by our own cancellation to Aborted.
func failure(ctx context.Context, err error) domain.Outcome {
	if ctx.Err() != nil || domain.IsCancelled(err) {
		return domain.Aborted()
	}
	return domain.Failed(err)
}
