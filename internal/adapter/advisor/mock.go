package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gift-advisor/internal/domain"
)

// cultureSummary is the canned company-culture paragraph served in
// development, so the UI can be exercised without an API key.
const cultureSummary = "La empresa muestra una cultura agradable, amistosa, positiva y colaborativa, " +
	"con un fuerte énfasis en el trabajo en equipo y el apoyo mutuo entre los miembros del equipo."

// defaultMockChunk is the mock stream's chunk size in bytes. Chunks are cut
// on byte boundaries, so an accented character can straddle two chunks the
// way it does on a real network.
const defaultMockChunk = 7

// MockAdvisor produces deterministic suggestions.
type MockAdvisor struct {
	delay     time.Duration
	chunkSize int
}

// NewMockAdvisor creates a mock that pauses delay between stream chunks.
func NewMockAdvisor(delay time.Duration) *MockAdvisor {
	return &MockAdvisor{delay: delay, chunkSize: defaultMockChunk}
}

// Name implements domain.Advisor.
func (m *MockAdvisor) Name() string { return "mock" }

// StreamTrending implements domain.Advisor.
func (m *MockAdvisor) StreamTrending(ctx context.Context, member string, emit func(string) error) error {
	text := trendingText(member)
	for start := 0; start < len(text); start += m.chunkSize {
		if start > 0 && m.delay > 0 {
			t := time.NewTimer(m.delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+m.chunkSize, len(text))
		if err := emit(text[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// GiftIdeas implements domain.Advisor.
func (m *MockAdvisor) GiftIdeas(ctx context.Context, member string) ([]domain.GiftIdea, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	first, _, _ := strings.Cut(member, " ")
	return []domain.GiftIdea{
		{
			Name:        "Juego de mesa cooperativo",
			Description: fmt.Sprintf("Para que %s comparta una tarde en equipo, muy en línea con la cultura colaborativa.", first),
			Link:        "https://www.boardgamegeek.com/boardgamecategory/1040/cooperative-game",
		},
		{
			Name:        "Taza personalizada",
			Description: fmt.Sprintf("Una taza con el nombre de %s para el café de las reuniones diarias.", first),
		},
		{
			Name:        "Libro de cocina costarricense",
			Description: "Recetas para compartir en el próximo almuerzo del equipo.",
		},
	}, nil
}

func trendingText(member string) string {
	return fmt.Sprintf("## Tendencias para %s\n\n%s\n\n"+
		"- Le entusiasman las actividades en grupo.\n"+
		"- Valora los detalles hechos a mano.\n"+
		"- Disfruta del café y las conversaciones largas.\n",
		member, cultureSummary)
}

var _ domain.Advisor = (*MockAdvisor)(nil)
